package service

import (
	"context"
	"time"

	"heatzone"
	"heatzone/internal/logger"
	"heatzone/internal/repository"

	"github.com/google/uuid"
)

// MonitorService polls the bus connection flag and records every
// transition in the event log. The ticker stands in for a broker-side
// callback so a flapping connection leaves a visible trail.
type MonitorService struct {
	bus       Bus
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewMonitorService(bus Bus, eventRepo repository.EventRepo, log *logger.Logger) *MonitorService {
	return &MonitorService{bus: bus, eventRepo: eventRepo, log: log}
}

// Run blocks until ctx is cancelled. The first observation after start
// is also recorded so the log always opens with the session's state.
func (m *MonitorService) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := m.bus.Connected()
	m.record(ctx, last)

	for {
		select {
		case <-ctx.Done():
			if m.log != nil {
				m.log.Infow("connectivity_monitor_stopped")
			}
			return
		case <-ticker.C:
			cur := m.bus.Connected()
			if cur == last {
				continue
			}
			last = cur
			m.record(ctx, cur)
		}
	}
}

func (m *MonitorService) record(ctx context.Context, connected bool) {
	typ, desc := heatzone.EventDisconnect, "broker session lost"
	if connected {
		typ, desc = heatzone.EventConnect, "broker session up"
	}
	if m.log != nil {
		m.log.Infow("connectivity_changed", "connected", connected, "prefix", m.bus.Prefix())
	}
	err := m.eventRepo.Append(ctx, heatzone.ProfileEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
	})
	if err != nil && m.log != nil {
		m.log.Errorw("connectivity_event_append_failed", "err", err)
	}
}
