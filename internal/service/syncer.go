package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"heatzone"
	"heatzone/internal/logger"
	"heatzone/internal/repository"
	"heatzone/internal/schedule"

	"github.com/google/uuid"
)

// ErrBusDisconnected is returned by Save while no broker session is up.
// There is no queueing or retry; the caller reports it to the user.
var ErrBusDisconnected = errors.New("cannot save: message bus is disconnected")

// SyncService moves schedule state across the bus boundary. Inbound
// messages are parsed into typed updates and applied to the
// synchronizer; a parse failure is logged and dropped without touching
// state. Save republishes all fourteen fields unconditionally.
type SyncService struct {
	sched     *schedule.Synchronizer
	bus       Bus
	eventRepo repository.EventRepo
	log       *logger.Logger

	mu         sync.Mutex
	lastSaveAt time.Time
}

func NewSyncService(sched *schedule.Synchronizer, bus Bus, eventRepo repository.EventRepo, log *logger.Logger) *SyncService {
	return &SyncService{sched: sched, bus: bus, eventRepo: eventRepo, log: log}
}

// HandleMessage is the single inbound callback wired to the transport.
// It never returns an error: the bus delivers whatever the controller
// retained, and a bad payload must not take the profile down.
func (s *SyncService) HandleMessage(field string, payload []byte) {
	u, err := schedule.ParseUpdate(field, payload)
	if err != nil {
		if errors.Is(err, schedule.ErrUnknownField) {
			if s.log != nil {
				s.log.Warnw("bus_unknown_field", "field", field)
			}
			return
		}
		if s.log != nil {
			s.log.Warnw("bus_payload_dropped", "field", field, "err", err)
		}
		_ = s.eventRepo.Append(context.Background(), heatzone.ProfileEvent{
			EventID:     uuid.NewString(),
			OccurredAt:  time.Now().UTC(),
			Type:        heatzone.EventDecodeError,
			Description: "dropped malformed payload for " + field,
			Metadata:    map[string]any{"field": field, "error": err.Error()},
		})
		return
	}

	s.sched.Apply(u)
	if s.log != nil {
		s.log.Debugw("bus_field_applied", "field", field)
	}
}

// Save publishes the full snapshot: four setpoints, away/holiday,
// activation, and seven day block lists, each as an independent
// retained publish. All fourteen go out even if only one changed.
func (s *SyncService) Save(ctx context.Context) error {
	if !s.bus.Connected() {
		return ErrBusDisconnected
	}

	snap := s.sched.Snapshot()

	for i, v := range snap.Setpoints {
		if err := s.bus.Publish("Temp"+strconv.Itoa(i+1), v); err != nil {
			return err
		}
	}
	if err := s.bus.Publish("TempAway", snap.AwayTemp); err != nil {
		return err
	}
	if err := s.bus.Publish("TempHoliday", snap.HolidayTemp); err != nil {
		return err
	}
	if err := s.bus.Publish("Activated", snap.Active); err != nil {
		return err
	}
	for day := 0; day < heatzone.DaysPerWeek; day++ {
		blocks := schedule.EncodeDay(snap.Matrix[day])
		if err := s.bus.Publish("Day"+strconv.Itoa(day+1), blocks); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	s.mu.Lock()
	s.lastSaveAt = now
	s.mu.Unlock()

	if s.log != nil {
		s.log.Infow("profile_saved", "prefix", s.bus.Prefix())
	}
	return s.eventRepo.Append(ctx, heatzone.ProfileEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now,
		Type:        heatzone.EventSave,
		Description: "profile published to bus",
		Metadata:    map[string]any{"active": snap.Active},
	})
}

// Status reports the connection flag the UI renders next to the title.
func (s *SyncService) Status(ctx context.Context) (heatzone.SyncStatus, error) {
	s.mu.Lock()
	last := s.lastSaveAt
	s.mu.Unlock()

	return heatzone.SyncStatus{
		Connected:  s.bus.Connected(),
		Prefix:     s.bus.Prefix(),
		LastSaveAt: last,
	}, nil
}
