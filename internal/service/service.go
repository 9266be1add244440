package service

import (
	"context"
	"time"

	"heatzone"
	"heatzone/internal/logger"
	"heatzone/internal/repository"
	"heatzone/internal/schedule"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Profile exposes the editing operations: mode selection, paint
// gestures, and the settings sliders.
type Profile interface {
	State(ctx context.Context) (heatzone.ProfileState, error)
	SelectMode(ctx context.Context, mode int) error
	BeginPaint(ctx context.Context, day, slot int) error
	MovePaint(ctx context.Context, day, slot int) error
	EndPaint(ctx context.Context) error
	CancelPaint(ctx context.Context) error
	SetSetpoint(ctx context.Context, index int, value float64) error
	SetAwayTemp(ctx context.Context, value float64) error
	SetHolidayTemp(ctx context.Context, value float64) error
	SetActive(ctx context.Context, active bool) error
}

// Sync owns the bus boundary: inbound field dispatch and the
// save-to-bus batch publish.
type Sync interface {
	HandleMessage(field string, payload []byte)
	Save(ctx context.Context) error
	Status(ctx context.Context) (heatzone.SyncStatus, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]heatzone.ProfileEvent, error)
}

// Monitor runs the background loop that records broker connectivity
// transitions. Stop via context cancellation in main() for graceful
// shutdown.
type Monitor interface {
	Run(ctx context.Context, tick time.Duration)
}

// Bus is the transport the sync layer publishes through. Satisfied by
// the MQTT adapter; faked in tests.
type Bus interface {
	Publish(field string, v any) error
	Connected() bool
	Prefix() string
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Profile
	Sync
	EventLog
	Monitor
	Authorization
}

// NewService wires the synchronizer, bus adapter, and repository layer
// into concrete services.
func NewService(repos *repository.Repository, sched *schedule.Synchronizer, bus Bus, log *logger.Logger) *Service {
	return &Service{
		Profile:       NewProfileService(sched),
		Sync:          NewSyncService(sched, bus, repos.EventRepo, log),
		EventLog:      NewEventLogService(repos.EventRepo),
		Monitor:       NewMonitorService(bus, repos.EventRepo, log),
		Authorization: NewAuthService(repos.Auth),
	}
}
