package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"heatzone"
	"heatzone/internal/repository"
)

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// EventLogService reads the append-only profile log. Filters are
// normalized here so the repository only ever sees UTC bounds and
// canonical event kinds.
type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// List returns events inside the filter's bounds, oldest first. A kind
// outside heatzone.EventTypes fails with repository.ErrUnknownEventType
// so callers can tell a bad filter from a storage fault.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]heatzone.ProfileEvent, error) {
	from, to := f.From, f.To
	if !from.IsZero() {
		from = from.UTC()
	}
	if !to.IsZero() {
		to = to.UTC()
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}

	typ := strings.ToUpper(strings.TrimSpace(f.Type))
	if typ != "" && !heatzone.ValidEventType(typ) {
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownEventType, f.Type)
	}

	return s.eventRepo.List(ctx, from, to, typ)
}
