package service

import (
	"context"
	"fmt"
	"math"

	"heatzone"
	"heatzone/internal/schedule"
)

// Slider ranges from the settings card: modes 1-3 are comfort
// temperatures, mode 4 is the frost-protection range, all in 0.5° steps.
var setpointRanges = [4]struct{ min, max float64 }{
	{15, 30}, // Temp1
	{15, 30}, // Temp2
	{15, 30}, // Temp3
	{5, 20},  // Temp4
}

const (
	awayMin, awayMax       = 5.0, 25.0
	holidayMin, holidayMax = 5.0, 20.0
	sliderStep             = 0.5
)

type ProfileService struct {
	sched *schedule.Synchronizer
}

func NewProfileService(sched *schedule.Synchronizer) *ProfileService {
	return &ProfileService{sched: sched}
}

// State returns the current schedule plus editing state.
func (s *ProfileService) State(ctx context.Context) (heatzone.ProfileState, error) {
	return s.sched.State(), nil
}

// SelectMode sets the paint mode for subsequent gestures.
func (s *ProfileService) SelectMode(ctx context.Context, mode int) error {
	return s.sched.SelectMode(mode)
}

// BeginPaint starts a drag gesture at the given cell.
func (s *ProfileService) BeginPaint(ctx context.Context, day, slot int) error {
	return s.sched.BeginEdit(day, slot)
}

// MovePaint extends the active gesture to the given cell.
func (s *ProfileService) MovePaint(ctx context.Context, day, slot int) error {
	return s.sched.ExtendEdit(day, slot)
}

// EndPaint finishes the gesture, keeping the painted cells.
func (s *ProfileService) EndPaint(ctx context.Context) error {
	s.sched.EndEdit()
	return nil
}

// CancelPaint handles the pointer leaving the grid; the partial paint
// stays.
func (s *ProfileService) CancelPaint(ctx context.Context) error {
	s.sched.CancelEdit()
	return nil
}

// SetSetpoint validates against the slider range for the given mode and
// stores the value.
func (s *ProfileService) SetSetpoint(ctx context.Context, index int, value float64) error {
	if index < 1 || index > 4 {
		return schedule.ErrInvalidSetpointIndex
	}
	r := setpointRanges[index-1]
	if err := validateSlider(fmt.Sprintf("Temp%d", index), value, r.min, r.max); err != nil {
		return err
	}
	return s.sched.SetSetpoint(index, value)
}

// SetAwayTemp validates and stores the away temperature.
func (s *ProfileService) SetAwayTemp(ctx context.Context, value float64) error {
	if err := validateSlider("TempAway", value, awayMin, awayMax); err != nil {
		return err
	}
	s.sched.SetAwayTemp(value)
	return nil
}

// SetHolidayTemp validates and stores the holiday temperature.
func (s *ProfileService) SetHolidayTemp(ctx context.Context, value float64) error {
	if err := validateSlider("TempHoliday", value, holidayMin, holidayMax); err != nil {
		return err
	}
	s.sched.SetHolidayTemp(value)
	return nil
}

// SetActive toggles the profile activation flag.
func (s *ProfileService) SetActive(ctx context.Context, active bool) error {
	s.sched.SetActive(active)
	return nil
}

func validateSlider(field string, value, min, max float64) error {
	if value < min || value > max {
		return fmt.Errorf("%s %.1f outside range %.1f..%.1f", field, value, min, max)
	}
	if steps := value / sliderStep; steps != math.Trunc(steps) {
		return fmt.Errorf("%s %.2f is not a %.1f° step", field, value, sliderStep)
	}
	return nil
}
