package schedule

import (
	"errors"
	"sync"
	"time"

	"heatzone"
)

// Validation errors surfaced to callers of the editing operations.
var (
	ErrInvalidMode          = errors.New("mode identifier must be in 0..5")
	ErrInvalidCell          = errors.New("day/slot outside the 7x96 grid")
	ErrInvalidSetpointIndex = errors.New("setpoint index must be in 1..4")
)

// Synchronizer is the single owner of the in-memory schedule. Inbound
// bus updates, paint gestures, and settings edits all mutate state
// through it under one lock, so each field keeps last-write-wins
// semantics and readers only ever see complete values.
//
// The original runs on a single-threaded event loop; here HTTP handlers
// and bus callbacks arrive on separate goroutines, so the mutex stands
// in for that loop.
type Synchronizer struct {
	mu sync.Mutex

	matrix      heatzone.Matrix
	setpoints   [4]float64
	awayTemp    float64
	holidayTemp float64
	active      bool

	selected int // paint mode for the next gesture

	// drawing gesture; base is the pre-gesture matrix every extend
	// recomputes from, so a shrinking drag reverts stale paint.
	drawing    bool
	paintMode  int
	originDay  int
	originSlot int
	base       heatzone.Matrix

	revision  int64
	updatedAt time.Time
}

// NewSynchronizer returns a profile with the controller card defaults:
// empty (bypass) grid, setpoints 23/20/18/5, away 20, holiday 5, active.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{
		setpoints:   [4]float64{23.0, 20.0, 18.0, 5.0},
		awayTemp:    20.0,
		holidayTemp: 5.0,
		active:      true,
		updatedAt:   time.Now().UTC(),
	}
}

func (s *Synchronizer) touch() {
	s.revision++
	s.updatedAt = time.Now().UTC()
}

// Apply mutates exactly the field carried by u. The switch is exhaustive
// over the sealed Update variants; unknown suffixes never parse into one.
func (s *Synchronizer) Apply(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch v := u.(type) {
	case SetpointUpdate:
		s.setpoints[v.Index-1] = v.Value
	case AwayTempUpdate:
		s.awayTemp = v.Value
	case HolidayTempUpdate:
		s.holidayTemp = v.Value
	case ActivatedUpdate:
		s.active = v.Value
	case DayUpdate:
		s.matrix[v.Day] = v.Slots
	}
	s.touch()
}

// SelectMode sets the paint mode used by subsequent gestures.
func (s *Synchronizer) SelectMode(mode int) error {
	if mode < heatzone.ModeBypass || mode > heatzone.ModeOff {
		return ErrInvalidMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = mode
	s.touch()
	return nil
}

// BeginEdit starts a paint gesture at the given cell: snapshots the
// matrix, fixes the gesture's mode to the current selection, and paints
// the starting cell immediately.
func (s *Synchronizer) BeginEdit(day, slot int) error {
	if !validCell(day, slot) {
		return ErrInvalidCell
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.base = s.matrix
	s.drawing = true
	s.paintMode = s.selected
	s.originDay, s.originSlot = day, slot

	s.matrix[day][slot] = s.paintMode
	s.touch()
	return nil
}

// ExtendEdit repaints the rectangle spanned by the gesture origin and
// the given cell on top of the pre-gesture snapshot. Recomputing from
// the snapshot (never from the live matrix) means a drag that moves
// backward reverts the cells it no longer covers. Called while no
// gesture is active it is a no-op: a pointer-enter can race the
// pointer-up that ended the gesture.
func (s *Synchronizer) ExtendEdit(day, slot int) error {
	if !validCell(day, slot) {
		return ErrInvalidCell
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.drawing {
		return nil
	}

	next := s.base
	d0, d1 := minMax(s.originDay, day)
	i0, i1 := minMax(s.originSlot, slot)
	for d := d0; d <= d1; d++ {
		for i := i0; i <= i1; i++ {
			next[d][i] = s.paintMode
		}
	}
	s.matrix = next
	s.touch()
	return nil
}

// EndEdit finishes the gesture. The paint applied so far stays in the
// in-memory schedule (it is only published by an explicit save).
func (s *Synchronizer) EndEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawing = false
	s.base = heatzone.Matrix{}
}

// CancelEdit handles the pointer leaving the grid mid-gesture. It
// behaves exactly like EndEdit: the partial paint is kept, matching the
// controller card where mouseup and mouseleave share one handler.
func (s *Synchronizer) CancelEdit() {
	s.EndEdit()
}

// SetSetpoint overwrites one of the four mode temperatures (index 1..4).
func (s *Synchronizer) SetSetpoint(index int, value float64) error {
	if index < 1 || index > 4 {
		return ErrInvalidSetpointIndex
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setpoints[index-1] = value
	s.touch()
	return nil
}

// SetAwayTemp overwrites the away temperature.
func (s *Synchronizer) SetAwayTemp(value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awayTemp = value
	s.touch()
}

// SetHolidayTemp overwrites the holiday temperature.
func (s *Synchronizer) SetHolidayTemp(value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidayTemp = value
	s.touch()
}

// SetActive toggles the profile activation flag.
func (s *Synchronizer) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
	s.touch()
}

// Snapshot returns a value copy of the publishable schedule.
func (s *Synchronizer) Snapshot() heatzone.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleLocked()
}

// State returns the schedule plus the editing state the UI renders.
func (s *Synchronizer) State() heatzone.ProfileState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return heatzone.ProfileState{
		Schedule:     s.scheduleLocked(),
		SelectedMode: s.selected,
		Painting:     s.drawing,
		Revision:     s.revision,
		UpdatedAt:    s.updatedAt,
	}
}

// Revision returns the mutation counter; it advances on every state
// change and drives the re-render signal.
func (s *Synchronizer) Revision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *Synchronizer) scheduleLocked() heatzone.Schedule {
	return heatzone.Schedule{
		Matrix:      s.matrix,
		Setpoints:   s.setpoints,
		AwayTemp:    s.awayTemp,
		HolidayTemp: s.holidayTemp,
		Active:      s.active,
	}
}

func validCell(day, slot int) bool {
	return day >= 0 && day < heatzone.DaysPerWeek &&
		slot >= 0 && slot < heatzone.SlotsPerDay
}

func minMax(a, b int) (int, int) {
	if a <= b {
		return a, b
	}
	return b, a
}
