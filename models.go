package heatzone

import "time"

// Grid geometry: a week of 15-minute slots.
const (
	DaysPerWeek = 7
	SlotsPerDay = 96 // 24h * 4 slots
)

// Mode identifiers stored per slot.
const (
	ModeBypass = 0 // follow the controller's own program
	ModeTemp1  = 1
	ModeTemp2  = 2
	ModeTemp3  = 3
	ModeTemp4  = 4
	ModeOff    = 5 // explicitly off
)

// DaySlots is one day row: a mode identifier per 15-minute slot.
// Being an array (not a slice) it copies by value, which the paint
// gesture relies on for its recompute-from-snapshot behavior.
type DaySlots [SlotsPerDay]int

// Matrix is the full week, Monday first.
type Matrix [DaysPerWeek]DaySlots

// TimeBlock is the wire form of a contiguous run of slots sharing one
// mode. From/To are "H:MM" clock strings; the terminal block of a day
// always ends at the literal "24:00".
type TimeBlock struct {
	From   string `json:"From"`
	To     string `json:"To"`
	TempID int    `json:"TempID"`
}

// Schedule is the publishable profile aggregate: the week matrix plus
// the scalar fields that ride alongside it on the bus.
type Schedule struct {
	Matrix      Matrix     `json:"matrix"`
	Setpoints   [4]float64 `json:"setpoints"` // modes 1..4, °C
	AwayTemp    float64    `json:"away_temp"`
	HolidayTemp float64    `json:"holiday_temp"`
	Active      bool       `json:"active"`
}

// ProfileState is the editing view of a profile: the schedule plus the
// UI-facing state that is never published.
type ProfileState struct {
	Schedule     `json:"schedule"`
	SelectedMode int       `json:"selected_mode"`
	Painting     bool      `json:"painting"`
	Revision     int64     `json:"revision"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SyncStatus reports the bus connection as seen by the save path.
type SyncStatus struct {
	Connected  bool      `json:"connected"`
	Prefix     string    `json:"prefix"`
	LastSaveAt time.Time `json:"last_save_at,omitempty"`
}

// Event kinds recorded in the profile log.
const (
	EventSave        = "SAVE"         // profile published to the bus
	EventDecodeError = "DECODE_ERROR" // inbound payload dropped
	EventConnect     = "CONNECT"      // broker session established
	EventDisconnect  = "DISCONNECT"   // broker session lost
)

// EventTypes lists every kind the log records.
func EventTypes() []string {
	return []string{EventSave, EventDecodeError, EventConnect, EventDisconnect}
}

// ValidEventType reports whether t names a known event kind. t must
// already be in canonical (upper-case) form.
func ValidEventType(t string) bool {
	switch t {
	case EventSave, EventDecodeError, EventConnect, EventDisconnect:
		return true
	}
	return false
}

// ProfileEvent is a single log entry.
type ProfileEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"` // one of the Event* kinds
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don’t expose hash
}
