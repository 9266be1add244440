package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"heatzone"
)

// The fourteen per-profile topic suffixes, in publish order.
var fieldSuffixes = []string{
	"Temp1", "Temp2", "Temp3", "Temp4",
	"TempAway", "TempHoliday",
	"Activated",
	"Day1", "Day2", "Day3", "Day4", "Day5", "Day6", "Day7",
}

// Suffixes returns a copy of the recognized topic suffixes.
func Suffixes() []string {
	out := make([]string, len(fieldSuffixes))
	copy(out, fieldSuffixes)
	return out
}

// ErrUnknownField marks a topic suffix outside the recognized set.
var ErrUnknownField = errors.New("unknown schedule field")

// Update is one parsed inbound field update. The concrete variants below
// are the only implementations; the synchronizer switches over them
// exhaustively, so an unrecognized suffix never reaches it.
type Update interface {
	// Field returns the topic suffix the update came from.
	Field() string
}

// SetpointUpdate carries Temp1..Temp4 (Index 1..4).
type SetpointUpdate struct {
	Index int
	Value float64
}

func (u SetpointUpdate) Field() string { return "Temp" + strconv.Itoa(u.Index) }

// AwayTempUpdate carries TempAway.
type AwayTempUpdate struct{ Value float64 }

func (AwayTempUpdate) Field() string { return "TempAway" }

// HolidayTempUpdate carries TempHoliday.
type HolidayTempUpdate struct{ Value float64 }

func (HolidayTempUpdate) Field() string { return "TempHoliday" }

// ActivatedUpdate carries Activated.
type ActivatedUpdate struct{ Value bool }

func (ActivatedUpdate) Field() string { return "Activated" }

// DayUpdate carries a fully decoded day row (Day index 0..6 = Day1..Day7).
type DayUpdate struct {
	Day   int
	Slots heatzone.DaySlots
}

func (u DayUpdate) Field() string { return "Day" + strconv.Itoa(u.Day+1) }

// ParseUpdate turns a topic suffix plus raw payload into a typed Update.
// Scalar payloads tolerate the controller's loose encodings (numbers as
// JSON strings, Activated as true/"true"/1). Day payloads must decode as
// a complete TimeBlock list or the whole update fails.
func ParseUpdate(field string, payload []byte) (Update, error) {
	switch field {
	case "Temp1", "Temp2", "Temp3", "Temp4":
		v, err := parseNumber(payload)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		return SetpointUpdate{Index: int(field[4] - '0'), Value: v}, nil

	case "TempAway":
		v, err := parseNumber(payload)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		return AwayTempUpdate{Value: v}, nil

	case "TempHoliday":
		v, err := parseNumber(payload)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		return HolidayTempUpdate{Value: v}, nil

	case "Activated":
		return ActivatedUpdate{Value: parseTruthy(payload)}, nil

	case "Day1", "Day2", "Day3", "Day4", "Day5", "Day6", "Day7":
		var blocks []heatzone.TimeBlock
		if err := json.Unmarshal(payload, &blocks); err != nil {
			return nil, fmt.Errorf("field %s: not a block list: %w", field, err)
		}
		slots, err := DecodeDay(blocks)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		return DayUpdate{Day: int(field[3] - '1'), Slots: slots}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// parseNumber accepts a JSON number, a JSON string holding a number, or a
// bare numeric token.
func parseNumber(payload []byte) (float64, error) {
	var f float64
	if err := json.Unmarshal(payload, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	return strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
}

// parseTruthy accepts boolean true, string "true", or numeric 1 as true;
// everything else, including garbage, is false.
func parseTruthy(payload []byte) bool {
	var b bool
	if err := json.Unmarshal(payload, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		return s == "true"
	}
	var n float64
	if err := json.Unmarshal(payload, &n); err == nil {
		return n == 1
	}
	return false
}
