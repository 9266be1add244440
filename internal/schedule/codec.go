package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"heatzone"
)

// EndOfDay is the terminal boundary token. It only ever appears in the
// To field of a day's last block; slot arithmetic never sees hour 24.
const EndOfDay = "24:00"

// slotClock renders the start boundary of slot i as "H:MM"
// (hour unpadded, minutes zero-padded).
func slotClock(i int) string {
	return fmt.Sprintf("%d:%02d", i/4, i%4*15)
}

// parseClock splits an "H:MM" string into hour and minute.
func parseClock(s string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("clock %q: missing ':'", s)
	}
	hour, err = strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("clock %q: bad hour: %w", s, err)
	}
	minute, err = strconv.Atoi(strings.TrimSpace(ms))
	if err != nil {
		return 0, 0, fmt.Errorf("clock %q: bad minute: %w", s, err)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock %q: out of range", s)
	}
	return hour, minute, nil
}

// EncodeDay converts one day row into its minimal run-length block list.
// Blocks come out contiguous and ordered; adjacent equal-mode slots merge
// as a byproduct of the scan. The final block always closes at "24:00".
func EncodeDay(slots heatzone.DaySlots) []heatzone.TimeBlock {
	blocks := make([]heatzone.TimeBlock, 0, 8)
	open := heatzone.TimeBlock{From: slotClock(0), TempID: slots[0]}

	for i := 1; i < heatzone.SlotsPerDay; i++ {
		if slots[i] == open.TempID {
			continue
		}
		open.To = slotClock(i)
		blocks = append(blocks, open)
		open = heatzone.TimeBlock{From: slotClock(i), TempID: slots[i]}
	}

	open.To = EndOfDay
	return append(blocks, open)
}

// DecodeDay converts a block list back into a day row. Slots not covered
// by any block stay at mode 0. Blocks are applied in input order, so on
// overlap the later block wins; out-of-range boundaries are clamped to
// the day. The controller is a trusted producer, so overlapping or
// non-covering lists are accepted rather than rejected.
//
// Malformed clock strings fail the whole day: either every block parses
// and a complete row is returned, or an error and the zero row.
func DecodeDay(blocks []heatzone.TimeBlock) (heatzone.DaySlots, error) {
	var slots heatzone.DaySlots

	for _, b := range blocks {
		fromHour, fromMin, err := parseClock(b.From)
		if err != nil {
			return heatzone.DaySlots{}, fmt.Errorf("block from: %w", err)
		}
		toHour, toMin, err := parseClock(b.To)
		if err != nil {
			return heatzone.DaySlots{}, fmt.Errorf("block to: %w", err)
		}

		start := fromHour*4 + fromMin/15
		end := toHour*4 + (toMin+14)/15 // ceil to the next slot boundary
		if toHour == 24 {
			end = heatzone.SlotsPerDay
		}

		if start < 0 {
			start = 0
		}
		if end > heatzone.SlotsPerDay {
			end = heatzone.SlotsPerDay
		}
		for i := start; i < end; i++ {
			slots[i] = b.TempID
		}
	}

	return slots, nil
}
