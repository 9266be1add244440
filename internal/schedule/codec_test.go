package schedule

import (
	"math/rand"
	"reflect"
	"testing"

	"heatzone"
)

func uniformDay(mode int) heatzone.DaySlots {
	var d heatzone.DaySlots
	for i := range d {
		d[i] = mode
	}
	return d
}

func TestEncodeDay_UniformDayIsSingleBlock(t *testing.T) {
	blocks := EncodeDay(uniformDay(3))
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d: %+v", len(blocks), blocks)
	}
	want := heatzone.TimeBlock{From: "0:00", To: "24:00", TempID: 3}
	if blocks[0] != want {
		t.Fatalf("expected %+v, got %+v", want, blocks[0])
	}
}

func TestEncodeDay_ClockFormatting(t *testing.T) {
	// Runs starting at slots 0, 2, 39: hour unpadded, minute padded.
	var d heatzone.DaySlots
	for i := 2; i < 39; i++ {
		d[i] = 1
	}
	for i := 39; i < heatzone.SlotsPerDay; i++ {
		d[i] = 2
	}
	blocks := EncodeDay(d)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].From != "0:00" || blocks[0].To != "0:30" {
		t.Fatalf("block 0 boundaries: %+v", blocks[0])
	}
	if blocks[1].From != "0:30" || blocks[1].To != "9:45" {
		t.Fatalf("block 1 boundaries: %+v", blocks[1])
	}
	if blocks[2].From != "9:45" || blocks[2].To != "24:00" {
		t.Fatalf("block 2 boundaries: %+v", blocks[2])
	}
}

func TestEncodeDay_SingleSlotRun(t *testing.T) {
	var d heatzone.DaySlots
	d[10] = 5
	blocks := EncodeDay(d)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %+v", len(blocks), blocks)
	}
	mid := blocks[1]
	if mid.From != "2:30" || mid.To != "2:45" || mid.TempID != 5 {
		t.Fatalf("one-slot block wrong: %+v", mid)
	}
}

// assertNormalForm checks the canonical block-list invariants: no two
// consecutive blocks share a mode, each To meets the next From, the
// first block starts the day and the last ends at "24:00".
func assertNormalForm(t *testing.T, blocks []heatzone.TimeBlock) {
	t.Helper()
	if len(blocks) == 0 {
		t.Fatalf("empty block list")
	}
	if blocks[0].From != "0:00" {
		t.Fatalf("first block starts at %q", blocks[0].From)
	}
	for i := 1; i < len(blocks); i++ {
		if blocks[i].TempID == blocks[i-1].TempID {
			t.Fatalf("blocks %d and %d share mode %d", i-1, i, blocks[i].TempID)
		}
		if blocks[i-1].To != blocks[i].From {
			t.Fatalf("gap between blocks %d and %d: %q != %q",
				i-1, i, blocks[i-1].To, blocks[i].From)
		}
	}
	if last := blocks[len(blocks)-1]; last.To != EndOfDay {
		t.Fatalf("terminal block ends at %q", last.To)
	}
}

func TestEncodeDay_NormalForm(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 50; n++ {
		var d heatzone.DaySlots
		for i := range d {
			d[i] = rng.Intn(6)
		}
		assertNormalForm(t, EncodeDay(d))
	}
}

func TestRoundTrip_DecodeOfEncodeIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	days := []heatzone.DaySlots{
		{}, // all bypass
		uniformDay(5),
	}
	for n := 0; n < 100; n++ {
		var d heatzone.DaySlots
		for i := range d {
			d[i] = rng.Intn(6)
		}
		days = append(days, d)
	}

	for _, d := range days {
		got, err := DecodeDay(EncodeDay(d))
		if err != nil {
			t.Fatalf("decode(encode): %v", err)
		}
		if got != d {
			t.Fatalf("round trip mismatch:\n in: %v\nout: %v", d, got)
		}
	}
}

func TestEncode_NormalFormIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for n := 0; n < 50; n++ {
		var d heatzone.DaySlots
		for i := range d {
			d[i] = rng.Intn(6)
		}
		once := EncodeDay(d)
		decoded, err := DecodeDay(once)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		twice := EncodeDay(decoded)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("encode not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
		}
	}
}

func TestDecodeDay_ControllerScenario(t *testing.T) {
	blocks := []heatzone.TimeBlock{
		{From: "0:00", To: "6:00", TempID: 1},
		{From: "6:00", To: "22:00", TempID: 2},
		{From: "22:00", To: "24:00", TempID: 1},
	}
	slots, err := DecodeDay(blocks)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := 0; i < 24; i++ {
		if slots[i] != 1 {
			t.Fatalf("slot %d = %d, want 1", i, slots[i])
		}
	}
	for i := 24; i < 88; i++ {
		if slots[i] != 2 {
			t.Fatalf("slot %d = %d, want 2", i, slots[i])
		}
	}
	for i := 88; i < 96; i++ {
		if slots[i] != 1 {
			t.Fatalf("slot %d = %d, want 1", i, slots[i])
		}
	}
	if got := EncodeDay(slots); !reflect.DeepEqual(got, blocks) {
		t.Fatalf("re-encode differs:\nwant: %+v\ngot:  %+v", blocks, got)
	}
}

func TestDecodeDay_UnsortedAndOverlappingLaterWins(t *testing.T) {
	blocks := []heatzone.TimeBlock{
		{From: "12:00", To: "24:00", TempID: 4},
		{From: "0:00", To: "13:00", TempID: 1}, // overlaps the hour after noon
	}
	slots, err := DecodeDay(blocks)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if slots[47] != 1 || slots[48] != 1 || slots[51] != 1 {
		t.Fatalf("later block should win on overlap: %v", slots[44:56])
	}
	if slots[52] != 4 {
		t.Fatalf("slot 52 = %d, want 4", slots[52])
	}
}

func TestDecodeDay_GapsDefaultToBypass(t *testing.T) {
	slots, err := DecodeDay([]heatzone.TimeBlock{
		{From: "6:00", To: "7:00", TempID: 2},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if slots[0] != 0 || slots[23] != 0 || slots[95] != 0 {
		t.Fatalf("uncovered slots must stay 0: %v", slots)
	}
	for i := 24; i < 28; i++ {
		if slots[i] != 2 {
			t.Fatalf("slot %d = %d, want 2", i, slots[i])
		}
	}
}

func TestDecodeDay_MalformedClockFailsWholeDay(t *testing.T) {
	cases := []struct {
		name   string
		blocks []heatzone.TimeBlock
	}{
		{"no colon", []heatzone.TimeBlock{{From: "600", To: "7:00", TempID: 1}}},
		{"bad hour", []heatzone.TimeBlock{{From: "x:00", To: "7:00", TempID: 1}}},
		{"bad minute", []heatzone.TimeBlock{{From: "6:zz", To: "7:00", TempID: 1}}},
		{"minute range", []heatzone.TimeBlock{{From: "6:75", To: "7:00", TempID: 1}}},
		{"hour range", []heatzone.TimeBlock{{From: "25:00", To: "26:00", TempID: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slots, err := DecodeDay(tc.blocks)
			if err == nil {
				t.Fatalf("expected error, got slots %v", slots)
			}
			if slots != (heatzone.DaySlots{}) {
				t.Fatalf("failed decode must return the zero row")
			}
		})
	}
}

func TestDecodeDay_QuarterCeilOnRaggedBoundaries(t *testing.T) {
	// 6:10 floors to slot 24; 6:50 ceils to slot 28.
	slots, err := DecodeDay([]heatzone.TimeBlock{
		{From: "6:10", To: "6:50", TempID: 3},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if slots[23] != 0 || slots[24] != 3 || slots[27] != 3 || slots[28] != 0 {
		t.Fatalf("ragged boundaries misaligned: %v", slots[20:32])
	}
}
