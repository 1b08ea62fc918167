package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestampLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2026-03-10":                time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		"2026-03-10T08:30:00Z":      time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC),
		"2026-03-10T08:30:00-03:00": time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC),
		"2026-03-10T08:30":          time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		got, err := ParseTimestamp(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q: expected %s, got %s", raw, want, got.Time)
		}
	}

	if _, err := ParseTimestamp("10/03/2026"); err == nil {
		t.Fatalf("expected error for dd/mm/yyyy")
	}
	if _, err := ParseTimestamp(" "); err == nil {
		t.Fatalf("expected error for blank input")
	}
}

func TestTimestampEndOfDay(t *testing.T) {
	day, _ := ParseTimestamp("2026-03-10")
	if got := day.EndOfDay(); got.Day() != 10 || got.Hour() != 23 {
		t.Fatalf("expected end of the same day, got %s", got)
	}
	instant, _ := ParseTimestamp("2026-03-10T08:30:00Z")
	if !instant.EndOfDay().Equal(instant.Time) {
		t.Fatalf("instants must not move")
	}
}

func TestTimestampJSON(t *testing.T) {
	var payload struct {
		At *Timestamp `json:"data_hora"`
	}
	if err := json.Unmarshal([]byte(`{"data_hora":"2026-03-10"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.At == nil || !payload.At.DateOnly {
		t.Fatalf("expected date-only timestamp, got %+v", payload.At)
	}
	if err := json.Unmarshal([]byte(`{"data_hora":"ontem"}`), &payload); err == nil {
		t.Fatalf("expected invalid timestamp error")
	}
}
