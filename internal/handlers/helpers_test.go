package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	valid := map[string]string{
		`5000`:      "5000",
		`"5000"`:    "5000",
		`0.01`:      "0.01",
		`" 12.50 "`: "12.5",
		`1e3`:       "1000",
	}
	for raw, want := range valid {
		got, err := parseAmount(json.RawMessage(raw))
		if err != nil {
			t.Errorf("%s: unexpected error %v", raw, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("%s: expected %s, got %s", raw, want, got)
		}
	}

	for _, raw := range []string{``, `null`, `0`, `-1`, `"-0.01"`, `"ten"`, `{}`, `[1]`, `"`} {
		if _, err := parseAmount(json.RawMessage(raw)); err == nil {
			t.Errorf("%q: expected an error", raw)
		}
	}
}

func TestParseFlexibleTime(t *testing.T) {
	got, err := parseFlexibleTime("2024-01-31T08:00:00+08:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected instant %s", got)
	}

	got, err = parseFlexibleTime("2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Day() != 31 || got.Hour() != 23 {
		t.Errorf("expected end of day, got %s", got)
	}

	if _, err := parseFlexibleTime("31/01/2024"); err == nil {
		t.Error("expected an error")
	}
}
