package budget

import "testing"

func TestNextWarning(t *testing.T) {
	tests := []struct {
		shown, over bool
		want        WarningAction
	}{
		{false, false, WarningNone},
		{false, true, WarningRaise},
		{true, true, WarningNone},
		{true, false, WarningWithdraw},
	}
	for _, tt := range tests {
		if got := NextWarning(tt.shown, tt.over); got != tt.want {
			t.Errorf("NextWarning(shown=%v, over=%v) = %s, want %s", tt.shown, tt.over, got, tt.want)
		}
	}
}

func TestWarningTracker(t *testing.T) {
	var tracker WarningTracker
	over := Validation{AnyOverLimit: true}
	ok := Validation{}

	steps := []struct {
		in   Validation
		want WarningAction
	}{
		{ok, WarningNone},
		{over, WarningRaise},
		{over, WarningNone},
		{over, WarningNone},
		{ok, WarningWithdraw},
		{ok, WarningNone},
		{over, WarningRaise},
	}
	raised := 0
	for i, s := range steps {
		got := tracker.Observe(s.in)
		if got != s.want {
			t.Fatalf("step %d: expected %s, got %s", i, s.want, got)
		}
		if got == WarningRaise {
			raised++
		}
	}
	if raised != 2 {
		t.Errorf("expected 2 raises across two violations, got %d", raised)
	}
	if !tracker.Shown() {
		t.Error("expected warning shown at the end")
	}
}

func TestNewWarningTracker(t *testing.T) {
	over := Validation{AnyOverLimit: true}

	resumed := NewWarningTracker(true)
	if got := resumed.Observe(over); got != WarningNone {
		t.Errorf("expected a shown warning not to be raised again, got %s", got)
	}
	if got := resumed.Observe(Validation{}); got != WarningWithdraw {
		t.Errorf("expected withdraw once back within limits, got %s", got)
	}
	if resumed.Shown() {
		t.Error("expected warning hidden after withdraw")
	}

	fresh := NewWarningTracker(false)
	if got := fresh.Observe(over); got != WarningRaise || !fresh.Shown() {
		t.Errorf("expected raise on a fresh session, got %s", got)
	}
}
