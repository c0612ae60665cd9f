package budget

// WarningAction tells a presentation layer what to do with the single
// over-limit warning.
type WarningAction string

const (
	WarningNone     WarningAction = "none"
	WarningRaise    WarningAction = "raise"
	WarningWithdraw WarningAction = "withdraw"
)

// NextWarning returns the action for a validation result given whether the
// warning is currently shown. A shown warning is never raised again.
func NextWarning(shown, anyOverLimit bool) WarningAction {
	switch {
	case anyOverLimit && !shown:
		return WarningRaise
	case !anyOverLimit && shown:
		return WarningWithdraw
	default:
		return WarningNone
	}
}

// WarningTracker owns the "is a warning currently shown" flag for one
// editing session. It is not safe for concurrent use.
type WarningTracker struct {
	shown bool
}

// NewWarningTracker resumes a session whose warning is already shown or not.
func NewWarningTracker(shown bool) *WarningTracker {
	return &WarningTracker{shown: shown}
}

// Observe feeds a validation result and returns the resulting action.
func (t *WarningTracker) Observe(v Validation) WarningAction {
	action := NextWarning(t.shown, v.AnyOverLimit)
	switch action {
	case WarningRaise:
		t.shown = true
	case WarningWithdraw:
		t.shown = false
	}
	return action
}

// Shown reports whether the warning is currently displayed.
func (t *WarningTracker) Shown() bool { return t.shown }
