package budget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Step is a stage of plan entry. A draft moves header → limited items →
// unlimited items → submit, and is complete after a successful submit.
type Step string

const (
	StepHeader         Step = "header"
	StepLimitedItems   Step = "limited_items"
	StepUnlimitedItems Step = "unlimited_items"
	StepSubmit         Step = "submit"
	StepComplete       Step = "complete"
)

// Draft validation errors.
var (
	ErrInvalidYear     = errors.New("year must be positive")
	ErrPercentageRange = errors.New("percentage must be between 0 and 100")
	ErrEmptyItemName   = errors.New("budget item name is required")
	ErrDuplicateItem   = errors.New("duplicate budget item")
	ErrNegativeBudget  = errors.New("proposed budget must not be negative")
	ErrInvalidCategory = errors.New("unknown category")
	ErrNoItems         = errors.New("plan has no budget items")
	ErrUnknownStep     = errors.New("unknown draft step")
)

// Draft is a plan being entered. It is passed around by value; nothing
// here keeps state between calls.
type Draft struct {
	Step   Step   `json:"step"`
	Header Header `json:"header"`
	Lines  []Line `json:"details"`
}

// Advance checks the draft's current step and returns the step that
// follows it.
func (d Draft) Advance() (Step, error) {
	switch d.Step {
	case StepHeader, "":
		if err := checkHeader(d.Header); err != nil {
			return StepHeader, err
		}
		return StepLimitedItems, nil
	case StepLimitedItems:
		if err := checkLines(d.Lines, func(c Category) bool { return c.IsLimited() }); err != nil {
			return StepLimitedItems, err
		}
		return StepUnlimitedItems, nil
	case StepUnlimitedItems:
		if err := checkLines(d.Lines, func(c Category) bool { return !c.IsLimited() }); err != nil {
			return StepUnlimitedItems, err
		}
		return StepSubmit, nil
	case StepSubmit:
		if err := d.Check(); err != nil {
			return StepSubmit, err
		}
		return StepComplete, nil
	}
	return d.Step, fmt.Errorf("%w: %q", ErrUnknownStep, d.Step)
}

// Check runs every step's validation over the whole draft.
func (d Draft) Check() error {
	if err := checkHeader(d.Header); err != nil {
		return err
	}
	if len(d.Lines) == 0 {
		return ErrNoItems
	}
	return checkLines(d.Lines, Category.IsValid)
}

// Evaluate validates the draft's lines against its header's ceilings.
func (d Draft) Evaluate() Validation {
	return Evaluate(d.Header, d.Lines)
}

func checkHeader(h Header) error {
	if h.Year <= 0 {
		return ErrInvalidYear
	}
	for _, p := range h.Percentages() {
		if p.IsNegative() || p.GreaterThan(hundred) {
			return fmt.Errorf("%w: %s", ErrPercentageRange, p.String())
		}
	}
	return nil
}

// checkLines validates every line whose category matches inStep. Names
// are checked for uniqueness across the whole draft so a limited and an
// unlimited item cannot share a name.
func checkLines(lines []Line, inStep func(Category) bool) error {
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		name := strings.TrimSpace(l.Name)
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup && name != "" {
			return fmt.Errorf("%w: %q", ErrDuplicateItem, name)
		}
		seen[key] = struct{}{}

		if !l.Category.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidCategory, l.Category)
		}
		if !inStep(l.Category) {
			continue
		}
		if name == "" {
			return ErrEmptyItemName
		}
		if l.Amount.LessThan(decimal.Zero) {
			return fmt.Errorf("%w: %q", ErrNegativeBudget, name)
		}
	}
	return nil
}
