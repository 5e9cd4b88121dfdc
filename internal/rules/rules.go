package rules

import (
	"context"
	"fmt"
)

// Outcome is the typed view of a rule evaluation result. The underlying
// engine returns a loose string-keyed mapping; only the fields below are
// contracted, and absent keys map to zero values.
type Outcome struct {
	Message     string
	IsHoliday   bool
	HolidayName string
	HolidayDay  string
	Location    string
}

// Empty reports whether the evaluation produced no usable message.
func (o Outcome) Empty() bool { return o.Message == "" }

// Evaluator is the boundary to the external decision engine. An error means
// the engine could not produce a result at all; "ran fine but had nothing to
// say" is a normal empty Outcome, never an error.
type Evaluator interface {
	Evaluate(ctx context.Context, facts map[string]any) (Outcome, error)
}

// EvalError wraps an engine failure with the rule set it came from.
type EvalError struct {
	Ruleset string
	Err     error
}

func (e *EvalError) Error() string { return fmt.Sprintf("evaluate %s: %v", e.Ruleset, e.Err) }
func (e *EvalError) Unwrap() error { return e.Err }

// OutcomeFromMap builds the typed view from a raw result mapping.
func OutcomeFromMap(m map[string]any) Outcome {
	return Outcome{
		Message:     stringField(m, "message"),
		IsHoliday:   boolField(m, "is_holiday"),
		HolidayName: stringField(m, "holiday_name"),
		HolidayDay:  stringField(m, "day_of_week"),
		Location:    stringField(m, "location"),
	}
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func boolField(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}
