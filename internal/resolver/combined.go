package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"openhours/internal/audit"
	"openhours/internal/rules"
	"openhours/internal/temporal"
)

// Combined resolves with a single rule set that encodes the holiday
// precedence itself and reports the chosen path through is_holiday.
type Combined struct {
	Rules rules.Evaluator
	Audit audit.Store
	Log   *slog.Logger
}

// NewCombined wires the evaluator and the audit store.
func NewCombined(eval rules.Evaluator, store audit.Store) *Combined {
	return &Combined{Rules: eval, Audit: store}
}

// Resolve runs the full pipeline for one instant.
func (r *Combined) Resolve(ctx context.Context, at time.Time) (Resolution, error) {
	facts := temporal.Derive(at)
	in := combinedInput{Date: facts.Date, DayOfWeek: facts.DayNum, Minutes: facts.Minutes}

	outcome, err := r.Rules.Evaluate(ctx, in.Map())
	if err != nil {
		logger(r.Log).Warn("rule evaluation failed", "date", facts.Date, "error", err)
		outcome = rules.Outcome{}
	}

	verdict := Verdict{Path: PathBusinessHours, Message: outcome.Message}
	if outcome.IsHoliday {
		verdict.Path = PathPublicHoliday
		verdict.HolidayName = outcome.HolidayName
		verdict.HolidayDay = outcome.HolidayDay
		verdict.Location = outcome.Location
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return Resolution{}, fmt.Errorf("marshal rule input: %w", err)
	}
	if err := r.Audit.Append(ctx, record(at, facts, string(payload), verdict.Message)); err != nil {
		return Resolution{}, err
	}
	return Resolution{Facts: facts, Verdict: verdict}, nil
}
