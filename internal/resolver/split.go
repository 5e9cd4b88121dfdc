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

// Split resolves with two independent rule sets, holiday first. A non-empty
// holiday message is authoritative: business hours are consulted only when
// the holiday evaluation has nothing to say.
type Split struct {
	Holiday  rules.Evaluator
	Business rules.Evaluator
	Audit    audit.Store
	Log      *slog.Logger
}

// NewSplit wires the two evaluators and the audit store.
func NewSplit(holiday, business rules.Evaluator, store audit.Store) *Split {
	return &Split{Holiday: holiday, Business: business, Audit: store}
}

// Resolve runs the full pipeline for one instant.
func (r *Split) Resolve(ctx context.Context, at time.Time) (Resolution, error) {
	facts := temporal.Derive(at)
	hin := holidayInput{Date: facts.Date}
	bin := businessInput{DayOfWeek: facts.DayNum, Minutes: facts.Minutes}

	holiday, err := r.Holiday.Evaluate(ctx, hin.Map())
	if err != nil {
		logger(r.Log).Warn("holiday evaluation failed", "date", facts.Date, "error", err)
		holiday = rules.Outcome{}
	}

	verdict := Verdict{Path: PathBusinessHours}
	if !holiday.Empty() {
		verdict = Verdict{
			Path:        PathPublicHoliday,
			Message:     holiday.Message,
			HolidayName: holiday.HolidayName,
			HolidayDay:  holiday.HolidayDay,
			Location:    holiday.Location,
		}
	} else {
		business, err := r.Business.Evaluate(ctx, bin.Map())
		if err != nil {
			logger(r.Log).Warn("business hours evaluation failed", "date", facts.Date, "error", err)
			business = rules.Outcome{}
		}
		verdict.Message = business.Message
	}

	payload, err := json.Marshal(splitInput{Holiday: hin, BusinessHours: bin})
	if err != nil {
		return Resolution{}, fmt.Errorf("marshal rule input: %w", err)
	}
	if err := r.Audit.Append(ctx, record(at, facts, string(payload), verdict.Message)); err != nil {
		return Resolution{}, err
	}
	return Resolution{Facts: facts, Verdict: verdict}, nil
}
