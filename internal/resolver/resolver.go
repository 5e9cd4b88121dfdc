// Package resolver turns an instant into a single open/closed verdict by
// consulting rule evaluation, applies the holiday precedence policy, and
// appends one audit record per resolution.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"openhours/internal/audit"
	"openhours/internal/temporal"
)

// Decision paths. Exactly one is chosen per resolution.
const (
	PathPublicHoliday = "public-holiday"
	PathBusinessHours = "business-hours"
)

// Verdict is the final outcome of a resolution. Holiday fields are populated
// only on the public-holiday path.
type Verdict struct {
	Path        string `json:"decision_path"`
	Message     string `json:"message"`
	HolidayName string `json:"holiday_name,omitempty"`
	HolidayDay  string `json:"holiday_day,omitempty"`
	Location    string `json:"location,omitempty"`
}

// NoResult reports whether evaluation produced no usable message. This is a
// normal state, surfaced explicitly rather than failing.
func (v Verdict) NoResult() bool { return v.Message == "" }

// Resolution pairs the derived facts with the verdict.
type Resolution struct {
	Facts   temporal.Facts `json:"generated"`
	Verdict Verdict        `json:"decision"`
}

// Resolver resolves one instant to completion: fact derivation, rule
// evaluation, and the audit append. An error is fatal to the request and
// only ever comes from the audit store; evaluator failures are downgraded
// to empty results internally.
type Resolver interface {
	Resolve(ctx context.Context, at time.Time) (Resolution, error)
}

// Fact payload shapes. Field order here fixes the JSON key order stored in
// the audit log, and Map() is what actually goes to the evaluator, so the
// logged payload always round-trips to the evaluated one.

type holidayInput struct {
	Date string `json:"date"`
}

func (in holidayInput) Map() map[string]any {
	return map[string]any{"date": in.Date}
}

type businessInput struct {
	DayOfWeek int `json:"day_of_week"`
	Minutes   int `json:"minutes"`
}

func (in businessInput) Map() map[string]any {
	return map[string]any{"day_of_week": in.DayOfWeek, "minutes": in.Minutes}
}

type combinedInput struct {
	Date      string `json:"date"`
	DayOfWeek int    `json:"day_of_week"`
	Minutes   int    `json:"minutes"`
}

func (in combinedInput) Map() map[string]any {
	return map[string]any{"date": in.Date, "day_of_week": in.DayOfWeek, "minutes": in.Minutes}
}

type splitInput struct {
	Holiday       holidayInput  `json:"holiday"`
	BusinessHours businessInput `json:"business_hours"`
}

// generatedAtLayout matches the instant's ISO 8601 form with time, as logged
// by every resolution.
const generatedAtLayout = "2006-01-02T15:04:05"

func record(at time.Time, f temporal.Facts, inputJSON, message string) audit.Record {
	return audit.Record{
		GeneratedAt:       at.Format(generatedAtLayout),
		Date:              f.Date,
		Time:              f.Time,
		DayOfWeekName:     f.DayName,
		DayOfWeekNum:      f.DayNum,
		Minutes:           f.Minutes,
		RuleInputJSON:     inputJSON,
		RuleOutputMessage: message,
	}
}

func logger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
