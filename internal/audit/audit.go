// Package audit persists one immutable record per decision resolution.
// Records are append-only: nothing in this system updates, deletes, or reads
// them back.
package audit

import (
	"context"
	"strconv"
)

// Header is the fixed column order every backend preserves.
var Header = []string{
	"generated_at_iso",
	"date",
	"time",
	"day_of_week_name",
	"day_of_week_num",
	"minutes",
	"rule_input_json",
	"rule_output_message",
}

// Record is one audit row. RuleInputJSON is the exact compact JSON payload
// sent to rule evaluation for this resolution.
type Record struct {
	GeneratedAt       string
	Date              string
	Time              string
	DayOfWeekName     string
	DayOfWeekNum      int
	Minutes           int
	RuleInputJSON     string
	RuleOutputMessage string
}

func (r Record) row() []string {
	return []string{
		r.GeneratedAt,
		r.Date,
		r.Time,
		r.DayOfWeekName,
		strconv.Itoa(r.DayOfWeekNum),
		strconv.Itoa(r.Minutes),
		r.RuleInputJSON,
		r.RuleOutputMessage,
	}
}

// Store appends audit records to a durable backend. Implementations must
// serialize appends so interleaved writers never corrupt or drop rows.
type Store interface {
	Append(ctx context.Context, rec Record) error
}
