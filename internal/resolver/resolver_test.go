package resolver_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"openhours/internal/audit"
	"openhours/internal/resolver"
	"openhours/internal/rules"
)

// spyEvaluator records every call and replays a fixed outcome or error.
type spyEvaluator struct {
	outcome rules.Outcome
	err     error
	calls   []map[string]any
}

func (s *spyEvaluator) Evaluate(_ context.Context, facts map[string]any) (rules.Outcome, error) {
	s.calls = append(s.calls, facts)
	if s.err != nil {
		return rules.Outcome{}, s.err
	}
	return s.outcome, nil
}

var (
	tuesdayMorning = time.Date(2026, 1, 27, 9, 0, 0, 0, time.UTC)
	christmas      = time.Date(2026, 12, 25, 10, 0, 0, 0, time.UTC)
)

func TestSplitBusinessHoursPath(t *testing.T) {
	holiday := &spyEvaluator{}
	business := &spyEvaluator{outcome: rules.Outcome{Message: "Open"}}
	store := audit.NewMemoryStore()
	r := resolver.NewSplit(holiday, business, store)

	res, err := r.Resolve(context.Background(), tuesdayMorning)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Verdict.Path != resolver.PathBusinessHours || res.Verdict.Message != "Open" {
		t.Fatalf("verdict: %+v", res.Verdict)
	}
	if res.Verdict.NoResult() {
		t.Fatalf("unexpected no-result")
	}
	if len(business.calls) != 1 {
		t.Fatalf("business evaluator called %d times", len(business.calls))
	}
	want := map[string]any{"day_of_week": 2, "minutes": 540}
	if !reflect.DeepEqual(business.calls[0], want) {
		t.Fatalf("business facts: %v", business.calls[0])
	}
	if !reflect.DeepEqual(holiday.calls[0], map[string]any{"date": "2026-01-27"}) {
		t.Fatalf("holiday facts: %v", holiday.calls[0])
	}

	recs := store.Records()
	if len(recs) != 1 {
		t.Fatalf("expected one audit row, got %d", len(recs))
	}
	rec := recs[0]
	if rec.DayOfWeekNum != 2 || rec.Minutes != 540 || rec.DayOfWeekName != "Tuesday" {
		t.Fatalf("audit facts: %+v", rec)
	}
	if rec.GeneratedAt != "2026-01-27T09:00:00" || rec.Date != "2026-01-27" || rec.Time != "09:00" {
		t.Fatalf("audit timestamps: %+v", rec)
	}
	if rec.RuleOutputMessage != "Open" {
		t.Fatalf("audit message: %q", rec.RuleOutputMessage)
	}
}

func TestSplitHolidayPrecedence(t *testing.T) {
	holiday := &spyEvaluator{outcome: rules.Outcome{
		Message:     "Closed - Christmas Day",
		HolidayName: "Christmas Day",
		HolidayDay:  "Friday",
		Location:    "QLD",
	}}
	// business would say open, but must never be asked
	business := &spyEvaluator{outcome: rules.Outcome{Message: "Open"}}
	store := audit.NewMemoryStore()
	r := resolver.NewSplit(holiday, business, store)

	res, err := r.Resolve(context.Background(), christmas)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Verdict.Path != resolver.PathPublicHoliday {
		t.Fatalf("path: %s", res.Verdict.Path)
	}
	if res.Verdict.Message != "Closed - Christmas Day" || res.Verdict.HolidayName != "Christmas Day" {
		t.Fatalf("verdict: %+v", res.Verdict)
	}
	if res.Verdict.HolidayDay != "Friday" || res.Verdict.Location != "QLD" {
		t.Fatalf("holiday metadata: %+v", res.Verdict)
	}
	if len(business.calls) != 0 {
		t.Fatalf("business evaluator must not be called, got %d calls", len(business.calls))
	}
	if store.Records()[0].RuleOutputMessage != "Closed - Christmas Day" {
		t.Fatalf("audit message: %+v", store.Records()[0])
	}
}

func TestSplitRuleInputRoundTrips(t *testing.T) {
	holiday := &spyEvaluator{}
	business := &spyEvaluator{outcome: rules.Outcome{Message: "Open"}}
	store := audit.NewMemoryStore()
	r := resolver.NewSplit(holiday, business, store)

	if _, err := r.Resolve(context.Background(), tuesdayMorning); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got := store.Records()[0].RuleInputJSON
	want := `{"holiday":{"date":"2026-01-27"},"business_hours":{"day_of_week":2,"minutes":540}}`
	if got != want {
		t.Fatalf("payload:\n got %s\nwant %s", got, want)
	}
	var parsed struct {
		Holiday struct {
			Date string `json:"date"`
		} `json:"holiday"`
		BusinessHours struct {
			DayOfWeek int `json:"day_of_week"`
			Minutes   int `json:"minutes"`
		} `json:"business_hours"`
	}
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if parsed.Holiday.Date != "2026-01-27" || parsed.BusinessHours.DayOfWeek != 2 || parsed.BusinessHours.Minutes != 540 {
		t.Fatalf("round-trip mismatch: %+v", parsed)
	}
}

func TestSplitNoResult(t *testing.T) {
	store := audit.NewMemoryStore()
	r := resolver.NewSplit(&spyEvaluator{}, &spyEvaluator{}, store)

	res, err := r.Resolve(context.Background(), tuesdayMorning)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Verdict.NoResult() || res.Verdict.Path != resolver.PathBusinessHours {
		t.Fatalf("verdict: %+v", res.Verdict)
	}
	// the audit row is still written, with an empty message
	recs := store.Records()
	if len(recs) != 1 || recs[0].RuleOutputMessage != "" {
		t.Fatalf("audit rows: %+v", recs)
	}
}

func TestSplitEvaluatorFailureDegradesToEmpty(t *testing.T) {
	holiday := &spyEvaluator{err: &rules.EvalError{Ruleset: "public-holidays", Err: errors.New("engine fault")}}
	business := &spyEvaluator{outcome: rules.Outcome{Message: "Open"}}
	store := audit.NewMemoryStore()
	r := resolver.NewSplit(holiday, business, store)

	res, err := r.Resolve(context.Background(), tuesdayMorning)
	if err != nil {
		t.Fatalf("evaluator failure must not fail the resolution: %v", err)
	}
	if res.Verdict.Path != resolver.PathBusinessHours || res.Verdict.Message != "Open" {
		t.Fatalf("verdict: %+v", res.Verdict)
	}

	// both failing leaves a no-result verdict, still no error
	r = resolver.NewSplit(
		&spyEvaluator{err: errors.New("down")},
		&spyEvaluator{err: errors.New("down")},
		store,
	)
	res, err = r.Resolve(context.Background(), tuesdayMorning)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Verdict.NoResult() {
		t.Fatalf("verdict: %+v", res.Verdict)
	}
}

func TestSplitPersistenceFailureIsFatal(t *testing.T) {
	store := audit.NewMemoryStore()
	store.Err = errors.New("disk full")
	r := resolver.NewSplit(&spyEvaluator{}, &spyEvaluator{outcome: rules.Outcome{Message: "Open"}}, store)

	_, err := r.Resolve(context.Background(), tuesdayMorning)
	if !errors.Is(err, store.Err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestCombinedHolidayPath(t *testing.T) {
	eval := &spyEvaluator{outcome: rules.Outcome{
		Message:     "Closed - Christmas Day",
		IsHoliday:   true,
		HolidayName: "Christmas Day",
		HolidayDay:  "Friday",
		Location:    "QLD",
	}}
	store := audit.NewMemoryStore()
	r := resolver.NewCombined(eval, store)

	res, err := r.Resolve(context.Background(), christmas)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Verdict.Path != resolver.PathPublicHoliday || res.Verdict.HolidayName != "Christmas Day" {
		t.Fatalf("verdict: %+v", res.Verdict)
	}
	if len(eval.calls) != 1 {
		t.Fatalf("evaluator called %d times", len(eval.calls))
	}
	want := map[string]any{"date": "2026-12-25", "day_of_week": 5, "minutes": 600}
	if !reflect.DeepEqual(eval.calls[0], want) {
		t.Fatalf("facts: %v", eval.calls[0])
	}
	if store.Records()[0].RuleInputJSON != `{"date":"2026-12-25","day_of_week":5,"minutes":600}` {
		t.Fatalf("payload: %s", store.Records()[0].RuleInputJSON)
	}
}

func TestCombinedBusinessPath(t *testing.T) {
	eval := &spyEvaluator{outcome: rules.Outcome{Message: "Open", IsHoliday: false}}
	store := audit.NewMemoryStore()
	r := resolver.NewCombined(eval, store)

	res, err := r.Resolve(context.Background(), tuesdayMorning)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Verdict.Path != resolver.PathBusinessHours || res.Verdict.Message != "Open" {
		t.Fatalf("verdict: %+v", res.Verdict)
	}
	if res.Verdict.HolidayName != "" {
		t.Fatalf("holiday fields must stay empty on the business path: %+v", res.Verdict)
	}
}

// Both strategies write the same audit schema for the same instant.
func TestAuditSchemaIsStrategyAgnostic(t *testing.T) {
	splitStore := audit.NewMemoryStore()
	split := resolver.NewSplit(&spyEvaluator{}, &spyEvaluator{outcome: rules.Outcome{Message: "Open"}}, splitStore)
	if _, err := split.Resolve(context.Background(), tuesdayMorning); err != nil {
		t.Fatalf("split resolve: %v", err)
	}

	combinedStore := audit.NewMemoryStore()
	combined := resolver.NewCombined(&spyEvaluator{outcome: rules.Outcome{Message: "Open"}}, combinedStore)
	if _, err := combined.Resolve(context.Background(), tuesdayMorning); err != nil {
		t.Fatalf("combined resolve: %v", err)
	}

	a, b := splitStore.Records()[0], combinedStore.Records()[0]
	b.RuleInputJSON = a.RuleInputJSON // payload shape differs by design
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("records diverge:\n %+v\n %+v", a, b)
	}
}
