package celeval_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"openhours/internal/celeval"
	"openhours/internal/rules"
)

func compile(t *testing.T, tbl celeval.Table) *celeval.Decision {
	t.Helper()
	d, err := celeval.Compile(tbl)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return d
}

func TestFirstMatchingRowWins(t *testing.T) {
	d := compile(t, celeval.Table{
		Name:   "hours",
		Inputs: []string{"day_of_week", "minutes"},
		Rows: []celeval.Row{
			{When: `day_of_week <= 5 && minutes >= 540 && minutes < 1020`, Output: map[string]any{"message": "Open"}},
			{When: `true`, Output: map[string]any{"message": "Closed"}},
		},
	})
	out, err := d.Evaluate(context.Background(), map[string]any{"day_of_week": 2, "minutes": 540})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out.Message != "Open" {
		t.Fatalf("message: %q", out.Message)
	}
	out, err = d.Evaluate(context.Background(), map[string]any{"day_of_week": 7, "minutes": 540})
	if err != nil || out.Message != "Closed" {
		t.Fatalf("fallthrough row: %q %v", out.Message, err)
	}
}

func TestNoMatchIsEmptyOutcomeNotError(t *testing.T) {
	d := compile(t, celeval.Table{
		Name:   "holidays",
		Inputs: []string{"date"},
		Rows: []celeval.Row{
			{When: `date == "2026-12-25"`, Output: map[string]any{"message": "Closed - Christmas Day"}},
		},
	})
	out, err := d.Evaluate(context.Background(), map[string]any{"date": "2026-01-27"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !out.Empty() {
		t.Fatalf("expected empty outcome, got %+v", out)
	}
}

func TestEvaluationFaultIsEvalError(t *testing.T) {
	d := compile(t, celeval.Table{
		Name:   "holidays",
		Inputs: []string{"date"},
		Rows: []celeval.Row{
			{When: `date == "2026-12-25"`, Output: map[string]any{"message": "x"}},
		},
	})
	// missing declared variable makes the program fail at eval time
	_, err := d.Evaluate(context.Background(), map[string]any{})
	var evalErr *rules.EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvalError, got %v", err)
	}
	if evalErr.Ruleset != "holidays" {
		t.Fatalf("ruleset: %s", evalErr.Ruleset)
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := celeval.Compile(celeval.Table{Inputs: []string{"date"}}); err == nil {
		t.Fatalf("expected error for unnamed table")
	}
	_, err := celeval.Compile(celeval.Table{
		Name:   "bad",
		Inputs: []string{"date"},
		Rows:   []celeval.Row{{When: `date ==`, Output: map[string]any{}}},
	})
	if err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hours.yml")
	src := `name: hours
inputs: [day_of_week, minutes]
rows:
  - when: 'day_of_week <= 5'
    output:
      message: "Open"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write rule set: %v", err)
	}
	d, err := celeval.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Name() != "hours" {
		t.Fatalf("name: %s", d.Name())
	}
	out, err := d.Evaluate(context.Background(), map[string]any{"day_of_week": 1, "minutes": 0})
	if err != nil || out.Message != "Open" {
		t.Fatalf("evaluate loaded set: %q %v", out.Message, err)
	}

	if _, err := celeval.Load(filepath.Join(dir, "missing.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
