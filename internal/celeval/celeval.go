// Package celeval adapts a CEL-guarded decision table to the rule evaluator
// port. Row guards are CEL expressions compiled once at load time; evaluation
// walks rows in order and the first guard that yields true selects the row's
// output mapping. CEL is consumed as an opaque expression engine.
package celeval

import (
	"context"
	"fmt"
	"os"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"

	"openhours/internal/rules"
)

// Table is the on-disk rule set format.
type Table struct {
	Name   string   `yaml:"name"`
	Inputs []string `yaml:"inputs"`
	Rows   []Row    `yaml:"rows"`
}

// Row pairs a CEL guard with the result mapping returned when it matches.
type Row struct {
	When   string         `yaml:"when"`
	Output map[string]any `yaml:"output"`
}

// Decision is a compiled rule set. Safe for concurrent use: programs and
// outputs are never mutated after Compile.
type Decision struct {
	name     string
	programs []cel.Program
	outputs  []map[string]any
}

// Load reads and compiles a rule set from a YAML file.
func Load(path string) (*Decision, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse rule set %s: %w", path, err)
	}
	return Compile(t)
}

// Compile builds CEL programs for every row guard.
func Compile(t Table) (*Decision, error) {
	if t.Name == "" {
		return nil, fmt.Errorf("rule set has no name")
	}
	opts := make([]cel.EnvOption, 0, len(t.Inputs))
	for _, in := range t.Inputs {
		opts = append(opts, cel.Variable(in, cel.DynType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	d := &Decision{
		name:     t.Name,
		programs: make([]cel.Program, 0, len(t.Rows)),
		outputs:  make([]map[string]any, 0, len(t.Rows)),
	}
	for i, row := range t.Rows {
		ast, issues := env.Compile(row.When)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule set %s row %d: compile %q: %w", t.Name, i, row.When, issues.Err())
		}
		prog, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule set %s row %d: program: %w", t.Name, i, err)
		}
		d.programs = append(d.programs, prog)
		d.outputs = append(d.outputs, row.Output)
	}
	return d, nil
}

// Name returns the rule set name.
func (d *Decision) Name() string { return d.name }

// Evaluate runs the fact mapping through the table. No matching row is a
// normal empty outcome; an engine fault is an EvalError.
func (d *Decision) Evaluate(_ context.Context, facts map[string]any) (rules.Outcome, error) {
	for i, prog := range d.programs {
		out, _, err := prog.Eval(facts)
		if err != nil {
			return rules.Outcome{}, &rules.EvalError{Ruleset: d.name, Err: err}
		}
		if matched, ok := out.Value().(bool); ok && matched {
			return rules.OutcomeFromMap(d.outputs[i]), nil
		}
	}
	return rules.Outcome{}, nil
}
