// Package lookup reads the reference CSV tables shown alongside resolutions.
// Display data only: verdicts come from rule evaluation, never from these
// tables.
package lookup

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Table is a header row plus data rows.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Load reads a CSV table. A missing file yields an empty table, not an
// error.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("open lookup table: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse lookup table %s: %w", path, err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}
	return Table{Columns: records[0], Rows: records[1:]}, nil
}
