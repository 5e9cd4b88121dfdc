package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CSVStore appends records to a CSV file, writing the header exactly once
// when the file is first created. Each append is a single write so a failed
// call never leaves a partial row behind.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore returns a store writing to path. The file and its parent
// directory are created lazily on first append.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the log file path.
func (s *CSVStore) Path() string { return s.path }

// Append adds one record at the end of the log.
func (s *CSVStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create audit log directory: %w", err)
		}
	}

	fresh := false
	if info, err := os.Stat(s.path); os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		fresh = true
	} else if err != nil {
		return fmt.Errorf("stat audit log: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if fresh {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("encode audit header: %w", err)
		}
	}
	if err := w.Write(rec.row()); err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}
