// Package report persists accepted postings as CSV rows and plain text lines.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AppendCSV appends rows to path, writing header first when the file is new or empty.
func AppendCSV(path string, header []string, rows [][]string) error {
	if err := ensureParent(path); err != nil {
		return err
	}

	writeHeader := false
	st, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		writeHeader = true
	case err != nil:
		return fmt.Errorf("stat %s: %w", path, err)
	case st.Size() == 0:
		writeHeader = true
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader && len(header) > 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header %s: %w", path, err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows %s: %w", path, err)
	}
	return nil
}

// WriteLines replaces path with lines, one per line.
func WriteLines(path string, lines []string) error {
	return writeLines(path, lines, os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
}

// AppendLines appends lines to path.
func AppendLines(path string, lines []string) error {
	return writeLines(path, lines, os.O_CREATE|os.O_APPEND|os.O_WRONLY)
}

func writeLines(path string, lines []string, flag int) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
