// Package ledger is the cross-run dedup memory: a CSV of every accepted posting.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gofrs/flock"

	"leadhunt-engine/internal/domain"
	"leadhunt-engine/internal/report"
)

// ErrLocked means another process holds the ledger.
var ErrLocked = errors.New("ledger is locked by another run")

// idColumns are accepted id headers, newest first.
var idColumns = []string{"listing_id", "job_id"}

// Ledger is append-only. Rows are never rewritten or removed.
type Ledger struct {
	path string
	lock *flock.Flock
	seen mapset.Set[string]
}

// Open takes the exclusive lock and loads every listing id already recorded.
// A missing file is an empty ledger; it is created on the first Record.
func Open(path string) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("ledger path is empty")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	lk := flock.New(path + ".lock")
	ok, err := lk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}

	l := &Ledger{path: path, lock: lk, seen: mapset.NewThreadUnsafeSet[string]()}
	if err := l.load(); err != nil {
		_ = lk.Unlock()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) load() error {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read ledger header: %w", err)
	}

	col := -1
	for _, name := range idColumns {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				col = i
				break
			}
		}
		if col >= 0 {
			break
		}
	}
	if col < 0 {
		return fmt.Errorf("ledger %s has no listing_id column", l.path)
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read ledger: %w", err)
		}
		if col < len(row) {
			if id := strings.TrimSpace(row[col]); id != "" {
				l.seen.Add(id)
			}
		}
	}
	return nil
}

func (l *Ledger) Path() string { return l.path }

func (l *Ledger) Seen(id string) bool {
	return l.seen.Contains(strings.TrimSpace(id))
}

func (l *Ledger) Len() int { return l.seen.Cardinality() }

// Record appends rec immediately so a crash mid-run keeps what was accepted so far.
func (l *Ledger) Record(rec domain.PostingRecord) error {
	id := strings.TrimSpace(rec.ListingID)
	if id == "" {
		return errors.New("record has empty listing id")
	}
	if err := report.AppendCSV(l.path, report.LedgerHeader, [][]string{report.LedgerRow(rec)}); err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	l.seen.Add(id)
	return nil
}

// Close releases the lock. The ledger must not be used afterwards.
func (l *Ledger) Close() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
