package memory

import (
	"context"
	"sort"
	"sync"

	"bilancio/internal/core"
	"bilancio/internal/sheets"
)

var _ sheets.SummaryWriter = (*Store)(nil)

// Store keeps exported summary rows in memory, keyed by period.
type Store struct {
	mu     sync.Mutex
	rows   map[string][]string
	writes int
}

func New() *Store {
	return &Store{rows: make(map[string][]string)}
}

func (s *Store) WriteSummary(_ context.Context, summary core.MonthlySummary) error {
	if err := summary.Period.Validate(); err != nil {
		return err
	}
	row := sheets.SummaryRow(summary)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[summary.Period.Key()] = row
	s.writes++
	return nil
}

// Row returns the exported row of a period.
func (s *Store) Row(p core.Period) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[p.Key()]
	if !ok {
		return nil, false
	}
	return append([]string(nil), row...), true
}

// Rows returns every exported row ordered by period.
func (s *Store) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.rows))
	for k := range s.rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, append([]string(nil), s.rows[k]...))
	}
	return out
}

// Writes counts every WriteSummary call, including overwrites.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
