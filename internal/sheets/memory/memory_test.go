package memory

import (
	"context"
	"testing"

	"bilancio/internal/core"
)

func TestStore_WriteSummaryOverwrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	june := core.NewPeriod(2025, 6)

	if err := s.WriteSummary(ctx, core.MonthlySummary{Period: june, Income: core.Cents(100)}); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	if err := s.WriteSummary(ctx, core.MonthlySummary{Period: june, Income: core.Cents(200)}); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}

	row, ok := s.Row(june)
	if !ok {
		t.Fatal("expected a row for 2025-06")
	}
	if row[1] != "2.00" {
		t.Errorf("income cell = %q, want 2.00", row[1])
	}
	if s.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", s.Writes())
	}
	if len(s.Rows()) != 1 {
		t.Errorf("Rows() has %d rows, want 1", len(s.Rows()))
	}
}

func TestStore_RowsOrderedByPeriod(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, p := range []core.Period{core.NewPeriod(2025, 3), core.NewPeriod(2024, 12), core.NewPeriod(2025, 1)} {
		if err := s.WriteSummary(ctx, core.MonthlySummary{Period: p}); err != nil {
			t.Fatalf("WriteSummary(%s): %v", p, err)
		}
	}

	rows := s.Rows()
	want := []string{"2024-12", "2025-01", "2025-03"}
	for i, w := range want {
		if rows[i][0] != w {
			t.Errorf("rows[%d][0] = %q, want %q", i, rows[i][0], w)
		}
	}
}

func TestStore_RejectsInvalidPeriod(t *testing.T) {
	s := New()
	if err := s.WriteSummary(context.Background(), core.MonthlySummary{Period: core.NewPeriod(2025, 13)}); err == nil {
		t.Fatal("expected an error for month 13")
	}
	if _, ok := s.Row(core.NewPeriod(2025, 13)); ok {
		t.Error("invalid period should not be stored")
	}
}
