package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestPeriodValidate(t *testing.T) {
	cases := []struct {
		p   Period
		err error
	}{
		{NewPeriod(2025, 1), nil},
		{NewPeriod(2000, 12), nil},
		{NewPeriod(2100, 6), nil},
		{NewPeriod(1999, 6), ErrInvalidYear},
		{NewPeriod(2101, 6), ErrInvalidYear},
		{NewPeriod(2025, 0), ErrInvalidMonth},
		{NewPeriod(2025, 13), ErrInvalidMonth},
	}
	for i, tc := range cases {
		err := tc.p.Validate()
		if !errors.Is(err, tc.err) {
			t.Fatalf("case %d (%s): expected %v, got %v", i, tc.p, tc.err, err)
		}
		if err != nil && !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected validation kind, got %v", i, err)
		}
	}
}

func TestPeriodBounds(t *testing.T) {
	p := NewPeriod(2025, 12)
	if got := p.Start().String(); got != "2025-12-01" {
		t.Fatalf("start = %s", got)
	}
	if got := p.End().String(); got != "2026-01-01" {
		t.Fatalf("end = %s", got)
	}
	if !p.Contains(NewDate(2025, 12, 31)) {
		t.Fatalf("expected 2025-12-31 inside %s", p)
	}
	if p.Contains(NewDate(2026, 1, 1)) {
		t.Fatalf("end bound must be exclusive")
	}
	if p.Contains(NewDate(2025, 11, 30)) {
		t.Fatalf("previous month must be excluded")
	}
	if p.Key() != "2025-12" {
		t.Fatalf("key = %s", p.Key())
	}
}

func TestDateFromParts(t *testing.T) {
	cases := []struct {
		y, m, d int
		ok      bool
	}{
		{2025, 6, 10, true},
		{2024, 2, 29, true},
		{2025, 2, 29, false},
		{2025, 4, 31, false},
		{2025, 6, 0, false},
		{2025, 13, 1, false},
		{1990, 1, 1, false},
	}
	for _, tc := range cases {
		d, err := DateFromParts(tc.y, tc.m, tc.d)
		if tc.ok {
			if err != nil {
				t.Fatalf("%d-%d-%d expected ok, got %v", tc.y, tc.m, tc.d, err)
			}
			if d.Year() != tc.y || d.Month() != tc.m || d.Day() != tc.d {
				t.Fatalf("unexpected date %s", d)
			}
		} else if err == nil {
			t.Fatalf("%d-%d-%d expected error", tc.y, tc.m, tc.d)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2025, 6, 10))
	if err != nil || string(b) != `"2025-06-10"` {
		t.Fatalf("marshal = %s (err=%v)", b, err)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2025-06-10"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !d.Equal(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", d)
	}
	if err := json.Unmarshal([]byte(`"10/06/2025"`), &d); err == nil {
		t.Fatalf("expected error for bad layout")
	}
}

func TestNormalizeCategoryName(t *testing.T) {
	if got, err := NormalizeCategoryName("  Market "); err != nil || got != "Market" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if _, err := NormalizeCategoryName("   "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := NormalizeCategoryName(strings.Repeat("a", 61)); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	if _, err := NormalizeCategoryName(strings.Repeat("è", 60)); err != nil {
		t.Fatalf("60 multi-byte characters should be accepted, got %v", err)
	}
}

func TestNormalizeDescriptions(t *testing.T) {
	if got, err := NormalizeOptionalDescription(strPtr("   ")); err != nil || got != nil {
		t.Fatalf("blank description should become nil, got %v err=%v", got, err)
	}
	if got, err := NormalizeOptionalDescription(strPtr(" rent ")); err != nil || *got != "rent" {
		t.Fatalf("got %v err=%v", got, err)
	}
	if _, err := NormalizeOptionalDescription(strPtr(strings.Repeat("x", 201))); !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("expected ErrDescriptionTooLong, got %v", err)
	}
	if _, err := NormalizeRequiredDescription(" "); !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
	if got, err := NormalizeRequiredDescription(" bonus "); err != nil || got != "bonus" {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:       Expense,
		Amount:     Cents(100),
		Date:       NewDate(2025, 1, 1),
		CategoryID: strPtr("cat"),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	income := Transaction{Type: Income, Amount: Cents(100), Date: NewDate(2025, 1, 1)}
	if err := income.Validate(); err != nil {
		t.Fatalf("income without category should be ok, got %v", err)
	}

	bads := []struct {
		tx  Transaction
		err error
	}{
		{Transaction{Type: 3, Amount: Cents(1), Date: NewDate(2025, 1, 1)}, ErrInvalidType},
		{Transaction{Type: Expense, Amount: Cents(1), Date: NewDate(2025, 1, 1)}, ErrCategoryRequired},
		{Transaction{Type: Income, Amount: Cents(0), Date: NewDate(2025, 1, 1)}, ErrInvalidAmount},
		{Transaction{Type: Income, Amount: Cents(1), Date: NewDate(1999, 1, 1)}, ErrInvalidYear},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("case %d expected %v, got %v", i, tc.err, err)
		}
	}
}

func TestEntryType(t *testing.T) {
	if !Income.Valid() || !Expense.Valid() || EntryType(0).Valid() {
		t.Fatalf("unexpected validity")
	}
	if Expense.String() != "expense" || Income.String() != "income" {
		t.Fatalf("unexpected names")
	}
}
