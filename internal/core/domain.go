package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  EntryType = 1
	Expense EntryType = 2
)

const (
	MinYear = 2000
	MaxYear = 2100

	MaxCategoryName = 60
	MaxDescription  = 200

	dateLayout = "2006-01-02"
)

type (
	// EntryType is shared by categories and transactions. Wire value is the integer.
	EntryType int

	// Period identifies a calendar month.
	Period struct {
		Year  int
		Month int // 1-12
	}

	Date struct {
		time.Time
	}

	Category struct {
		ID   string
		Name string
		Type EntryType
	}

	Transaction struct {
		ID          string
		Type        EntryType
		Amount      Money
		Date        Date
		CategoryID  *string
		Description *string
	}

	// TransactionView is a transaction enriched with its category name.
	TransactionView struct {
		Transaction
		CategoryName *string
	}

	MonthlyIncome struct {
		Period Period
		Amount Money
	}

	Budget struct {
		ID         string
		Period     Period
		CategoryID string
		Amount     Money
	}

	// BudgetLine is a budget row joined with the category name.
	BudgetLine struct {
		CategoryID   string
		CategoryName string
		Amount       Money
	}

	MonthlyGoal struct {
		ID     string
		Period Period
		Target Money
	}

	MonthlyGoalSaving struct {
		ID          string
		GoalID      string
		Amount      Money
		Description string
		CreatedAt   time.Time
	}
)

func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

func (t EntryType) String() string {
	switch t {
	case Income:
		return "income"
	case Expense:
		return "expense"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// NewPeriod builds a Period without validating it.
func NewPeriod(year, month int) Period {
	return Period{Year: year, Month: month}
}

func (p Period) Validate() error {
	if p.Year < MinYear || p.Year > MaxYear {
		return ErrInvalidYear
	}
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Start returns the first day of the month.
func (p Period) Start() Date {
	return NewDate(p.Year, p.Month, 1)
}

// End returns the first day of the following month (exclusive bound).
func (p Period) End() Date {
	return Date{Time: p.Start().AddDate(0, 1, 0)}
}

func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start().Time) && d.Before(p.End().Time)
}

// Key is the canonical "YYYY-MM" representation, also used as cache key.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) String() string {
	return p.Key()
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateFromParts validates year, month and day and builds a Date.
// Days that would overflow into the next month (e.g. 31 April) are rejected.
func DateFromParts(year, month, day int) (Date, error) {
	if err := NewPeriod(year, month).Validate(); err != nil {
		return Date{}, err
	}
	d := NewDate(year, month, day)
	if day < 1 || d.Day() != day || d.Month() != month {
		return Date{}, ErrInvalidDay
	}
	return d, nil
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, Validationf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return Validationf("date cannot be zero")
	}
	return d.Period().Validate()
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Period() Period {
	return Period{Year: d.Year(), Month: d.Month()}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return Validationf("invalid date: expected a YYYY-MM-DD string")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NormalizeCategoryName trims the name and checks its length.
func NormalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxCategoryName {
		return "", ErrNameTooLong
	}
	return name, nil
}

// NormalizeOptionalDescription trims the description; blank becomes nil.
func NormalizeOptionalDescription(desc *string) (*string, error) {
	if desc == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > MaxDescription {
		return nil, ErrDescriptionTooLong
	}
	return &trimmed, nil
}

// NormalizeRequiredDescription trims the description and requires 1-200 characters.
func NormalizeRequiredDescription(desc string) (string, error) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return "", ErrEmptyDescription
	}
	if utf8.RuneCountInString(desc) > MaxDescription {
		return "", ErrDescriptionTooLong
	}
	return desc, nil
}

func (c Category) Validate() error {
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	_, err := NormalizeCategoryName(c.Name)
	return err
}

// Validate checks the transaction fields. Category existence is checked by the caller.
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Type == Expense && (t.CategoryID == nil || strings.TrimSpace(*t.CategoryID) == "") {
		return ErrCategoryRequired
	}
	if t.Description != nil && utf8.RuneCountInString(*t.Description) > MaxDescription {
		return ErrDescriptionTooLong
	}
	return nil
}

func (i MonthlyIncome) Validate() error {
	if err := i.Period.Validate(); err != nil {
		return err
	}
	return i.Amount.ValidateNonNegative()
}

func (b Budget) Validate() error {
	if err := b.Period.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(b.CategoryID) == "" {
		return Validationf("categoryId is required")
	}
	return b.Amount.ValidateNonNegative()
}

func (g MonthlyGoal) Validate() error {
	if err := g.Period.Validate(); err != nil {
		return err
	}
	return g.Target.ValidateNonNegative()
}

func (s MonthlyGoalSaving) Validate() error {
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	_, err := NormalizeRequiredDescription(s.Description)
	return err
}
