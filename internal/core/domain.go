package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Daily   RecurringInterval = "DAILY"
	Weekly  RecurringInterval = "WEEKLY"
	Monthly RecurringInterval = "MONTHLY"
	Yearly  RecurringInterval = "YEARLY"
)

type (
	RecurringInterval string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is the client-side copy of a backend-owned record.
	// List views hold it read-through only; every mutation goes back to
	// the backend and is followed by a full re-fetch.
	Transaction struct {
		ID          int64
		Description string
		Amount      Money
		Date        Date
		Category    string
		IsRecurring bool
		Interval    RecurringInterval
		StartDate   Date
		EndDate     Date // zero when the recurrence is ongoing
	}

	Budget struct {
		ID          int64
		Category    string
		LimitAmount Money
	}

	// User is the payload of the current-user probe.
	User struct {
		ID       int64
		Username string
		Email    string
	}
)

// Categories is the fixed set offered by the transaction and budget forms.
var Categories = []string{"Food", "Rent", "Shopping", "Entertainment", "Savings"}

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidInterval  = errors.New("invalid recurring interval")
	ErrMissingStartDate = errors.New("missing start date")
)

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

func (ri RecurringInterval) Valid() bool {
	switch ri {
	case Daily, Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the backend wire format (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Wire renders the date in the backend wire format.
func (d Date) Wire() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 255 {
		return errors.New("description too long (max 255 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.IsRecurring {
		if !t.Interval.Valid() {
			return ErrInvalidInterval
		}
		if t.StartDate.IsZero() {
			return ErrMissingStartDate
		}
		if !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate.Time) {
			return errors.New("end date must not precede start date")
		}
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if err := b.LimitAmount.Validate(); err != nil {
		return err
	}
	return nil
}
