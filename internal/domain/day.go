package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar date placed at local midnight. The zero Day stands for a
// missing or unparseable date.
type Day struct {
	t time.Time
}

// NewDay returns the given calendar date at local midnight.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// DayOf returns the calendar date of t as written in t's own location.
func DayOf(t time.Time) Day {
	if t.IsZero() {
		return Day{}
	}
	y, m, d := t.Date()
	return NewDay(y, m, d)
}

// ParseDay accepts "2006-01-02" and RFC 3339 timestamps. For timestamps only
// the date part as written is kept.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Day{}, errors.New("empty date")
	}
	if t, err := time.Parse(dayLayout, s); err == nil {
		return DayOf(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DayOf(t), nil
}

// IsZero reports whether the date is missing.
func (d Day) IsZero() bool { return d.t.IsZero() }

// Time returns local midnight of the date.
func (d Day) Time() time.Time { return d.t }

// Before reports whether d is earlier than o.
func (d Day) Before(o Day) bool { return d.t.Before(o.t) }

// After reports whether d is later than o.
func (d Day) After(o Day) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same date.
func (d Day) Equal(o Day) bool { return d.t.Equal(o.t) }

// Format formats local midnight of the date with a time layout; the zero Day
// formats as "".
func (d Day) Format(layout string) string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(layout)
}

func (d Day) String() string { return d.Format(dayLayout) }

// MarshalJSON encodes the date as "2006-01-02", or null when missing.
func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON never fails: anything that is not a parseable date string
// leaves the zero Day, so one bad record cannot fail a whole fetch.
func (d *Day) UnmarshalJSON(b []byte) error {
	*d = Day{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	if parsed, err := ParseDay(s); err == nil {
		*d = parsed
	}
	return nil
}

// Value implements driver.Valuer so a Day can be bound to a DATE column.
func (d Day) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Day) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Day{}
	case time.Time:
		*d = DayOf(v)
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("scan day: unsupported type %T", src)
	}
	return nil
}

func (d *Day) scanString(s string) error {
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
