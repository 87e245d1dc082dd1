package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar date without time of day. The zero value means unset.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD and full RFC 3339 timestamps (the date part is kept).
// An empty string yields the zero Date.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, nil
	}

	if t, err := time.Parse(DateLayout, raw); err == nil {
		return Date{Time: t}, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: expected YYYY-MM-DD", raw)
	}

	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Compare orders two dates; unset dates sort first.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// DatePtr returns nil for an unset date so optional fields serialize as null.
func DatePtr(d Date) *Date {
	if d.IsZero() {
		return nil
	}
	return &d
}
