package entities

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical text form of a Date
const DateLayout = "2006-01-02"

// dateLayouts are tried in order when parsing schedule dates
var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"01-02-06",
}

// Date is a calendar date without a time component. The zero Date means "missing".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate truncates t to its calendar date in t's own location
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a schedule date. Slash dates are month-first.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date format: %s", s)
}

// IsZero reports whether the date is missing
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d is strictly earlier than o
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DateLayout)
}

// MarshalText renders the date as YYYY-MM-DD, or empty when missing
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts any layout understood by ParseDate; empty text is a missing date
func (d *Date) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TaskRecord represents one scheduled maintenance task
type TaskRecord struct {
	TaskCode           TaskCode `json:"task_code"`
	TaskDescription    string   `json:"task_description"`
	PackageDescription string   `json:"package_description"`
	ScheduledDate      Date     `json:"scheduled_date"`
}

// NewTaskRecord creates a validated TaskRecord
func NewTaskRecord(taskCode TaskCode, taskDescription, packageDescription string, scheduled Date) (*TaskRecord, error) {
	if strings.TrimSpace(string(taskCode)) == "" {
		return nil, fmt.Errorf("task code cannot be empty")
	}

	return &TaskRecord{
		TaskCode:           taskCode,
		TaskDescription:    taskDescription,
		PackageDescription: packageDescription,
		ScheduledDate:      scheduled,
	}, nil
}

// ScheduledOn reports whether the task falls on date. Tasks with a missing date never match.
func (t TaskRecord) ScheduledOn(date Date) bool {
	if t.ScheduledDate.IsZero() || date.IsZero() {
		return false
	}
	return t.ScheduledDate == date
}
