package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time with minute precision
type TimeOfDay struct {
	Hour   int
	Minute int
}

// DefaultReminderTime is assigned to new user stats
var DefaultReminderTime = TimeOfDay{Hour: 9, Minute: 0}

// ParseTimeOfDay parses "HH:MM" in 24-hour form; the hour may omit its leading zero
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: time must look like HH:MM", ErrValidation)
	}
	h, err := clockField(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: invalid hour %q", ErrValidation, parts[0])
	}
	m, err := clockField(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: invalid minute %q", ErrValidation, parts[1])
	}
	if h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: hour %d out of range 0-23", ErrValidation, h)
	}
	if m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: minute %d out of range 0-59", ErrValidation, m)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// clockField parses one or two ASCII digits
func clockField(s string) (int, error) {
	if len(s) == 0 || len(s) > 2 {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// TimeOfDayOf returns the wall-clock minute of t in its own location
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// NullTimeOfDay is a nullable TimeOfDay stored as "HH:MM" text
type NullTimeOfDay struct {
	TimeOfDay TimeOfDay
	Valid     bool
}

// Scan implements sql.Scanner
func (n *NullTimeOfDay) Scan(value interface{}) error {
	if value == nil {
		n.TimeOfDay, n.Valid = TimeOfDay{}, false
		return nil
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("unsupported reminder time type %T", value)
	}
	t, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	n.TimeOfDay, n.Valid = t, true
	return nil
}

// Value implements driver.Valuer
func (n NullTimeOfDay) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.TimeOfDay.String(), nil
}
