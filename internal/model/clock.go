package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of reservation dates.
const DateLayout = "2006-01-02"

// clockPattern matches 24-hour HH:MM or HH:MM:SS.
var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)(:([0-5]\d))?$`)

// ErrInvalidClock is returned when a time of day is not 24-hour HH:MM[:SS].
var ErrInvalidClock = errors.New("invalid time of day")

// Clock is a time of day stored as seconds since midnight.  It maps onto
// the SQL TIME columns of building and reservation.
type Clock int

// ParseClock parses "HH:MM" or "HH:MM:SS" in 24-hour notation.
func ParseClock(s string) (Clock, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	sec := 0
	if m[4] != "" {
		sec, _ = strconv.Atoi(m[4])
	}
	return Clock(h*3600 + mins*60 + sec), nil
}

// ValidClock reports whether s is a well-formed 24-hour time of day.
func ValidClock(s string) bool {
	return clockPattern.MatchString(strings.TrimSpace(s))
}

// String formats the clock as HH:MM:SS.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(c)/3600, (int(c)%3600)/60, int(c)%60)
}

// Short formats the clock as HH:MM for display.
func (c Clock) Short() string {
	return c.String()[:5]
}

// Value implements driver.Valuer so a Clock can be bound to TIME parameters.
func (c Clock) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan implements sql.Scanner.  MySQL returns TIME as bytes, pgx as a
// string that may carry fractional seconds.
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c = Clock(v.Hour()*3600 + v.Minute()*60 + v.Second())
		return nil
	case []byte:
		return c.scanText(string(v))
	case string:
		return c.scanText(v)
	case nil:
		*c = 0
		return nil
	}
	return fmt.Errorf("model: cannot scan %T into Clock", src)
}

func (c *Clock) scanText(s string) error {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Window is a half-open time interval [Start, End) within one day.
type Window struct {
	Start Clock
	End   Clock
}

// Valid reports whether the window has positive length.
func (w Window) Valid() bool { return w.End > w.Start }

// Overlaps reports whether two windows on the same date conflict.  Windows
// that only touch at a boundary are adjacent, not overlapping.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}
