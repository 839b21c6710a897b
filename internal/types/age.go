package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical birth-date layout (DD/MM/YYYY).
const DateLayout = "02/01/2006"

// ErrInvalidDate is returned when a birth date cannot be parsed into a
// real calendar date.
var ErrInvalidDate = errors.New("invalid date")

// ParseBirthDate accepts DD/MM/YYYY (one- or two-digit day and month) or
// ISO YYYY-MM-DD and returns the date at midnight UTC.
//
// Dates that do not exist on the calendar (31/02/2001) are rejected
// rather than rolled over into the next month.
func ParseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	switch {
	case strings.Contains(s, "-"):
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return t, nil

	case strings.Contains(s, "/"):
		parts := strings.Split(s, "/")
		if len(parts) != 3 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		var nums [3]int
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n <= 0 {
				return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
			}
			nums[i] = n
		}
		day, month, year := nums[0], nums[1], nums[2]
		if year < 1000 || month > 12 {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day || int(t.Month()) != month {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatBirthDate renders t in the canonical DD/MM/YYYY layout.
func FormatBirthDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AgeAt returns the calendar-accurate age of someone born on birth, as of
// asOf: the year difference, minus one if the birthday has not yet come
// round in asOf's year.
func AgeAt(birth, asOf time.Time) int {
	age := asOf.Year() - birth.Year()
	if asOf.Month() < birth.Month() ||
		(asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		age--
	}
	return age
}

// ComputeAge parses birthDate and returns the age as of asOf.
//
//	ComputeAge("15/05/2003", 14 May 2024) == 20
//	ComputeAge("15/05/2003", 15 May 2024) == 21
func ComputeAge(birthDate string, asOf time.Time) (int, error) {
	birth, err := ParseBirthDate(birthDate)
	if err != nil {
		return 0, err
	}
	return AgeAt(birth, asOf), nil
}

// dateOnly truncates t to its calendar date in UTC so it compares
// cleanly with parsed birth dates.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
