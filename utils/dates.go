package utils

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Certificate validity units.
const (
	UnitDays   = "days"
	UnitMonths = "months"
	UnitYears  = "years"
)

func ValidUnit(unit string) bool {
	switch unit {
	case UnitDays, UnitMonths, UnitYears:
		return true
	}
	return false
}

// ExpiryDate adds period units to issued. A non-positive period means the
// certificate never expires and nil is returned.
func ExpiryDate(issued time.Time, period int, unit string) (*time.Time, error) {
	if period <= 0 {
		return nil, nil
	}
	var t time.Time
	switch unit {
	case UnitDays:
		t = issued.AddDate(0, 0, period)
	case UnitMonths:
		t = issued.AddDate(0, period, 0)
	case UnitYears:
		t = issued.AddDate(period, 0, 0)
	default:
		return nil, fmt.Errorf("unknown validity unit %q", unit)
	}
	return &t, nil
}

// StillValid reports whether today, compared by calendar day in loc, is on or
// before expired. A nil expiry is always valid.
func StillValid(expired *time.Time, today time.Time, loc *time.Location) bool {
	if expired == nil {
		return true
	}
	day := now.With(today.In(loc)).BeginningOfDay()
	last := now.With(expired.In(loc)).BeginningOfDay()
	return !day.After(last)
}

// DayRange returns the first and last instant of the day containing t.
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	n := now.With(t.In(loc))
	return n.BeginningOfDay(), n.EndOfDay()
}
