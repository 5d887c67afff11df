// Package dates parses and validates day/month/year form input for the
// browse and search date filters. Partial dates are allowed as long as a
// year is present; completion fills the missing parts (1 Jan for a range
// start, end of year or month for a range end).
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Side identifies which end of a date range a value belongs to.
type Side string

// Range sides.
const (
	From Side = "from"
	To   Side = "to"
)

// MinYear is the earliest year accepted by the validator.
const MinYear = 1900

// DisplayFormat is the format dates are rendered in for users.
const DisplayFormat = "02/01/2006"

// Validation is the outcome of validating one side of a date range.
// Parsed components are returned even when Errors is non-empty so the
// form can be redisplayed with the user's input.
type Validation struct {
	Day   int
	Month int
	Year  int
	// Errors holds user-facing messages for this side.
	Errors []string
	// ErrorField is the component suffix the first error applies to:
	// "day", "month", "year", or "" for the date as a whole.
	ErrorField string
}

// OK reports whether the side validated cleanly.
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v *Validation) fail(msg, field string) {
	v.Errors = append(v.Errors, msg)
	if v.ErrorField == "" && field != "" {
		v.ErrorField = field
	}
}

// Validate checks a day/month/year triple of raw form values. label is
// the user-facing name of the field ("Date from", "Date to"). When
// checkFuture is set, fully specified dates after today are rejected.
//
// Empty strings mean "not provided". A missing day, or a missing
// day+month pair, is acceptable and left for Complete to infer; a year
// is always required once any other component is present.
func Validate(day, month, year, label string, checkFuture bool) Validation {
	day = strings.TrimSpace(day)
	month = strings.TrimSpace(month)
	year = strings.TrimSpace(year)

	var v Validation

	if year == "" {
		if day != "" || month != "" {
			v.Day, _ = strconv.Atoi(day)
			v.Month, _ = strconv.Atoi(month)
			v.fail(label+" must include a year", "year")
		}
		return v
	}

	y, err := strconv.Atoi(year)
	if err != nil {
		v.Day, _ = strconv.Atoi(day)
		v.Month, _ = strconv.Atoi(month)
		v.fail(label+" must include a year", "year")
		return v
	}
	v.Year = y
	if y < MinYear {
		v.Day, _ = strconv.Atoi(day)
		v.Month, _ = strconv.Atoi(month)
		v.fail(label+" must be a real date", "year")
		return v
	}

	if month == "" {
		if day != "" {
			v.Day, _ = strconv.Atoi(day)
			v.fail(label+" must include a valid month", "month")
		}
		return v
	}

	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		v.Day, _ = strconv.Atoi(day)
		v.fail(label+" must be a real date", "month")
		return v
	}
	v.Month = m

	if day == "" {
		return v
	}

	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > DaysInMonth(m, y) {
		v.Day, _ = strconv.Atoi(day)
		v.fail(label+" must be a real date", "day")
		return v
	}
	v.Day = d

	if checkFuture && afterToday(d, m, y) {
		v.fail(label+" must be in the past", "")
	}
	return v
}

// RangeParams holds the raw from/to form values for a date range.
type RangeParams struct {
	FromDay, FromMonth, FromYear string
	ToDay, ToMonth, ToYear       string
}

// RangeResult is the outcome of validating both sides of a date range.
type RangeResult struct {
	From Validation
	To   Validation
	// Errors is keyed by side name ("date_from", "date_to") for form
	// redisplay.
	Errors map[string][]string
	// Fields lists the failing form fields, e.g. "date_from_year".
	Fields []string
}

// OK reports whether both sides validated cleanly.
func (r RangeResult) OK() bool {
	return len(r.Errors["date_from"]) == 0 && len(r.Errors["date_to"]) == 0
}

// Range-side identifiers used as error keys.
const (
	FieldDateFrom = "date_from"
	FieldDateTo   = "date_to"
)

// ValidateRange validates both sides of a date range independently, then
// checks ordering: the completed "from" date must not be after the
// completed "to" date. The ordering check only runs when neither side
// has errors and both carry a year. An ordering violation is reported
// against date_from, citing the formatted "to" date.
func ValidateRange(p RangeParams, checkFuture bool) RangeResult {
	res := RangeResult{
		From:   Validate(p.FromDay, p.FromMonth, p.FromYear, "Date from", checkFuture),
		To:     Validate(p.ToDay, p.ToMonth, p.ToYear, "Date to", checkFuture),
		Errors: map[string][]string{},
	}

	res.Errors[FieldDateFrom] = res.From.Errors
	res.Errors[FieldDateTo] = res.To.Errors
	res.Fields = append(res.Fields, errorFields(FieldDateFrom, res.From)...)
	res.Fields = append(res.Fields, errorFields(FieldDateTo, res.To)...)

	if !res.From.OK() || !res.To.OK() {
		return res
	}
	if res.From.Year == 0 || res.To.Year == 0 {
		return res
	}

	fd, fm, fy := Complete(res.From.Day, res.From.Month, res.From.Year, From, checkFuture)
	td, tm, ty := Complete(res.To.Day, res.To.Month, res.To.Year, To, checkFuture)

	from := time.Date(fy, time.Month(fm), fd, 0, 0, 0, 0, time.UTC)
	to := time.Date(ty, time.Month(tm), td, 0, 0, 0, 0, time.UTC)
	if from.After(to) {
		msg := fmt.Sprintf("Date from must be the same as or before %s", to.Format(DisplayFormat))
		res.From.fail(msg, "")
		res.Errors[FieldDateFrom] = res.From.Errors
		res.Fields = append(res.Fields, FieldDateFrom)
	}
	return res
}

func errorFields(side string, v Validation) []string {
	if v.OK() {
		return nil
	}
	if v.ErrorField == "" {
		return []string{side}
	}
	return []string{side + "_" + v.ErrorField}
}

// Complete fills missing day/month components once a year is known.
// The range start resolves to the earliest matching date (1 Jan, or the
// 1st of a given month); the range end resolves to the latest (31 Dec,
// or the last day of a given month). If the inferred date would land in
// the future and checkFuture is set, it is clamped to today.
func Complete(day, month, year int, side Side, checkFuture bool) (int, int, int) {
	if year == 0 {
		return day, month, year
	}

	d, m := day, month
	if m == 0 {
		if side == To {
			m = 12
		} else {
			m = 1
		}
	}
	if d == 0 {
		if side == To {
			d = DaysInMonth(m, year)
		} else {
			d = 1
		}
	}

	if checkFuture && afterToday(d, m, year) {
		now := time.Now()
		return now.Day(), int(now.Month()), now.Year()
	}
	return d, m, year
}

// DaysInMonth returns the number of days in the given month, accounting
// for leap years.
func DaysInMonth(month, year int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// IsLeapYear reports whether the year has a 29th of February.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func afterToday(day, month, year int) bool {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return date.After(today)
}
