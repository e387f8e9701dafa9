package stats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

var (
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidSelector = errors.New("invalid period selector")
)

// DateRange is an inclusive day range. Both ends are midnight UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days in the range, inclusive.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// ResolvedPeriod is the concrete window a period request maps to.
// MonthKeys is populated for yearly periods only: one first-of-month
// date per bucket, never reaching past today.
type ResolvedPeriod struct {
	Period    Period
	Range     DateRange
	MonthKeys []time.Time
}

// BucketKeys returns one key per bucket: days for weekly and monthly
// periods, month starts for yearly.
func (rp *ResolvedPeriod) BucketKeys() []time.Time {
	if rp.Period == PeriodYearly {
		return rp.MonthKeys
	}
	keys := make([]time.Time, 0, rp.Range.Days())
	for day := rp.Range.Start; !day.After(rp.Range.End); day = day.AddDate(0, 0, 1) {
		keys = append(keys, day)
	}
	return keys
}

// ResolvePeriod turns a period plus an optional selector into a concrete
// date range. The range never extends past today: an explicitly selected
// current week, month or year is cut off at today, and selectors lying
// entirely in the future are rejected.
func ResolvePeriod(period Period, selector string, today time.Time) (*ResolvedPeriod, error) {
	today = dayStart(today)

	switch period {
	case PeriodWeekly:
		return resolveWeekly(selector, today)
	case PeriodMonthly:
		return resolveMonthly(selector, today)
	case PeriodYearly:
		return resolveYearly(selector, today)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
}

func resolveWeekly(selector string, today time.Time) (*ResolvedPeriod, error) {
	var start time.Time
	if selector == "" {
		start = mondayOf(today)
	} else {
		year, week, err := parseISOWeekSelector(selector)
		if err != nil {
			return nil, err
		}
		start = isoWeekStart(year, week)
		// a year has 52 or 53 ISO weeks; round-trip to catch week 53
		// requests in a 52-week year
		if gotYear, gotWeek := start.ISOWeek(); gotYear != year || gotWeek != week {
			return nil, fmt.Errorf("%w: year %d has no week %d", ErrInvalidSelector, year, week)
		}
	}

	if start.After(today) {
		return nil, fmt.Errorf("%w: week starts in the future", ErrInvalidSelector)
	}

	end := start.AddDate(0, 0, 6)
	if end.After(today) {
		end = today
	}

	return &ResolvedPeriod{
		Period: PeriodWeekly,
		Range:  DateRange{Start: start, End: end},
	}, nil
}

func resolveMonthly(selector string, today time.Time) (*ResolvedPeriod, error) {
	var year, month int
	if selector == "" {
		year, month = today.Year(), int(today.Month())
	} else {
		parts := strings.SplitN(selector, "-", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: want YYYY-MM, got %q", ErrInvalidSelector, selector)
		}
		var err error
		if year, err = strconv.Atoi(parts[0]); err != nil {
			return nil, fmt.Errorf("%w: year %q", ErrInvalidSelector, parts[0])
		}
		if month, err = strconv.Atoi(parts[1]); err != nil {
			return nil, fmt.Errorf("%w: month %q", ErrInvalidSelector, parts[1])
		}
		if err := validateYear(year); err != nil {
			return nil, err
		}
		if month < 1 || month > 12 {
			return nil, fmt.Errorf("%w: month %d out of range", ErrInvalidSelector, month)
		}
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	if start.After(today) {
		return nil, fmt.Errorf("%w: month starts in the future", ErrInvalidSelector)
	}

	// last calendar day of the month, leap years included
	end := start.AddDate(0, 1, -1)
	if end.After(today) {
		end = today
	}

	return &ResolvedPeriod{
		Period: PeriodMonthly,
		Range:  DateRange{Start: start, End: end},
	}, nil
}

func resolveYearly(selector string, today time.Time) (*ResolvedPeriod, error) {
	year := today.Year()
	if selector != "" {
		parsed, err := strconv.Atoi(selector)
		if err != nil {
			return nil, fmt.Errorf("%w: year %q", ErrInvalidSelector, selector)
		}
		if err := validateYear(parsed); err != nil {
			return nil, err
		}
		year = parsed
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	if start.After(today) {
		return nil, fmt.Errorf("%w: year starts in the future", ErrInvalidSelector)
	}

	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if end.After(today) {
		end = today
	}

	var monthKeys []time.Time
	for month := time.January; month <= end.Month(); month++ {
		monthKeys = append(monthKeys, time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	}

	return &ResolvedPeriod{
		Period:    PeriodYearly,
		Range:     DateRange{Start: start, End: end},
		MonthKeys: monthKeys,
	}, nil
}

func parseISOWeekSelector(selector string) (year, week int, err error) {
	parts := strings.SplitN(selector, "-W", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: want YYYY-Www, got %q", ErrInvalidSelector, selector)
	}
	if year, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("%w: year %q", ErrInvalidSelector, parts[0])
	}
	if week, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: week %q", ErrInvalidSelector, parts[1])
	}
	if err := validateYear(year); err != nil {
		return 0, 0, err
	}
	if week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("%w: week %d out of range", ErrInvalidSelector, week)
	}
	return year, week, nil
}

// isoWeekStart returns the Monday of the given ISO week. Jan 4 always
// lies in week 1 of its ISO year, which anchors the arithmetic.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	_, jan4Week := jan4.ISOWeek()
	inWeek := jan4.AddDate(0, 0, (week-jan4Week)*7)
	return mondayOf(inWeek)
}

func mondayOf(day time.Time) time.Time {
	// time.Weekday counts from Sunday, ISO weeks start on Monday
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func validateYear(year int) error {
	if year < 1000 || year > 9999 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidSelector, year)
	}
	return nil
}
