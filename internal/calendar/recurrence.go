package calendar

import (
	"fmt"
	"time"

	"healthfirst/internal/domain"
)

// Expand lists the dates produced by pattern starting at start. The last date
// is the pattern's end date or start+horizon, whichever comes first.
func Expand(start time.Time, pattern domain.RecurringPattern, horizon time.Duration) ([]time.Time, error) {
	start = Civil(start)
	end := Civil(start.Add(horizon))
	if pattern.EndDate != "" {
		until, err := ParseDate(pattern.EndDate)
		if err != nil {
			return nil, err
		}
		if until.Before(start) {
			return nil, fmt.Errorf("%w: end date %s is before %s", domain.ErrInvalidPattern, pattern.EndDate, FormatDate(start))
		}
		if until.Before(end) {
			end = until
		}
	}

	interval := pattern.Interval
	if interval < 1 {
		interval = 1
	}

	switch pattern.Frequency {
	case domain.RecurrenceDaily:
		return expandDaily(start, end, interval), nil
	case domain.RecurrenceWeekly:
		days, err := weekdaySet(start, pattern.DaysOfWeek)
		if err != nil {
			return nil, err
		}
		return expandWeekly(start, end, interval, days), nil
	case domain.RecurrenceMonthly:
		return expandMonthly(start, end, interval), nil
	}
	return nil, fmt.Errorf("%w: frequency %q", domain.ErrInvalidPattern, pattern.Frequency)
}

func expandDaily(start, end time.Time, interval int) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, interval) {
		out = append(out, d)
	}
	return out
}

func expandWeekly(start, end time.Time, interval int, days map[time.Weekday]bool) []time.Time {
	var out []time.Time
	for week := WeekStart(start); !week.After(end); week = week.AddDate(0, 0, 7*interval) {
		for i := 0; i < 7; i++ {
			d := week.AddDate(0, 0, i)
			if d.Before(start) || d.After(end) {
				continue
			}
			if days[d.Weekday()] {
				out = append(out, d)
			}
		}
	}
	return out
}

// expandMonthly keeps the start's day of month and skips months that lack it.
func expandMonthly(start, end time.Time, interval int) []time.Time {
	var out []time.Time
	day := start.Day()
	for i := 0; ; i += interval {
		first := time.Date(start.Year(), start.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		if first.After(end) {
			break
		}
		if day > daysIn(first.Year(), first.Month()) {
			continue
		}
		d := time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
		if d.After(end) {
			break
		}
		out = append(out, d)
	}
	return out
}

func weekdaySet(start time.Time, values []int) (map[time.Weekday]bool, error) {
	set := make(map[time.Weekday]bool, 7)
	if len(values) == 0 {
		set[start.Weekday()] = true
		return set, nil
	}
	for _, v := range values {
		if v < 0 || v > 6 {
			return nil, fmt.Errorf("%w: day of week %d", domain.ErrInvalidPattern, v)
		}
		set[time.Weekday(v)] = true
	}
	return set, nil
}

// StepMarks walks from start (inclusive) to end (exclusive) in step minutes.
func StepMarks(start, end string, step int) ([]string, error) {
	from, err := time.Parse(domain.TimeLayout, start)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTime, start)
	}
	to, err := time.Parse(domain.TimeLayout, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTime, end)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: %s-%s", domain.ErrInvalidRange, start, end)
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidDuration, step)
	}

	var marks []string
	for t := from; t.Before(to); t = t.Add(time.Duration(step) * time.Minute) {
		marks = append(marks, t.Format(domain.TimeLayout))
	}
	return marks, nil
}
