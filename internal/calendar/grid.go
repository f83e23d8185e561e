// Package calendar builds the month, week and day availability grids and
// expands recurring patterns into concrete dates. Everything here is a pure
// function of its inputs; callers supply the clock and the slot set.
package calendar

import (
	"fmt"
	"sort"
	"time"

	"healthfirst/internal/domain"
)

const (
	dayStart     = 8 * time.Hour
	markInterval = 15 * time.Minute
	markCount    = 40
)

var timeMarks = func() []string {
	marks := make([]string, 0, markCount)
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(dayStart)
	for i := 0; i < markCount; i++ {
		marks = append(marks, base.Add(time.Duration(i)*markInterval).Format(domain.TimeLayout))
	}
	return marks
}()

// TimeMarks returns the 40 start marks of a working day, 08:00 through 17:45.
func TimeMarks() []string {
	out := make([]string, len(timeMarks))
	copy(out, timeMarks)
	return out
}

func IsTimeMark(mark string) bool {
	i := sort.SearchStrings(timeMarks, mark)
	return i < len(timeMarks) && timeMarks[i] == mark
}

func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, value)
	}
	return d, nil
}

func FormatDate(d time.Time) string {
	return d.Format(domain.DateLayout)
}

// Civil truncates t to midnight UTC of its own calendar date.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func MonthDays(ref time.Time) []time.Time {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	n := daysIn(ref.Year(), ref.Month())
	days := make([]time.Time, n)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}

// WeekStart returns the Monday of the week containing ref.
func WeekStart(ref time.Time) time.Time {
	ref = Civil(ref)
	offset := (int(ref.Weekday()) + 6) % 7
	return ref.AddDate(0, 0, -offset)
}

func WeekDays(ref time.Time) []time.Time {
	start := WeekStart(ref)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// AddMonths shifts ref by n months, clamping the day to the target month's
// last day, so Jan 31 plus one month is the end of February.
func AddMonths(ref time.Time, n int) time.Time {
	first := time.Date(ref.Year(), ref.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := ref.Day()
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func Navigate(ref time.Time, view domain.ViewMode, dir domain.Direction, now time.Time) (time.Time, error) {
	if dir == domain.DirectionToday {
		return Civil(now), nil
	}

	step := 1
	switch dir {
	case domain.DirectionNext:
	case domain.DirectionPrev:
		step = -1
	default:
		return time.Time{}, fmt.Errorf("unknown direction %q", dir)
	}

	switch view {
	case domain.ViewMonth:
		return AddMonths(ref, step), nil
	case domain.ViewWeek:
		return Civil(ref).AddDate(0, 0, 7*step), nil
	case domain.ViewDay:
		return Civil(ref).AddDate(0, 0, step), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidViewMode, view)
}

func Title(ref time.Time, view domain.ViewMode) string {
	switch view {
	case domain.ViewMonth:
		return ref.Format("January 2006")
	case domain.ViewWeek:
		return "Week of " + WeekStart(ref).Format("Jan 2")
	default:
		return ref.Format("Monday, January 2, 2006")
	}
}

func StatsFor(slots []domain.Slot) domain.DayStats {
	stats := domain.DayStats{Total: len(slots)}
	for _, s := range slots {
		switch s.Status {
		case domain.SlotStatusAvailable:
			stats.Available++
		case domain.SlotStatusBooked:
			stats.Booked++
		case domain.SlotStatusBlocked:
			stats.Blocked++
		}
	}
	return stats
}

// Build computes the grid for view anchored at ref. Each (date, mark) cell
// resolves to at most one slot by exact key.
func Build(ref time.Time, view domain.ViewMode, slots []domain.Slot, now time.Time) (domain.Grid, error) {
	ref = Civil(ref)
	today := FormatDate(now)

	byKey := make(map[domain.SlotKey]domain.Slot, len(slots))
	byDate := make(map[string][]domain.Slot)
	for _, s := range slots {
		if _, dup := byKey[s.Key()]; dup {
			continue
		}
		byKey[s.Key()] = s
		byDate[s.Date] = append(byDate[s.Date], s)
	}

	grid := domain.Grid{
		View:  view,
		Date:  FormatDate(ref),
		Title: Title(ref, view),
	}

	var days []time.Time
	switch view {
	case domain.ViewMonth:
		days = MonthDays(ref)
		for _, d := range days {
			date := FormatDate(d)
			stats := StatsFor(byDate[date])
			grid.Days = append(grid.Days, date)
			grid.Cells = append(grid.Cells, domain.Cell{Date: date, Stats: &stats, Today: date == today})
		}
		return grid, nil
	case domain.ViewWeek:
		days = WeekDays(ref)
	case domain.ViewDay:
		days = []time.Time{ref}
	default:
		return domain.Grid{}, fmt.Errorf("%w: %q", domain.ErrInvalidViewMode, view)
	}

	grid.Times = TimeMarks()
	for _, d := range days {
		grid.Days = append(grid.Days, FormatDate(d))
	}
	grid.Cells = make([]domain.Cell, 0, len(days)*markCount)
	for _, mark := range timeMarks {
		for _, date := range grid.Days {
			cell := domain.Cell{Date: date, Time: mark, Today: date == today}
			if s, ok := byKey[domain.SlotKey{Date: date, Time: mark}]; ok {
				slot := s
				cell.Slot = &slot
			}
			grid.Cells = append(grid.Cells, cell)
		}
	}
	return grid, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
