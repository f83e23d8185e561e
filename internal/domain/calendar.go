package domain

type ViewMode string

const (
	ViewMonth ViewMode = "month"
	ViewWeek  ViewMode = "week"
	ViewDay   ViewMode = "day"
)

func (v ViewMode) Valid() bool {
	switch v {
	case ViewMonth, ViewWeek, ViewDay:
		return true
	}
	return false
}

type Direction string

const (
	DirectionPrev  Direction = "prev"
	DirectionNext  Direction = "next"
	DirectionToday Direction = "today"
)

type DayStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Booked    int `json:"booked"`
	Blocked   int `json:"blocked"`
}

// Cell is one addressable position of the grid. Month cells carry day stats,
// week and day cells carry a time mark and the slot at that key, if any.
type Cell struct {
	Date  string    `json:"date"`
	Time  string    `json:"time,omitempty"`
	Slot  *Slot     `json:"slot,omitempty"`
	Stats *DayStats `json:"stats,omitempty"`
	Today bool      `json:"today,omitempty"`
}

type Grid struct {
	View  ViewMode `json:"view"`
	Date  string   `json:"date"`
	Title string   `json:"title"`
	Days  []string `json:"days"`
	Times []string `json:"times,omitempty"`
	Cells []Cell   `json:"cells"`
}

type WeekSummary struct {
	WeekStart   string  `json:"week_start"`
	WeekEnd     string  `json:"week_end"`
	Total       int     `json:"total"`
	Available   int     `json:"available"`
	Booked      int     `json:"booked"`
	Blocked     int     `json:"blocked"`
	Utilization float64 `json:"utilization"`
}

type SetViewDTO struct {
	View ViewMode `json:"view" binding:"required,oneof=month week day"`
	Date string   `json:"date"`
}

type NavigateDTO struct {
	Direction Direction `json:"direction" binding:"required,oneof=prev next today"`
}

type SelectCellDTO struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// SelectCellResult tells the caller whether the cell was empty and got a
// fresh slot, or was occupied and should be opened for editing.
type SelectCellResult struct {
	Created bool `json:"created"`
	Slot    Slot `json:"slot"`
}

type CopyWeekDTO struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

type ExportResult struct {
	URL       string `json:"url"`
	SlotCount int    `json:"slot_count"`
}
