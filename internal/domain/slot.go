package domain

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusBlocked   SlotStatus = "blocked"
	SlotStatusTentative SlotStatus = "tentative"
	SlotStatusBreak     SlotStatus = "break"
)

var slotStatuses = map[SlotStatus]string{
	SlotStatusAvailable: "Available",
	SlotStatusBooked:    "Booked",
	SlotStatusBlocked:   "Blocked",
	SlotStatusTentative: "Tentative",
	SlotStatusBreak:     "Break",
}

func (s SlotStatus) Valid() bool {
	_, ok := slotStatuses[s]
	return ok
}

// Label is the human readable name shown in place of an empty appointment type.
func (s SlotStatus) Label() string {
	if label, ok := slotStatuses[s]; ok {
		return label
	}
	return "Unknown"
}

// SlotDurations lists the allowed slot lengths in minutes.
var SlotDurations = []int{15, 30, 45, 60, 90, 120}

const DefaultSlotDuration = 30

func ValidDuration(minutes int) bool {
	for _, d := range SlotDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

type RecurrenceFrequency string

const (
	RecurrenceDaily   RecurrenceFrequency = "daily"
	RecurrenceWeekly  RecurrenceFrequency = "weekly"
	RecurrenceMonthly RecurrenceFrequency = "monthly"
)

type RecurringPattern struct {
	Frequency  RecurrenceFrequency `json:"frequency" binding:"required,oneof=daily weekly monthly"`
	Interval   int                 `json:"interval"`
	DaysOfWeek []int               `json:"days_of_week,omitempty"`
	EndDate    string              `json:"end_date,omitempty"`
}

// SlotKey addresses a slot inside one provider's store.
type SlotKey struct {
	Date string
	Time string
}

func (k SlotKey) String() string {
	return k.Date + "-" + k.Time
}

type Slot struct {
	ID               string            `json:"id"`
	ProviderID       int64             `json:"provider_id"`
	Date             string            `json:"date"`
	Time             string            `json:"time"`
	EndTime          string            `json:"end_time"`
	Duration         int               `json:"duration"`
	Status           SlotStatus        `json:"status"`
	AppointmentType  string            `json:"appointment_type,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	IsRecurring      bool              `json:"is_recurring"`
	RecurringPattern *RecurringPattern `json:"recurring_pattern,omitempty"`
	SeriesID         string            `json:"series_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (s Slot) Key() SlotKey {
	return SlotKey{Date: s.Date, Time: s.Time}
}

// SlotID returns the identifier a slot gets when the caller does not choose one.
func SlotID(date, timeMark string) string {
	return SlotKey{Date: date, Time: timeMark}.String()
}

// EndTimeFor adds duration minutes to a "15:04" mark. Marks past midnight wrap.
func EndTimeFor(timeMark string, duration int) (string, error) {
	start, err := time.Parse(TimeLayout, timeMark)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidTime, timeMark)
	}
	return start.Add(time.Duration(duration) * time.Minute).Format(TimeLayout), nil
}

// SlotPatch carries the editable fields of a slot. Nil fields are left untouched.
type SlotPatch struct {
	Status          *SlotStatus `json:"status,omitempty"`
	Duration        *int        `json:"duration,omitempty"`
	AppointmentType *string     `json:"appointment_type,omitempty"`
	Notes           *string     `json:"notes,omitempty"`
}

type CreateSlotDTO struct {
	Date             string            `json:"date" binding:"required"`
	Time             string            `json:"time" binding:"required"`
	EndTime          string            `json:"end_time,omitempty"`
	Duration         int               `json:"duration,omitempty"`
	Status           *SlotStatus       `json:"status,omitempty"`
	AppointmentType  string            `json:"appointment_type,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	IsRecurring      bool              `json:"is_recurring,omitempty"`
	RecurringPattern *RecurringPattern `json:"recurring_pattern,omitempty"`
}

type UpdateSlotDTO struct {
	Status          *SlotStatus `json:"status" binding:"omitempty,oneof=available booked blocked tentative break"`
	Duration        *int        `json:"duration" binding:"omitempty,oneof=15 30 45 60 90 120"`
	AppointmentType *string     `json:"appointment_type"`
	Notes           *string     `json:"notes"`
}

func (dto UpdateSlotDTO) Patch() SlotPatch {
	return SlotPatch{
		Status:          dto.Status,
		Duration:        dto.Duration,
		AppointmentType: dto.AppointmentType,
		Notes:           dto.Notes,
	}
}

type SlotFilter struct {
	StartDate       string      `json:"start_date"`
	EndDate         string      `json:"end_date"`
	Status          *SlotStatus `json:"status"`
	AppointmentType string      `json:"appointment_type"`
}

// Match reports whether the slot passes every set criterion. Dates compare
// lexically, which is chronological for the "2006-01-02" layout.
func (f SlotFilter) Match(s Slot) bool {
	if f.StartDate != "" && s.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && s.Date > f.EndDate {
		return false
	}
	if f.Status != nil && s.Status != *f.Status {
		return false
	}
	if f.AppointmentType != "" && s.AppointmentType != f.AppointmentType {
		return false
	}
	return true
}

type CreateSlotsResult struct {
	Created []Slot   `json:"created"`
	Skipped []string `json:"skipped,omitempty"`
}

type BulkAction string

const (
	BulkActionDelete  BulkAction = "delete"
	BulkActionBlock   BulkAction = "block"
	BulkActionUnblock BulkAction = "unblock"
)

type BulkActionDTO struct {
	Action BulkAction `json:"action" binding:"required,oneof=delete block unblock"`
	IDs    []string   `json:"ids"`
}

type BulkResult struct {
	Action    BulkAction `json:"action"`
	Requested int        `json:"requested"`
	Affected  int        `json:"affected"`
}
