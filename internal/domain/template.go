package domain

import "time"

type AvailabilityTemplate struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Times           []string  `json:"times"`
	DaysOfWeek      []int     `json:"days_of_week"`
	Duration        int       `json:"duration"`
	AppointmentType string    `json:"appointment_type,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type CreateTemplateDTO struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Times           []string `json:"times" binding:"required,min=1"`
	DaysOfWeek      []int    `json:"days_of_week" binding:"required,min=1,dive,min=0,max=6"`
	Duration        int      `json:"duration"`
	AppointmentType string   `json:"appointment_type"`
}

type ApplyTemplateDTO struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}
