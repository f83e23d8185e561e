package domain

import "errors"

var (
	ErrSlotNotFound     = errors.New("slot not found")
	ErrSlotConflict     = errors.New("a slot already exists at this date and time")
	ErrEmptySelection   = errors.New("no slots selected")
	ErrInvalidStatus    = errors.New("invalid slot status")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidTime      = errors.New("invalid time, expected HH:MM")
	ErrInvalidDuration  = errors.New("invalid slot duration")
	ErrInvalidViewMode  = errors.New("invalid view mode")
	ErrInvalidRange     = errors.New("invalid time range")
	ErrInvalidPattern   = errors.New("invalid recurring pattern")
	ErrInvalidAction    = errors.New("invalid bulk action")
	ErrTemplateNotFound = errors.New("template not found")
	ErrStorageDisabled  = errors.New("file storage is not configured")

	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrInvalidName        = errors.New("names must be at least two letters")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrUserInactive       = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionExpired     = errors.New("refresh token expired")
)
