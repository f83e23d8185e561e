package service

import (
	"errors"
	"fmt"

	"healthfirst/internal/domain"
)

// bulkTarget maps a bulk action onto the status it leaves the selected slots
// in. Delete has no target status.
func bulkTarget(action domain.BulkAction) (domain.SlotStatus, bool, error) {
	switch action {
	case domain.BulkActionDelete:
		return "", false, nil
	case domain.BulkActionBlock:
		return domain.SlotStatusBlocked, true, nil
	case domain.BulkActionUnblock:
		return domain.SlotStatusAvailable, true, nil
	}
	return "", false, fmt.Errorf("%w: %q", domain.ErrInvalidAction, action)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func bulkNotice(action domain.BulkAction, affected int) (string, string) {
	slots := plural(affected, "time slot has", "time slots have")
	switch action {
	case domain.BulkActionDelete:
		return "Bulk Delete Complete", slots + " been deleted."
	case domain.BulkActionBlock:
		return "Slots Blocked", slots + " been blocked."
	default:
		return "Slots Unblocked", slots + " been made available."
	}
}

func createdNotice(result domain.CreateSlotsResult) (string, string, domain.Severity) {
	created := len(result.Created)
	if created == 0 {
		return "No Slots Added", "Every requested time is already taken or outside working hours.", domain.SeverityWarning
	}
	msg := plural(created, "new availability slot has", "new availability slots have") + " been added."
	if skipped := len(result.Skipped); skipped > 0 {
		msg += " " + plural(skipped, "time was", "times were") + " skipped."
	}
	return "Availability Added", msg, domain.SeveritySuccess
}

// failureNotice turns a rejected interaction into a user-facing message.
func failureNotice(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrSlotConflict):
		return "Slot Unavailable", "A time slot already exists at that date and time."
	case errors.Is(err, domain.ErrSlotNotFound):
		return "Slot Not Found", "The time slot no longer exists."
	case errors.Is(err, domain.ErrTemplateNotFound):
		return "Template Not Found", "The availability template no longer exists."
	case isValidationError(err):
		return "Invalid Input", err.Error()
	}
	return "Action Failed", "The change could not be saved. Please try again."
}

func isValidationError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidStatus,
		domain.ErrInvalidDate,
		domain.ErrInvalidTime,
		domain.ErrInvalidDuration,
		domain.ErrInvalidViewMode,
		domain.ErrInvalidRange,
		domain.ErrInvalidPattern,
		domain.ErrInvalidAction,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
