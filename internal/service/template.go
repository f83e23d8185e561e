package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"healthfirst/internal/calendar"
	"healthfirst/internal/domain"
	"healthfirst/pkg/validator"
)

func (s *AvailabilityServiceImpl) CreateTemplate(ctx context.Context, providerID int64, dto domain.CreateTemplateDTO) (domain.AvailabilityTemplate, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return domain.AvailabilityTemplate{}, err
	}

	duration := dto.Duration
	if duration == 0 {
		duration = domain.DefaultSlotDuration
	}
	if !domain.ValidDuration(duration) {
		return domain.AvailabilityTemplate{}, fmt.Errorf("%w: %d", domain.ErrInvalidDuration, duration)
	}
	for _, mark := range dto.Times {
		if !calendar.IsTimeMark(mark) {
			return domain.AvailabilityTemplate{}, fmt.Errorf("%w: %q", domain.ErrInvalidTime, mark)
		}
	}
	for _, d := range dto.DaysOfWeek {
		if d < 0 || d > 6 {
			return domain.AvailabilityTemplate{}, fmt.Errorf("%w: day of week %d", domain.ErrInvalidPattern, d)
		}
	}

	template := domain.AvailabilityTemplate{
		ID:              uuid.NewString(),
		Name:            validator.SanitizeString(dto.Name),
		Description:     validator.SanitizeString(dto.Description),
		Times:           append([]string(nil), dto.Times...),
		DaysOfWeek:      append([]int(nil), dto.DaysOfWeek...),
		Duration:        duration,
		AppointmentType: dto.AppointmentType,
		CreatedAt:       s.now(),
	}
	session.AddTemplate(template)
	return template, nil
}

func (s *AvailabilityServiceImpl) ListTemplates(ctx context.Context, providerID int64) ([]domain.AvailabilityTemplate, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return session.Templates(), nil
}

func (s *AvailabilityServiceImpl) DeleteTemplate(ctx context.Context, providerID int64, id string) error {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return err
	}
	if !session.RemoveTemplate(id) {
		return fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, id)
	}
	return nil
}

// ApplyTemplate stamps the template's times onto every matching weekday from
// StartDate through EndDate. The range is capped by the recurrence horizon.
func (s *AvailabilityServiceImpl) ApplyTemplate(ctx context.Context, providerID int64, id string, dto domain.ApplyTemplateDTO) (domain.CreateSlotsResult, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return domain.CreateSlotsResult{}, err
	}

	template, ok := session.Template(id)
	if !ok {
		return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "apply_template", fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, id))
	}

	start, err := calendar.ParseDate(dto.StartDate)
	if err != nil {
		return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "apply_template", err)
	}
	dates, err := calendar.Expand(start, domain.RecurringPattern{
		Frequency:  domain.RecurrenceWeekly,
		Interval:   1,
		DaysOfWeek: template.DaysOfWeek,
		EndDate:    dto.EndDate,
	}, s.horizon)
	if err != nil {
		return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "apply_template", err)
	}

	slots := make([]domain.Slot, 0, len(dates)*len(template.Times))
	for _, d := range dates {
		date := calendar.FormatDate(d)
		for _, mark := range template.Times {
			slot := newSlot(providerID, date, mark, template.Duration, domain.SlotStatusAvailable)
			slot.AppointmentType = template.AppointmentType
			slots = append(slots, slot)
		}
	}

	created, skipped, err := session.Store.InsertMany(slots)
	if err != nil {
		return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "apply_template", err)
	}
	if err := s.save(ctx, providerID, created...); err != nil {
		session.Store.BulkRemove(slotIDs(created))
		return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "apply_template", err)
	}

	s.metrics.ObserveMutation("apply_template", nil)
	s.notify(ctx, providerID, domain.SeveritySuccess, "Template Applied",
		fmt.Sprintf("%q added %s.", template.Name, plural(len(created), "time slot", "time slots")))
	return domain.CreateSlotsResult{Created: created, Skipped: skipped}, nil
}
