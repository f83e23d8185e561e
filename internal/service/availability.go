package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"healthfirst/internal/calendar"
	"healthfirst/internal/domain"
	"healthfirst/internal/metrics"
	"healthfirst/internal/repository"
	"healthfirst/internal/storage"
	"healthfirst/pkg/validator"
)

// Publisher delivers notifications about completed and rejected mutations.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification)
	Recent(ctx context.Context, providerID int64, limit int) ([]domain.Notification, error)
}

type AvailabilityServiceImpl struct {
	sessions   *SessionManager
	repo       repository.SlotRepository
	files      storage.FileStorage
	notifier   Publisher
	metrics    *metrics.AvailabilityMetrics
	logger     *zap.Logger
	horizon    time.Duration
	presignTTL time.Duration
	now        func() time.Time
}

type AvailabilityDeps struct {
	Sessions   *SessionManager
	Repo       repository.SlotRepository
	Files      storage.FileStorage
	Notifier   Publisher
	Metrics    *metrics.AvailabilityMetrics
	Logger     *zap.Logger
	Horizon    time.Duration
	PresignTTL time.Duration
	Now        func() time.Time
}

func NewAvailabilityService(deps AvailabilityDeps) *AvailabilityServiceImpl {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AvailabilityServiceImpl{
		sessions:   deps.Sessions,
		repo:       deps.Repo,
		files:      deps.Files,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		horizon:    deps.Horizon,
		presignTTL: deps.PresignTTL,
		now:        now,
	}
}

func (s *AvailabilityServiceImpl) GetCalendar(ctx context.Context, providerID int64, view domain.ViewMode, date string) (domain.Grid, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return domain.Grid{}, err
	}

	curView, curDate := session.Position()
	if view != "" {
		if !view.Valid() {
			return domain.Grid{}, fmt.Errorf("%w: %q", domain.ErrInvalidViewMode, view)
		}
		curView = view
	}
	if date != "" {
		curDate, err = calendar.ParseDate(date)
		if err != nil {
			return domain.Grid{}, err
		}
	}

	session.SetPosition(curView, curDate)
	return s.buildGrid(session, curView, curDate)
}

func (s *AvailabilityServiceImpl) SetView(ctx context.Context, providerID int64, dto domain.SetViewDTO) (domain.Grid, error) {
	return s.GetCalendar(ctx, providerID, dto.View, dto.Date)
}

func (s *AvailabilityServiceImpl) Navigate(ctx context.Context, providerID int64, dir domain.Direction) (domain.Grid, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return domain.Grid{}, err
	}

	view, date := session.Position()
	next, err := calendar.Navigate(date, view, dir, s.now())
	if err != nil {
		return domain.Grid{}, err
	}

	session.SetPosition(view, next)
	return s.buildGrid(session, view, next)
}

func (s *AvailabilityServiceImpl) buildGrid(session *Session, view domain.ViewMode, date time.Time) (domain.Grid, error) {
	now := s.now()
	key := calendar.GridKey{
		Date:    calendar.FormatDate(date),
		View:    view,
		Version: session.Store.Version(),
		Today:   calendar.FormatDate(now),
	}
	if grid, ok := session.grids.Get(key); ok {
		s.metrics.ObserveGridCache(true)
		return grid, nil
	}
	s.metrics.ObserveGridCache(false)

	started := time.Now()
	grid, err := calendar.Build(date, view, session.Store.List(visibleRange(view, date)), now)
	if err != nil {
		return domain.Grid{}, err
	}
	s.metrics.ObserveGridBuild(string(view), time.Since(started).Seconds())

	session.grids.Add(key, grid)
	return grid, nil
}

func visibleRange(view domain.ViewMode, date time.Time) domain.SlotFilter {
	switch view {
	case domain.ViewMonth:
		days := calendar.MonthDays(date)
		return domain.SlotFilter{StartDate: calendar.FormatDate(days[0]), EndDate: calendar.FormatDate(days[len(days)-1])}
	case domain.ViewWeek:
		start := calendar.WeekStart(date)
		return domain.SlotFilter{StartDate: calendar.FormatDate(start), EndDate: calendar.FormatDate(start.AddDate(0, 0, 6))}
	}
	d := calendar.FormatDate(date)
	return domain.SlotFilter{StartDate: d, EndDate: d}
}

// SelectCell opens the slot at (date, time) for editing, or quick-adds an
// available 30 minute slot when the cell is empty.
func (s *AvailabilityServiceImpl) SelectCell(ctx context.Context, providerID int64, dto domain.SelectCellDTO) (domain.SelectCellResult, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return domain.SelectCellResult{}, err
	}

	if _, err := calendar.ParseDate(dto.Date); err != nil {
		return domain.SelectCellResult{}, s.fail(ctx, providerID, "quick_add", err)
	}
	if !calendar.IsTimeMark(dto.Time) {
		return domain.SelectCellResult{}, s.fail(ctx, providerID, "quick_add", fmt.Errorf("%w: %q", domain.ErrInvalidTime, dto.Time))
	}

	if existing, ok := session.Store.FindByKey(dto.Date, dto.Time); ok {
		return domain.SelectCellResult{Created: false, Slot: existing}, nil
	}

	slot, err := session.Store.Insert(newSlot(providerID, dto.Date, dto.Time, domain.DefaultSlotDuration, domain.SlotStatusAvailable))
	if err != nil {
		return domain.SelectCellResult{}, s.fail(ctx, providerID, "quick_add", err)
	}
	if err := s.save(ctx, providerID, slot); err != nil {
		session.Store.BulkRemove([]string{slot.ID})
		return domain.SelectCellResult{}, s.fail(ctx, providerID, "quick_add", err)
	}

	s.metrics.ObserveMutation("quick_add", nil)
	s.notify(ctx, providerID, domain.SeveritySuccess, "Slot Added",
		fmt.Sprintf("Time slot added at %s on %s.", slot.Time, slot.Date))
	return domain.SelectCellResult{Created: true, Slot: slot}, nil
}

// CreateSlots handles the add form. A form naming one date and one time
// creates exactly that slot and fails on an occupied key. A time range or a
// recurring pattern creates every free slot and reports the rest as skipped.
func (s *AvailabilityServiceImpl) CreateSlots(ctx context.Context, providerID int64, dto domain.CreateSlotDTO) (domain.CreateSlotsResult, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return domain.CreateSlotsResult{}, err
	}

	slots, skipped, single, err := s.expandForm(providerID, dto)
	if err != nil {
		return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "create", err)
	}

	var result domain.CreateSlotsResult
	if single {
		slot, err := session.Store.Insert(slots[0])
		if err != nil {
			return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "create", err)
		}
		result.Created = []domain.Slot{slot}
	} else {
		created, taken, err := session.Store.InsertMany(slots)
		if err != nil {
			return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "create", err)
		}
		result.Created = created
		result.Skipped = append(skipped, taken...)
	}

	if err := s.save(ctx, providerID, result.Created...); err != nil {
		session.Store.BulkRemove(slotIDs(result.Created))
		return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "create", err)
	}

	s.metrics.ObserveMutation("create", nil)
	title, msg, severity := createdNotice(result)
	s.notify(ctx, providerID, severity, title, msg)
	return result, nil
}

func (s *AvailabilityServiceImpl) expandForm(providerID int64, dto domain.CreateSlotDTO) ([]domain.Slot, []string, bool, error) {
	duration := dto.Duration
	if duration == 0 {
		duration = domain.DefaultSlotDuration
	}
	if !domain.ValidDuration(duration) {
		return nil, nil, false, fmt.Errorf("%w: %d", domain.ErrInvalidDuration, duration)
	}

	status := domain.SlotStatusAvailable
	if dto.Status != nil {
		if !dto.Status.Valid() {
			return nil, nil, false, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *dto.Status)
		}
		status = *dto.Status
	}

	start, err := calendar.ParseDate(dto.Date)
	if err != nil {
		return nil, nil, false, err
	}
	if !calendar.IsTimeMark(dto.Time) {
		return nil, nil, false, fmt.Errorf("%w: %q", domain.ErrInvalidTime, dto.Time)
	}

	marks := []string{dto.Time}
	if dto.EndTime != "" {
		marks, err = calendar.StepMarks(dto.Time, dto.EndTime, duration)
		if err != nil {
			return nil, nil, false, err
		}
	}

	dates := []time.Time{start}
	var seriesID string
	if dto.IsRecurring {
		if dto.RecurringPattern == nil {
			return nil, nil, false, fmt.Errorf("%w: pattern is required for a recurring slot", domain.ErrInvalidPattern)
		}
		dates, err = calendar.Expand(start, *dto.RecurringPattern, s.horizon)
		if err != nil {
			return nil, nil, false, err
		}
		seriesID = uuid.NewString()
	}

	var (
		slots   []domain.Slot
		skipped []string
	)
	for _, d := range dates {
		date := calendar.FormatDate(d)
		for _, mark := range marks {
			if !calendar.IsTimeMark(mark) {
				skipped = append(skipped, domain.SlotID(date, mark))
				continue
			}
			slot := newSlot(providerID, date, mark, duration, status)
			slot.AppointmentType = validator.SanitizeString(dto.AppointmentType)
			slot.Notes = validator.SanitizeString(dto.Notes)
			if seriesID != "" {
				slot.IsRecurring = true
				slot.RecurringPattern = dto.RecurringPattern
				slot.SeriesID = seriesID
			}
			slots = append(slots, slot)
		}
	}

	single := len(dates) == 1 && len(marks) == 1 && !dto.IsRecurring
	return slots, skipped, single, nil
}

func (s *AvailabilityServiceImpl) UpdateSlot(ctx context.Context, providerID int64, id string, dto domain.UpdateSlotDTO) (domain.Slot, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return domain.Slot{}, err
	}

	if dto.Duration != nil && !domain.ValidDuration(*dto.Duration) {
		return domain.Slot{}, s.fail(ctx, providerID, "update", fmt.Errorf("%w: %d", domain.ErrInvalidDuration, *dto.Duration))
	}

	patch := dto.Patch()
	patch.AppointmentType = sanitized(patch.AppointmentType)
	patch.Notes = sanitized(patch.Notes)

	previous := session.Store.Snapshot(id)
	slot, err := session.Store.UpdateFields(id, patch)
	if err != nil {
		return domain.Slot{}, s.fail(ctx, providerID, "update", err)
	}
	if err := s.save(ctx, providerID, slot); err != nil {
		session.Store.Restore(previous...)
		return domain.Slot{}, s.fail(ctx, providerID, "update", err)
	}

	s.metrics.ObserveMutation("update", nil)
	s.notify(ctx, providerID, domain.SeveritySuccess, "Slot Updated", "Time slot has been updated successfully.")
	return slot, nil
}

// DeleteSlot removes one slot, or its whole recurring series when
// deleteRecurring is set. A missing id removes nothing and is not an error.
func (s *AvailabilityServiceImpl) DeleteSlot(ctx context.Context, providerID int64, id string, deleteRecurring bool) (int, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return 0, err
	}

	var (
		removed  []string
		previous []domain.Slot
	)
	if deleteRecurring {
		if slot, ok := session.Store.FindByID(id); ok && slot.SeriesID != "" {
			previous = session.Store.Series(slot.SeriesID)
			removed = session.Store.RemoveSeries(slot.SeriesID)
		}
	}
	if removed == nil {
		previous = session.Store.Snapshot(id)
		if session.Store.Remove(id) == 1 {
			removed = []string{id}
		}
	}

	if len(removed) == 0 {
		s.metrics.ObserveMutation("delete", nil)
		s.notify(ctx, providerID, domain.SeverityInfo, "Nothing Deleted", "The time slot was already removed.")
		return 0, nil
	}

	if err := s.remove(ctx, providerID, removed...); err != nil {
		session.Store.Restore(previous...)
		return 0, s.fail(ctx, providerID, "delete", err)
	}

	s.metrics.ObserveMutation("delete", nil)
	if len(removed) > 1 {
		s.notify(ctx, providerID, domain.SeveritySuccess, "Recurring Series Deleted",
			plural(len(removed), "time slot has", "time slots have")+" been removed from your schedule.")
	} else {
		s.notify(ctx, providerID, domain.SeveritySuccess, "Slot Deleted", "Time slot has been removed from your schedule.")
	}
	return len(removed), nil
}

func (s *AvailabilityServiceImpl) BulkAction(ctx context.Context, providerID int64, dto domain.BulkActionDTO) (domain.BulkResult, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return domain.BulkResult{}, err
	}

	if len(dto.IDs) == 0 {
		s.metrics.ObserveMutation("bulk_"+string(dto.Action), domain.ErrEmptySelection)
		s.notify(ctx, providerID, domain.SeverityWarning, "No Slots Selected", "Please select time slots to perform bulk actions.")
		return domain.BulkResult{}, domain.ErrEmptySelection
	}

	status, setsStatus, err := bulkTarget(dto.Action)
	if err != nil {
		return domain.BulkResult{}, s.fail(ctx, providerID, "bulk", err)
	}

	result := domain.BulkResult{Action: dto.Action, Requested: len(dto.IDs)}
	previous := session.Store.Snapshot(dto.IDs...)
	if setsStatus {
		updated, err := session.Store.BulkUpdateStatus(dto.IDs, status)
		if err != nil {
			return domain.BulkResult{}, s.fail(ctx, providerID, "bulk_"+string(dto.Action), err)
		}
		result.Affected = len(updated)
		if err := s.save(ctx, providerID, updated...); err != nil {
			session.Store.Restore(previous...)
			return domain.BulkResult{}, s.fail(ctx, providerID, "bulk_"+string(dto.Action), err)
		}
	} else {
		result.Affected = session.Store.BulkRemove(dto.IDs)
		if err := s.remove(ctx, providerID, dto.IDs...); err != nil {
			session.Store.Restore(previous...)
			return domain.BulkResult{}, s.fail(ctx, providerID, "bulk_delete", err)
		}
	}

	s.metrics.ObserveMutation("bulk_"+string(dto.Action), nil)
	title, msg := bulkNotice(dto.Action, result.Affected)
	s.notify(ctx, providerID, domain.SeveritySuccess, title, msg)
	return result, nil
}

func (s *AvailabilityServiceImpl) ListSlots(ctx context.Context, providerID int64, filter domain.SlotFilter) ([]domain.Slot, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}

	for _, d := range []string{filter.StartDate, filter.EndDate} {
		if d == "" {
			continue
		}
		if _, err := calendar.ParseDate(d); err != nil {
			return nil, err
		}
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *filter.Status)
	}

	return session.Store.List(filter), nil
}

func (s *AvailabilityServiceImpl) GetSlot(ctx context.Context, providerID int64, id string) (domain.Slot, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return domain.Slot{}, err
	}

	slot, ok := session.Store.FindByID(id)
	if !ok {
		return domain.Slot{}, fmt.Errorf("%w: %s", domain.ErrSlotNotFound, id)
	}
	return slot, nil
}

// WeekSummary counts the week's slots by status. Utilization is the share of
// bookable time (available plus booked) that is booked, in percent.
func (s *AvailabilityServiceImpl) WeekSummary(ctx context.Context, providerID int64, date string) (domain.WeekSummary, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return domain.WeekSummary{}, err
	}

	ref := calendar.Civil(s.now())
	if date != "" {
		if ref, err = calendar.ParseDate(date); err != nil {
			return domain.WeekSummary{}, err
		}
	}

	filter := visibleRange(domain.ViewWeek, ref)
	stats := calendar.StatsFor(session.Store.List(filter))
	summary := domain.WeekSummary{
		WeekStart: filter.StartDate,
		WeekEnd:   filter.EndDate,
		Total:     stats.Total,
		Available: stats.Available,
		Booked:    stats.Booked,
		Blocked:   stats.Blocked,
	}
	if bookable := stats.Available + stats.Booked; bookable > 0 {
		summary.Utilization = math.Round(float64(stats.Booked)*10000/float64(bookable)) / 100
	}
	return summary, nil
}

// CopyWeek replicates the week containing dto.From into the week containing
// dto.To. Copies start out available and keys already taken are skipped.
func (s *AvailabilityServiceImpl) CopyWeek(ctx context.Context, providerID int64, dto domain.CopyWeekDTO) (domain.CreateSlotsResult, error) {
	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return domain.CreateSlotsResult{}, err
	}

	from, err := calendar.ParseDate(dto.From)
	if err != nil {
		return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "copy_week", err)
	}
	to, err := calendar.ParseDate(dto.To)
	if err != nil {
		return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "copy_week", err)
	}

	source := session.Store.List(visibleRange(domain.ViewWeek, from))
	offset := int(calendar.WeekStart(to).Sub(calendar.WeekStart(from)).Hours() / 24)

	copies := make([]domain.Slot, 0, len(source))
	for _, src := range source {
		d, err := calendar.ParseDate(src.Date)
		if err != nil {
			continue
		}
		slot := newSlot(providerID, calendar.FormatDate(d.AddDate(0, 0, offset)), src.Time, src.Duration, domain.SlotStatusAvailable)
		slot.AppointmentType = src.AppointmentType
		slot.Notes = src.Notes
		copies = append(copies, slot)
	}

	created, skipped, err := session.Store.InsertMany(copies)
	if err != nil {
		return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "copy_week", err)
	}
	if err := s.save(ctx, providerID, created...); err != nil {
		session.Store.BulkRemove(slotIDs(created))
		return domain.CreateSlotsResult{}, s.fail(ctx, providerID, "copy_week", err)
	}

	s.metrics.ObserveMutation("copy_week", nil)
	s.notify(ctx, providerID, domain.SeveritySuccess, "Week Copied",
		fmt.Sprintf("%s copied to the week of %s.",
			plural(len(created), "time slot", "time slots"), calendar.WeekStart(to).Format("Jan 2")))
	return domain.CreateSlotsResult{Created: created, Skipped: skipped}, nil
}

func (s *AvailabilityServiceImpl) Notifications(ctx context.Context, providerID int64, limit int) ([]domain.Notification, error) {
	if s.notifier == nil {
		return []domain.Notification{}, nil
	}
	return s.notifier.Recent(ctx, providerID, limit)
}

func newSlot(providerID int64, date, mark string, duration int, status domain.SlotStatus) domain.Slot {
	end, _ := domain.EndTimeFor(mark, duration)
	return domain.Slot{
		ID:         domain.SlotID(date, mark),
		ProviderID: providerID,
		Date:       date,
		Time:       mark,
		EndTime:    end,
		Duration:   duration,
		Status:     status,
	}
}

func slotIDs(slots []domain.Slot) []string {
	ids := make([]string, len(slots))
	for i, slot := range slots {
		ids[i] = slot.ID
	}
	return ids
}

func sanitized(v *string) *string {
	if v == nil {
		return nil
	}
	clean := validator.SanitizeString(*v)
	return &clean
}

// save writes slots through to the repository. Callers roll their store
// change back when it fails.
func (s *AvailabilityServiceImpl) save(ctx context.Context, providerID int64, slots ...domain.Slot) error {
	if s.repo == nil || len(slots) == 0 {
		return nil
	}
	if err := s.repo.Save(ctx, providerID, slots...); err != nil {
		return fmt.Errorf("persist slots: %w", err)
	}
	return nil
}

func (s *AvailabilityServiceImpl) remove(ctx context.Context, providerID int64, ids ...string) error {
	if s.repo == nil || len(ids) == 0 {
		return nil
	}
	if err := s.repo.Delete(ctx, providerID, ids...); err != nil {
		return fmt.Errorf("persist slot removal: %w", err)
	}
	return nil
}

func (s *AvailabilityServiceImpl) notify(ctx context.Context, providerID int64, severity domain.Severity, title, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(ctx, domain.Notification{
		ProviderID: providerID,
		Title:      title,
		Message:    message,
		Severity:   severity,
		CreatedAt:  s.now(),
	})
}

// fail records a rejected mutation and returns err unchanged.
func (s *AvailabilityServiceImpl) fail(ctx context.Context, providerID int64, operation string, err error) error {
	s.metrics.ObserveMutation(operation, err)

	log := s.logger.Warn
	if !isValidationError(err) && !errors.Is(err, domain.ErrSlotConflict) && !errors.Is(err, domain.ErrSlotNotFound) {
		log = s.logger.Error
	}
	log("availability mutation rejected",
		zap.Int64("provider_id", providerID),
		zap.String("operation", operation),
		zap.Error(err))

	title, msg := failureNotice(err)
	s.notify(ctx, providerID, domain.SeverityError, title, msg)
	return err
}
