package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"healthfirst/internal/domain"
)

var exportHeader = []string{"id", "date", "time", "end_time", "duration", "status", "appointment_type", "notes", "series_id"}

// Export writes every slot of the provider to a CSV object and returns a
// time-limited download link.
func (s *AvailabilityServiceImpl) Export(ctx context.Context, providerID int64) (domain.ExportResult, error) {
	if s.files == nil {
		return domain.ExportResult{}, domain.ErrStorageDisabled
	}

	session, err := s.sessions.Get(ctx, providerID)
	if err != nil {
		return domain.ExportResult{}, err
	}

	slots := session.Store.List(domain.SlotFilter{})
	data, err := encodeSlots(slots)
	if err != nil {
		return domain.ExportResult{}, s.fail(ctx, providerID, "export", err)
	}

	key := fmt.Sprintf("exports/%d/%s-%s.csv", providerID, s.now().Format("20060102T150405"), uuid.NewString())
	if _, err := s.files.UploadFile(ctx, data, key, "text/csv"); err != nil {
		return domain.ExportResult{}, s.fail(ctx, providerID, "export", fmt.Errorf("upload export: %w", err))
	}

	url, err := s.files.GetPresignedURL(ctx, key, s.presignTTL)
	if err != nil {
		return domain.ExportResult{}, s.fail(ctx, providerID, "export", fmt.Errorf("presign export: %w", err))
	}

	s.logger.Info("schedule exported",
		zap.Int64("provider_id", providerID),
		zap.String("key", key),
		zap.Int("slots", len(slots)))
	s.metrics.ObserveMutation("export", nil)
	s.notify(ctx, providerID, domain.SeveritySuccess, "Schedule Exported",
		plural(len(slots), "time slot was", "time slots were")+" exported.")
	return domain.ExportResult{URL: url, SlotCount: len(slots)}, nil
}

func encodeSlots(slots []domain.Slot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, slot := range slots {
		if err := w.Write([]string{
			slot.ID,
			slot.Date,
			slot.Time,
			slot.EndTime,
			strconv.Itoa(slot.Duration),
			string(slot.Status),
			slot.AppointmentType,
			slot.Notes,
			slot.SeriesID,
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return buf.Bytes(), nil
}
