package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"healthfirst/internal/domain"
)

type SlotRepo struct {
	db DB
}

func NewSlotRepository(db DB) *SlotRepo {
	return &SlotRepo{
		db: db,
	}
}

func (r *SlotRepo) ListByProvider(ctx context.Context, providerID int64) ([]domain.Slot, error) {
	query := `
		SELECT id, to_char(slot_date, 'YYYY-MM-DD'), start_time, end_time, duration, status,
		       appointment_type, notes, is_recurring, recurring_pattern, series_id, created_at, updated_at
		FROM availability_slots
		WHERE provider_id = $1
		ORDER BY slot_date, start_time
	`

	rows, err := r.db.Query(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []domain.Slot
	for rows.Next() {
		var (
			slot    domain.Slot
			status  string
			pattern []byte
		)
		err := rows.Scan(
			&slot.ID,
			&slot.Date,
			&slot.Time,
			&slot.EndTime,
			&slot.Duration,
			&status,
			&slot.AppointmentType,
			&slot.Notes,
			&slot.IsRecurring,
			&pattern,
			&slot.SeriesID,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slot.ProviderID = providerID
		slot.Status = domain.SlotStatus(status)
		if len(pattern) > 0 {
			slot.RecurringPattern = &domain.RecurringPattern{}
			if err := json.Unmarshal(pattern, slot.RecurringPattern); err != nil {
				return nil, fmt.Errorf("decode recurring pattern of %s: %w", slot.ID, err)
			}
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

// Save upserts slots in one transaction.
func (r *SlotRepo) Save(ctx context.Context, providerID int64, slots ...domain.Slot) error {
	if len(slots) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO availability_slots (provider_id, id, slot_date, start_time, end_time, duration, status,
		                                appointment_type, notes, is_recurring, recurring_pattern, series_id,
		                                created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (provider_id, id) DO UPDATE SET
			end_time = EXCLUDED.end_time,
			duration = EXCLUDED.duration,
			status = EXCLUDED.status,
			appointment_type = EXCLUDED.appointment_type,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
	`

	for _, slot := range slots {
		var pattern []byte
		if slot.RecurringPattern != nil {
			pattern, err = json.Marshal(slot.RecurringPattern)
			if err != nil {
				return fmt.Errorf("encode recurring pattern of %s: %w", slot.ID, err)
			}
		}

		_, err = tx.Exec(ctx, query,
			providerID,
			slot.ID,
			slot.Date,
			slot.Time,
			slot.EndTime,
			slot.Duration,
			string(slot.Status),
			slot.AppointmentType,
			slot.Notes,
			slot.IsRecurring,
			pattern,
			slot.SeriesID,
			slot.CreatedAt,
			slot.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("save slot %s: %w", slot.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *SlotRepo) Delete(ctx context.Context, providerID int64, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM availability_slots WHERE provider_id = $1 AND id = ANY($2)`
	if _, err := r.db.Exec(ctx, query, providerID, ids); err != nil {
		return fmt.Errorf("delete slots: %w", err)
	}

	return nil
}
