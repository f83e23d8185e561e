package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthfirst/internal/domain"
)

var slotColumns = []string{
	"id", "to_char", "start_time", "end_time", "duration", "status", "appointment_type", "notes",
	"is_recurring", "recurring_pattern", "series_id", "created_at", "updated_at",
}

func TestSlotRepoListByProvider(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, to_char\(slot_date, 'YYYY-MM-DD'\)`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(slotColumns).
			AddRow("2024-01-15-09:00", "2024-01-15", "09:00", "09:30", 30, "available", "", "", false, []byte(nil), "", now, now).
			AddRow("2024-01-22-09:00", "2024-01-22", "09:00", "10:00", 60, "booked", "consultation", "", true,
				[]byte(`{"frequency":"weekly","interval":1,"days_of_week":[1]}`), "series-1", now, now))

	repo := NewSlotRepository(mock)
	slots, err := repo.ListByProvider(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, int64(7), slots[0].ProviderID)
	assert.Equal(t, domain.SlotStatusAvailable, slots[0].Status)
	assert.Nil(t, slots[0].RecurringPattern)

	require.NotNil(t, slots[1].RecurringPattern)
	assert.Equal(t, domain.RecurrenceWeekly, slots[1].RecurringPattern.Frequency)
	assert.Equal(t, []int{1}, slots[1].RecurringPattern.DaysOfWeek)
	assert.Equal(t, "series-1", slots[1].SeriesID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepoSave(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	slot := domain.Slot{
		ID:        "2024-01-15-09:00",
		Date:      "2024-01-15",
		Time:      "09:00",
		EndTime:   "09:30",
		Duration:  30,
		Status:    domain.SlotStatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO availability_slots").
		WithArgs(int64(7), slot.ID, slot.Date, slot.Time, slot.EndTime, 30, "available", "", "", false, []byte(nil), "", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewSlotRepository(mock)
	require.NoError(t, repo.Save(context.Background(), 7, slot))
	require.NoError(t, repo.Save(context.Background(), 7))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepoSaveRollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO availability_slots").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	repo := NewSlotRepository(mock)
	err = repo.Save(context.Background(), 7, domain.Slot{ID: "x", Status: domain.SlotStatusBlocked})
	assert.ErrorContains(t, err, "save slot x")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepoDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM availability_slots").
		WithArgs(int64(7), []string{"a", "b"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	repo := NewSlotRepository(mock)
	require.NoError(t, repo.Delete(context.Background(), 7, "a", "b"))
	require.NoError(t, repo.Delete(context.Background(), 7))

	assert.NoError(t, mock.ExpectationsWereMet())
}
