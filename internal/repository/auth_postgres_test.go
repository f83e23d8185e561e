package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthfirst/internal/domain"
)

var sessionColumns = []string{"id", "user_id", "refresh_token", "user_agent", "ip", "expires_at", "created_at"}

func TestAuthRepoCreateSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	session := domain.Session{ID: "s-1", UserID: 7, RefreshToken: "rt", UserAgent: "curl", IP: "10.0.0.1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs("s-1", int64(7), "rt", "curl", "10.0.0.1", now.Add(time.Hour), now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewAuthRepository(mock).CreateSession(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthRepoGetSessionByRefreshToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, user_id, refresh_token`).
		WithArgs("rt").
		WillReturnRows(pgxmock.NewRows(sessionColumns).AddRow("s-1", int64(7), "rt", "curl", "10.0.0.1", now.Add(time.Hour), now))
	mock.ExpectQuery(`SELECT id, user_id, refresh_token`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(sessionColumns))

	repo := NewAuthRepository(mock)

	session, err := repo.GetSessionByRefreshToken(context.Background(), "rt")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, int64(7), session.UserID)
	assert.Equal(t, now.Add(time.Hour), session.ExpiresAt)

	session, err = repo.GetSessionByRefreshToken(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, session)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthRepoDeleteExpiredSessions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM sessions WHERE user_id = \$1 AND expires_at < \$2`).
		WithArgs(int64(7), now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := NewAuthRepository(mock).DeleteExpiredSessions(context.Background(), 7, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
