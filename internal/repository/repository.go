package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"healthfirst/internal/domain"
)

// DB is the subset of *pgxpool.Pool the repositories use, so tests can hand
// in a pgxmock pool instead.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repositories struct {
	User UserRepository
	Auth AuthRepository
	Slot SlotRepository
}

func NewRepositories(db DB) *Repositories {
	return &Repositories{
		User: NewUserRepository(db),
		Auth: NewAuthRepository(db),
		Slot: NewSlotRepository(db),
	}
}

type UserRepository interface {
	Create(ctx context.Context, user domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUserID(ctx context.Context, userID int64) error
	DeleteExpiredSessions(ctx context.Context, userID int64, now time.Time) (int64, error)
}

// SlotRepository persists provider slots so an in-memory SlotStore can be
// rebuilt after its session is evicted or the process restarts.
type SlotRepository interface {
	ListByProvider(ctx context.Context, providerID int64) ([]domain.Slot, error)
	Save(ctx context.Context, providerID int64, slots ...domain.Slot) error
	Delete(ctx context.Context, providerID int64, ids ...string) error
}
