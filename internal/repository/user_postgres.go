package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"healthfirst/internal/domain"
)

const userColumns = `id, first_name, last_name, email, phone, password_hash, role, specialty, is_active, created_at, updated_at`

type UserRepo struct {
	db DB
}

func NewUserRepository(db DB) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

func (r *UserRepo) Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error) {
	var id int64
	query := `
		INSERT INTO users (first_name, last_name, email, phone, password_hash, role, specialty, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		dto.FirstName,
		dto.LastName,
		dto.Email,
		dto.Phone,
		dto.PasswordHash,
		string(dto.Role),
		dto.Specialty,
		true,
		time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	return id, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email = $1", strings.ToLower(email))
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.getOne(ctx, "phone = $1", phone)
}

// getOne returns nil, nil when no row matches.
func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	var (
		user domain.User
		role string
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&role,
		&user.Specialty,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.Role = domain.UserRole(role)

	return &user, nil
}

func (r *UserRepo) Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error {
	setValues := []string{}
	args := []any{id}
	argID := 2

	add := func(column string, value any) {
		setValues = append(setValues, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}

	if dto.FirstName != nil {
		add("first_name", *dto.FirstName)
	}
	if dto.LastName != nil {
		add("last_name", *dto.LastName)
	}
	if dto.Phone != nil {
		add("phone", *dto.Phone)
	}
	if dto.Specialty != nil {
		add("specialty", *dto.Specialty)
	}

	if len(setValues) == 0 {
		return nil
	}
	add("updated_at", time.Now())

	query := "UPDATE users SET " + strings.Join(setValues, ", ") + " WHERE id = $1"
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, hash, time.Now()); err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return nil
}
