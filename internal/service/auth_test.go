package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healthfirst/config"
	"healthfirst/internal/domain"
	"healthfirst/pkg/auth"
)

type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[int64]*domain.User)}
}

func (r *memoryUsers) Create(_ context.Context, dto domain.CreateUserDTO) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.users[r.nextID] = &domain.User{
		ID:           r.nextID,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		Phone:        dto.Phone,
		PasswordHash: dto.PasswordHash,
		Role:         dto.Role,
		IsActive:     true,
	}
	return r.nextID, nil
}

func (r *memoryUsers) find(match func(*domain.User) bool) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			copied := *u
			return &copied
		}
	}
	return nil
}

func (r *memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id }), nil
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email }), nil
}

func (r *memoryUsers) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Phone == phone }), nil
}

func (r *memoryUsers) Update(_ context.Context, id int64, dto domain.UpdateUserDTO) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	if dto.FirstName != nil {
		u.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		u.LastName = *dto.LastName
	}
	if dto.Phone != nil {
		u.Phone = *dto.Phone
	}
	return nil
}

func (r *memoryUsers) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id].PasswordHash = hash
	return nil
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func (r *memorySessions) CreateSession(_ context.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *memorySessions) GetSessionByRefreshToken(_ context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.RefreshToken == token {
			copied := s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memorySessions) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memorySessions) DeleteSessionsByUserID(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *memorySessions) DeleteExpiredSessions(_ context.Context, userID int64, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.UserID == userID && s.ExpiresAt.Before(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func newAuthFixture() (*AuthServiceImpl, *memoryUsers, *memorySessions) {
	users := newMemoryUsers()
	sessions := &memorySessions{sessions: make(map[string]domain.Session)}
	svc := NewAuthService(sessions, users, config.JWTConfig{
		SigningKey:      "test-key",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}, zap.NewNop())
	return svc, users, sessions
}

var registration = domain.RegisterRequest{
	FirstName: "ada",
	LastName:  "lovelace",
	Email:     "Ada@Example.com",
	Phone:     "(555) 123-4567",
	Password:  "analytical-engine",
	Role:      domain.UserRoleProvider,
}

func TestRegisterNormalizesAndRejectsDuplicates(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	id, err := svc.Register(ctx, registration)
	require.NoError(t, err)

	user, _ := users.GetByID(ctx, id)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "+15551234567", user.Phone)
	assert.NotEqual(t, registration.Password, user.PasswordHash)

	_, err = svc.Register(ctx, registration)
	assert.ErrorIs(t, err, domain.ErrUserExists)

	bad := registration
	bad.Email = "other@example.com"
	bad.Phone = "12"
	_, err = svc.Register(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)
}

func TestLoginByEmailOrPhone(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	id, err := svc.Register(ctx, registration)
	require.NoError(t, err)

	for _, login := range []string{"ADA@example.com", "555-123-4567"} {
		tokens, err := svc.Login(ctx, domain.LoginRequest{Login: login, Password: registration.Password}, "test", "127.0.0.1")
		require.NoError(t, err, login)
		assert.WithinDuration(t, time.Now().Add(time.Minute), tokens.AccessExpiresAt, 5*time.Second)

		userID, role, err := svc.ParseToken(ctx, tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, id, userID)
		assert.Equal(t, domain.UserRoleProvider, role)
	}

	_, err = svc.Login(ctx, domain.LoginRequest{Login: "ada@example.com", Password: "nope"}, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Login: "nobody@example.com", Password: "nope"}, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	id, err := svc.Register(ctx, registration)
	require.NoError(t, err)
	users.users[id].IsActive = false

	_, err = svc.Login(ctx, domain.LoginRequest{Login: "ada@example.com", Password: registration.Password}, "", "")
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestLoginUpgradesOutdatedHash(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	id, err := svc.Register(ctx, registration)
	require.NoError(t, err)

	old, err := auth.HashWithParams(registration.Password, auth.Params{Memory: 1024, Time: 1, Threads: 1, KeyLen: 16, SaltLen: 8})
	require.NoError(t, err)
	users.users[id].PasswordHash = old

	_, err = svc.Login(ctx, domain.LoginRequest{Login: "ada@example.com", Password: registration.Password}, "", "")
	require.NoError(t, err)

	upgraded := users.users[id].PasswordHash
	assert.NotEqual(t, old, upgraded)
	assert.False(t, auth.NeedsRehash(upgraded, auth.DefaultParams))
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, registration)
	require.NoError(t, err)
	tokens, err := svc.Login(ctx, domain.LoginRequest{Login: "ada@example.com", Password: registration.Password}, "", "")
	require.NoError(t, err)

	rotated, err := svc.RefreshTokens(ctx, tokens.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)
	assert.Len(t, sessions.sessions, 1)

	_, err = svc.RefreshTokens(ctx, tokens.RefreshToken, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	assert.Empty(t, sessions.sessions)
	assert.NoError(t, svc.Logout(ctx, "unknown"))
}

func TestRefreshExpiredSession(t *testing.T) {
	svc, _, sessions := newAuthFixture()
	ctx := context.Background()

	sessions.sessions["old"] = domain.Session{ID: "old", UserID: 1, RefreshToken: "stale", ExpiresAt: time.Now().Add(-time.Minute)}

	_, err := svc.RefreshTokens(ctx, "stale", "", "")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Empty(t, sessions.sessions)
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	svc, _, _ := newAuthFixture()
	other := NewAuthService(nil, nil, config.JWTConfig{SigningKey: "other", AccessTokenTTL: time.Minute}, zap.NewNop())

	tokens, err := other.generateTokens(1, domain.UserRoleAdmin)
	require.NoError(t, err)

	_, _, err = svc.ParseToken(context.Background(), tokens.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestUserUpdate(t *testing.T) {
	authSvc, users, _ := newAuthFixture()
	svc := NewUserService(users, zap.NewNop())
	ctx := context.Background()

	first, err := authSvc.Register(ctx, registration)
	require.NoError(t, err)
	second := registration
	second.Email = "grace@example.com"
	second.Phone = "5559876543"
	_, err = authSvc.Register(ctx, second)
	require.NoError(t, err)

	taken := "555 987 6543"
	err = svc.Update(ctx, first, domain.UpdateUserDTO{Phone: &taken})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	short := "A"
	err = svc.Update(ctx, first, domain.UpdateUserDTO{FirstName: &short})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	fresh := "5550001111"
	require.NoError(t, svc.Update(ctx, first, domain.UpdateUserDTO{Phone: &fresh}))
	user, err := svc.GetByID(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "+15550001111", user.Phone)

	_, err = svc.GetByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
