package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"healthfirst/config"
	"healthfirst/internal/domain"
	"healthfirst/internal/repository"
	"healthfirst/pkg/auth"
	"healthfirst/pkg/validator"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID int64           `json:"user_id"`
	Role   domain.UserRole `json:"role"`
}

type AuthServiceImpl struct {
	authRepo  repository.AuthRepository
	userRepo  repository.UserRepository
	jwtConfig config.JWTConfig
	logger    *zap.Logger
}

func NewAuthService(authRepo repository.AuthRepository, userRepo repository.UserRepository, jwtConfig config.JWTConfig, logger *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		authRepo:  authRepo,
		userRepo:  userRepo,
		jwtConfig: jwtConfig,
		logger:    logger,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, dto domain.RegisterRequest) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	phone := validator.FormatPhone(dto.Phone)
	if !validator.ValidatePhone(phone) {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidPhone, dto.Phone)
	}
	if !validator.ValidateNamePart(dto.FirstName) || !validator.ValidateNamePart(dto.LastName) {
		return 0, domain.ErrInvalidName
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("lookup user by email", zap.Error(err))
		return 0, fmt.Errorf("register user: %w", err)
	}
	if existing != nil {
		return 0, fmt.Errorf("%w: email %s", domain.ErrUserExists, email)
	}

	existing, err = s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		s.logger.Error("lookup user by phone", zap.Error(err))
		return 0, fmt.Errorf("register user: %w", err)
	}
	if existing != nil {
		return 0, fmt.Errorf("%w: phone %s", domain.ErrUserExists, phone)
	}

	hash, err := auth.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("hash password", zap.Error(err))
		return 0, fmt.Errorf("register user: %w", err)
	}

	userID, err := s.userRepo.Create(ctx, domain.CreateUserDTO{
		FirstName:    validator.FormatName(dto.FirstName),
		LastName:     validator.FormatName(dto.LastName),
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         dto.Role,
		Specialty:    dto.Specialty,
	})
	if err != nil {
		s.logger.Error("create user", zap.Error(err))
		return 0, fmt.Errorf("register user: %w", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", userID), zap.String("role", string(dto.Role)))
	return userID, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.Tokens, error) {
	user, err := s.findByLogin(ctx, dto.Login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logger.Debug("login for unknown user", zap.String("login", dto.Login))
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(dto.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("verify password", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if auth.NeedsRehash(user.PasswordHash, auth.DefaultParams) {
		s.rehash(ctx, user.ID, dto.Password)
	}

	return s.openSession(ctx, user, userAgent, ip)
}

// rehash upgrades a stored hash to the current argon2 settings. Failure only
// costs the upgrade, the login itself goes ahead.
func (s *AuthServiceImpl) rehash(ctx context.Context, userID int64, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.userRepo.UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		s.logger.Warn("password rehash failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (s *AuthServiceImpl) findByLogin(ctx context.Context, login string) (*domain.User, error) {
	if strings.Contains(login, "@") {
		user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(login)))
		if err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
		return user, nil
	}

	user, err := s.userRepo.GetByPhone(ctx, validator.FormatPhone(login))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return user, nil
}

func (s *AuthServiceImpl) RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error) {
	session, err := s.authRepo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Error("get session", zap.Error(err))
		return nil, fmt.Errorf("refresh tokens: %w", err)
	}
	if session == nil {
		return nil, domain.ErrInvalidToken
	}

	if session.ExpiresAt.Before(time.Now()) {
		if err := s.authRepo.DeleteSession(ctx, session.ID); err != nil {
			s.logger.Warn("delete expired session", zap.String("session_id", session.ID), zap.Error(err))
		}
		return nil, domain.ErrSessionExpired
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh tokens: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if err := s.authRepo.DeleteSession(ctx, session.ID); err != nil {
		s.logger.Warn("delete previous session", zap.String("session_id", session.ID), zap.Error(err))
	}

	return s.openSession(ctx, user, userAgent, ip)
}

func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.authRepo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if session == nil {
		s.logger.Debug("logout with unknown refresh token")
		return nil
	}

	if err := s.authRepo.DeleteSession(ctx, session.ID); err != nil {
		s.logger.Error("delete session", zap.String("session_id", session.ID), zap.Error(err))
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthServiceImpl) ParseToken(_ context.Context, tokenString string) (int64, domain.UserRole, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.SigningKey), nil
	})
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return 0, "", domain.ErrInvalidToken
	}

	return claims.UserID, claims.Role, nil
}

func (s *AuthServiceImpl) openSession(ctx context.Context, user *domain.User, userAgent, ip string) (*domain.Tokens, error) {
	tokens, err := s.generateTokens(user.ID, user.Role)
	if err != nil {
		s.logger.Error("generate tokens", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	now := time.Now()
	if pruned, err := s.authRepo.DeleteExpiredSessions(ctx, user.ID, now); err != nil {
		s.logger.Warn("prune expired sessions", zap.Int64("user_id", user.ID), zap.Error(err))
	} else if pruned > 0 {
		s.logger.Debug("expired sessions pruned", zap.Int64("user_id", user.ID), zap.Int64("count", pruned))
	}

	err = s.authRepo.CreateSession(ctx, domain.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		RefreshToken: tokens.RefreshToken,
		UserAgent:    userAgent,
		IP:           ip,
		ExpiresAt:    now.Add(s.jwtConfig.RefreshTokenTTL),
		CreatedAt:    now,
	})
	if err != nil {
		s.logger.Error("save session", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("open session: %w", err)
	}

	return tokens, nil
}

func (s *AuthServiceImpl) generateTokens(userID int64, role domain.UserRole) (*domain.Tokens, error) {
	now := time.Now()

	accessToken, err := s.sign(tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	// The jti keeps refresh tokens unique when two logins land in the same second.
	refreshToken, err := s.sign(tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &domain.Tokens{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: now.Add(s.jwtConfig.AccessTokenTTL),
	}, nil
}

func (s *AuthServiceImpl) sign(claims tokenClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtConfig.SigningKey))
}
