package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"healthfirst/internal/domain"
	"healthfirst/internal/repository"
	"healthfirst/pkg/validator"
)

type UserServiceImpl struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("get user by id", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	return user, nil
}

func (s *UserServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if dto.Phone != nil {
		phone := validator.FormatPhone(*dto.Phone)
		if !validator.ValidatePhone(phone) {
			return fmt.Errorf("%w: %q", domain.ErrInvalidPhone, *dto.Phone)
		}
		existing, err := s.repo.GetByPhone(ctx, phone)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if existing != nil && existing.ID != id {
			return fmt.Errorf("%w: phone %s", domain.ErrUserExists, phone)
		}
		dto.Phone = &phone
	}

	for _, name := range []*string{dto.FirstName, dto.LastName} {
		if name != nil && !validator.ValidateNamePart(*name) {
			return domain.ErrInvalidName
		}
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("update user", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}
