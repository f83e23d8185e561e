package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"healthfirst/config"
	"healthfirst/internal/domain"
	"healthfirst/internal/metrics"
	"healthfirst/internal/repository"
	"healthfirst/internal/storage"
)

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
	Notifier    Publisher
	Metrics     *metrics.AvailabilityMetrics
	Now         func() time.Time
}

type Services struct {
	User         UserService
	Auth         AuthService
	Availability AvailabilityService
}

func NewServices(deps Deps) (*Services, error) {
	// Slots stay in memory unless the postgres storage mode asks for a
	// write-through table.
	var slotRepo repository.SlotRepository
	if deps.Config.Availability.Storage == config.StoragePostgres {
		slotRepo = deps.Repos.Slot
	}

	sessions, err := NewSessionManager(
		deps.Config.Availability.SessionCacheSize,
		deps.Config.Availability.GridCacheSize,
		slotRepo,
		deps.Now,
		deps.Metrics,
		deps.Logger,
	)
	if err != nil {
		return nil, err
	}

	return &Services{
		User: NewUserService(deps.Repos.User, deps.Logger),
		Auth: NewAuthService(deps.Repos.Auth, deps.Repos.User, deps.Config.JWT, deps.Logger),
		Availability: NewAvailabilityService(AvailabilityDeps{
			Sessions:   sessions,
			Repo:       slotRepo,
			Files:      deps.FileStorage,
			Notifier:   deps.Notifier,
			Metrics:    deps.Metrics,
			Logger:     deps.Logger,
			Horizon:    deps.Config.Availability.RecurrenceHorizon,
			PresignTTL: deps.Config.S3.PresignTTL,
			Now:        deps.Now,
		}),
	}, nil
}

type UserService interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error
}

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterRequest) (int64, error)
	Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseToken(ctx context.Context, token string) (int64, domain.UserRole, error)
}

type AvailabilityService interface {
	GetCalendar(ctx context.Context, providerID int64, view domain.ViewMode, date string) (domain.Grid, error)
	SetView(ctx context.Context, providerID int64, dto domain.SetViewDTO) (domain.Grid, error)
	Navigate(ctx context.Context, providerID int64, dir domain.Direction) (domain.Grid, error)
	SelectCell(ctx context.Context, providerID int64, dto domain.SelectCellDTO) (domain.SelectCellResult, error)

	ListSlots(ctx context.Context, providerID int64, filter domain.SlotFilter) ([]domain.Slot, error)
	GetSlot(ctx context.Context, providerID int64, id string) (domain.Slot, error)
	CreateSlots(ctx context.Context, providerID int64, dto domain.CreateSlotDTO) (domain.CreateSlotsResult, error)
	UpdateSlot(ctx context.Context, providerID int64, id string, dto domain.UpdateSlotDTO) (domain.Slot, error)
	DeleteSlot(ctx context.Context, providerID int64, id string, deleteRecurring bool) (int, error)
	BulkAction(ctx context.Context, providerID int64, dto domain.BulkActionDTO) (domain.BulkResult, error)

	WeekSummary(ctx context.Context, providerID int64, date string) (domain.WeekSummary, error)
	CopyWeek(ctx context.Context, providerID int64, dto domain.CopyWeekDTO) (domain.CreateSlotsResult, error)
	Export(ctx context.Context, providerID int64) (domain.ExportResult, error)

	CreateTemplate(ctx context.Context, providerID int64, dto domain.CreateTemplateDTO) (domain.AvailabilityTemplate, error)
	ListTemplates(ctx context.Context, providerID int64) ([]domain.AvailabilityTemplate, error)
	DeleteTemplate(ctx context.Context, providerID int64, id string) error
	ApplyTemplate(ctx context.Context, providerID int64, id string, dto domain.ApplyTemplateDTO) (domain.CreateSlotsResult, error)

	Notifications(ctx context.Context, providerID int64, limit int) ([]domain.Notification, error)
}
