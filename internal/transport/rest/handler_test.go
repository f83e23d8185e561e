package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healthfirst/config"
	"healthfirst/internal/domain"
	"healthfirst/internal/metrics"
	"healthfirst/internal/notify"
	"healthfirst/internal/service"
)

type stubAuth struct {
	service.AuthService
}

func (stubAuth) ParseToken(_ context.Context, token string) (int64, domain.UserRole, error) {
	switch token {
	case "provider":
		return 42, domain.UserRoleProvider, nil
	case "patient":
		return 9, domain.UserRolePatient, nil
	}
	return 0, "", domain.ErrInvalidToken
}

func (stubAuth) Login(_ context.Context, dto domain.LoginRequest, _, _ string) (*domain.Tokens, error) {
	if dto.Password != "correct horse" {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.Tokens{AccessToken: "provider", RefreshToken: "refresh"}, nil
}

type stubUsers struct{}

func (stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if id != 42 {
		return nil, domain.ErrUserNotFound
	}
	return &domain.User{ID: 42, FirstName: "Ada", Role: domain.UserRoleProvider}, nil
}

func (stubUsers) Update(context.Context, int64, domain.UpdateUserDTO) error {
	return errors.New("not implemented")
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	registry := prometheus.NewRegistry()
	m := metrics.NewAvailabilityMetrics(registry)
	now := func() time.Time { return time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC) }

	sessions, err := service.NewSessionManager(8, 8, nil, now, m, logger)
	require.NoError(t, err)

	services := &service.Services{
		Auth: stubAuth{},
		User: stubUsers{},
		Availability: service.NewAvailabilityService(service.AvailabilityDeps{
			Sessions: sessions,
			Notifier: notify.NewDispatcher(notify.NewMemoryFeed(10), logger),
			Metrics:  m,
			Logger:   logger,
			Horizon:  90 * 24 * time.Hour,
			Now:      now,
		}),
	}

	router := gin.New()
	NewHandler(services, logger, &config.Config{}, nil, registry).InitRoutes(router)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var body struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "success", body.Status)
	require.NoError(t, json.Unmarshal(body.Data, dst))
}

func TestAvailabilityRequiresProvider(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/v1/availability/calendar", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/availability/calendar", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/availability/calendar", "patient", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetCalendar(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/v1/availability/calendar?view=day&date=2024-01-16", "provider", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var grid domain.Grid
	decodeData(t, w, &grid)
	assert.Equal(t, "Tuesday, January 16, 2024", grid.Title)
	assert.Len(t, grid.Cells, 40)

	w = do(t, router, http.MethodGet, "/api/v1/availability/calendar?view=year", "provider", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/availability/calendar/navigate", "provider", domain.NavigateDTO{Direction: domain.DirectionNext})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &grid)
	assert.Equal(t, "2024-01-17", grid.Date)
}

func TestSelectCellStatusCodes(t *testing.T) {
	router := newTestRouter(t)
	cell := domain.SelectCellDTO{Date: "2024-01-16", Time: "09:00"}

	w := do(t, router, http.MethodPost, "/api/v1/availability/cells/select", "provider", cell)
	require.Equal(t, http.StatusCreated, w.Code)

	var result domain.SelectCellResult
	decodeData(t, w, &result)
	assert.True(t, result.Created)
	assert.Equal(t, "2024-01-16-09:00", result.Slot.ID)

	w = do(t, router, http.MethodPost, "/api/v1/availability/cells/select", "provider", cell)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &result)
	assert.False(t, result.Created)
}

func TestSlotErrorMapping(t *testing.T) {
	router := newTestRouter(t)
	dto := domain.CreateSlotDTO{Date: "2024-01-16", Time: "09:00"}

	w := do(t, router, http.MethodPost, "/api/v1/availability/slots", "provider", dto)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/availability/slots", "provider", dto)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/availability/slots", "provider", map[string]string{"date": "2024-01-16"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/availability/slots/bulk", "provider", domain.BulkActionDTO{Action: domain.BulkActionBlock})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrEmptySelection.Error())

	status := domain.SlotStatusBooked
	w = do(t, router, http.MethodPut, "/api/v1/availability/slots/2024-01-16-12:00", "provider", domain.UpdateSlotDTO{Status: &status})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodDelete, "/api/v1/availability/slots/2024-01-16-12:00", "provider", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var removed map[string]int
	decodeData(t, w, &removed)
	assert.Equal(t, 0, removed["removed"])

	w = do(t, router, http.MethodPost, "/api/v1/availability/export", "provider", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBulkBlockAndNotifications(t *testing.T) {
	router := newTestRouter(t)

	for _, mark := range []string{"09:00", "09:15"} {
		w := do(t, router, http.MethodPost, "/api/v1/availability/slots", "provider", domain.CreateSlotDTO{Date: "2024-01-16", Time: mark})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := do(t, router, http.MethodPost, "/api/v1/availability/slots/bulk", "provider", domain.BulkActionDTO{
		Action: domain.BulkActionBlock,
		IDs:    []string{"2024-01-16-09:00", "2024-01-16-09:15"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var result domain.BulkResult
	decodeData(t, w, &result)
	assert.Equal(t, 2, result.Affected)

	w = do(t, router, http.MethodGet, "/api/v1/availability/slots?status=blocked", "provider", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var slots []domain.Slot
	decodeData(t, w, &slots)
	assert.Len(t, slots, 2)

	w = do(t, router, http.MethodGet, "/api/v1/availability/notifications?limit=1", "provider", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notes []domain.Notification
	decodeData(t, w, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, "Slots Blocked", notes[0].Title)
}

func TestLoginAndCurrentUser(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/auth/login", "", domain.LoginRequest{Login: "ada@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/auth/login", "", domain.LoginRequest{Login: "ada@example.com", Password: "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)
	var tokens domain.Tokens
	decodeData(t, w, &tokens)

	w = do(t, router, http.MethodGet, "/api/v1/users/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var user domain.User
	decodeData(t, w, &user)
	assert.Equal(t, "Ada", user.FirstName)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	do(t, router, http.MethodPost, "/api/v1/availability/cells/select", "provider", domain.SelectCellDTO{Date: "2024-01-16", Time: "09:00"})

	w := do(t, router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `healthfirst_availability_slot_mutations_total{operation="quick_add",result="ok"} 1`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrTemplateNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrUserExists))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrInvalidDuration))
	assert.Equal(t, http.StatusUnauthorized, statusFor(domain.ErrSessionExpired))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "trace-123", w.Header().Get(requestIDHeader))

	w = do(t, router, http.MethodGet, "/api/v1/users/me", "provider", nil)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}
