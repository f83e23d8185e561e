package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"healthfirst/config"
	"healthfirst/internal/service"
	"healthfirst/internal/transport/websocket"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
	hub      *websocket.NotificationHub
	gatherer prometheus.Gatherer
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config, hub *websocket.NotificationHub, gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		config:   config,
		hub:      hub,
		gatherer: gatherer,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.requestIDMiddleware())

	router.Use(h.loggerMiddleware())

	router.Use(h.errorMiddleware())

	router.Use(h.corsMiddleware())

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.POST("/refresh", h.refreshTokens)
			auth.POST("/logout", h.logout)
		}

		users := api.Group("/users")
		users.Use(h.authMiddleware())
		{
			users.GET("/me", h.getCurrentUser)
			users.PUT("/me", h.updateCurrentUser)
		}

		h.initAvailabilityRoutes(api)
	}

	if h.hub != nil {
		router.GET("/ws/notifications", h.hub.HandleWebSocket(h.services.Auth))
	}

	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}

func (h *Handler) initAvailabilityRoutes(api *gin.RouterGroup) {
	availability := api.Group("/availability", h.authMiddleware(), h.providerMiddleware())
	{
		calendar := availability.Group("/calendar")
		{
			calendar.GET("", h.getCalendar)
			calendar.PUT("/view", h.setCalendarView)
			calendar.POST("/navigate", h.navigateCalendar)
		}

		availability.POST("/cells/select", h.selectCell)

		slots := availability.Group("/slots")
		{
			slots.GET("", h.listSlots)
			slots.POST("", h.createSlots)
			slots.POST("/bulk", h.bulkSlotAction)
			slots.GET("/:id", h.getSlot)
			slots.PUT("/:id", h.updateSlot)
			slots.DELETE("/:id", h.deleteSlot)
		}

		availability.GET("/stats", h.getWeekSummary)
		availability.POST("/copy-week", h.copyWeek)
		availability.POST("/export", h.exportSchedule)

		templates := availability.Group("/templates")
		{
			templates.GET("", h.listTemplates)
			templates.POST("", h.createTemplate)
			templates.DELETE("/:id", h.deleteTemplate)
			templates.POST("/:id/apply", h.applyTemplate)
		}

		availability.GET("/notifications", h.getNotifications)
	}
}
