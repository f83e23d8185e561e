package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"healthfirst/internal/domain"
)

const (
	authorizationHeader = "Authorization"
	requestIDHeader     = "X-Request-ID"
	userIDCtx           = "user_id"
	userRoleCtx         = "user_role"
	requestIDCtx        = "request_id"
)

// requestIDMiddleware keeps an incoming X-Request-ID or mints one, so log
// lines of one request can be joined up.
func (h *Handler) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDCtx, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (h *Handler) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "/metrics" {
			return
		}
		if route == "" {
			route = "unmatched"
		}

		status := c.Writer.Status()
		logger := h.logger.With(
			zap.String("request_id", c.GetString(requestIDCtx)),
			zap.String("route", route),
			zap.String("method", c.Request.Method),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
		if id, err := getUserID(c); err == nil {
			logger = logger.With(zap.Int64("user_id", id))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("server error")
		case status >= http.StatusBadRequest:
			logger.Warn("client error")
		default:
			logger.Debug("request processed")
		}
	}
}

// errorMiddleware turns a panic into a 500 response and logs handler errors
// attached with c.Error.
func (h *Handler) errorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic recovered",
					zap.String("request_id", c.GetString(requestIDCtx)),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				internalServerErrorResponse(c)
			}
		}()

		c.Next()

		for _, err := range c.Errors {
			h.logger.Error("request error", zap.String("request_id", c.GetString(requestIDCtx)), zap.Error(err))
		}
	}
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Content-Length, Accept-Encoding, Origin, Accept, User-Agent, Cache-Control, "+requestIDHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Type, "+requestIDHeader)
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		origin := c.Request.Header.Get("Origin")
		if origin != "" && c.Request.Header.Get(authorizationHeader) != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authorizationHeader)
		if header == "" {
			errorResponse(c, http.StatusUnauthorized, "empty authorization header")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			errorResponse(c, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		userID, userRole, err := h.services.Auth.ParseToken(c.Request.Context(), token)
		if err != nil {
			errorResponse(c, http.StatusUnauthorized, domain.ErrInvalidToken.Error())
			return
		}

		c.Set(userIDCtx, userID)
		c.Set(userRoleCtx, userRole)

		c.Next()
	}
}

// providerMiddleware admits providers, whose user id doubles as the id of
// their availability session. Admins pass as well.
func (h *Handler) providerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := getUserRole(c)
		if err != nil {
			unauthorizedResponse(c)
			return
		}

		if role != domain.UserRoleProvider && role != domain.UserRoleAdmin {
			forbiddenResponse(c, "provider role required")
			return
		}

		c.Next()
	}
}

func getUserID(c *gin.Context) (int64, error) {
	userID, exists := c.Get(userIDCtx)
	if !exists {
		return 0, errors.New("user is not authorized")
	}

	id, ok := userID.(int64)
	if !ok {
		return 0, errors.New("malformed user id")
	}

	return id, nil
}

func getUserRole(c *gin.Context) (domain.UserRole, error) {
	userRole, exists := c.Get(userRoleCtx)
	if !exists {
		return "", errors.New("user is not authorized")
	}

	role, ok := userRole.(domain.UserRole)
	if !ok {
		return "", errors.New("malformed user role")
	}

	return role, nil
}
