package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthfirst/internal/domain"
)

// @Summary Register
// @Description Registers a patient or provider account
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body domain.RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{} "ID of the new user"
// @Failure 400 {object} errorResponseBody "Validation error"
// @Failure 409 {object} errorResponseBody "Email or phone already registered"
// @Failure 500 {object} errorResponseBody "Internal server error"
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input domain.RegisterRequest
	if !h.bind(c, &input) {
		return
	}

	id, err := h.services.Auth.Register(c.Request.Context(), input)
	if err != nil {
		h.serviceErrorResponse(c, err, "register")
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Log in
// @Description Authenticates by email or phone and returns an access and refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.Tokens
// @Failure 400 {object} errorResponseBody "Validation error"
// @Failure 401 {object} errorResponseBody "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input domain.LoginRequest
	if !h.bind(c, &input) {
		return
	}

	tokens, err := h.services.Auth.Login(c.Request.Context(), input, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.serviceErrorResponse(c, err, "login")
		return
	}

	successResponse(c, http.StatusOK, tokens)
}

// @Summary Refresh tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body domain.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} domain.Tokens
// @Failure 401 {object} errorResponseBody "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *Handler) refreshTokens(c *gin.Context) {
	var input domain.RefreshTokenRequest
	if !h.bind(c, &input) {
		return
	}

	tokens, err := h.services.Auth.RefreshTokens(c.Request.Context(), input.RefreshToken, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.serviceErrorResponse(c, err, "refresh tokens")
		return
	}

	successResponse(c, http.StatusOK, tokens)
}

// @Summary Log out
// @Tags Auth
// @Accept json
// @Param input body domain.RefreshTokenRequest true "Refresh token"
// @Success 204
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	var input domain.RefreshTokenRequest
	if !h.bind(c, &input) {
		return
	}

	if err := h.services.Auth.Logout(c.Request.Context(), input.RefreshToken); err != nil {
		h.serviceErrorResponse(c, err, "logout")
		return
	}

	noContentResponse(c)
}
