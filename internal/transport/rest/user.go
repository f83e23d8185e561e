package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthfirst/internal/domain"
)

// @Summary Current user
// @Tags Users
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} errorResponseBody
// @Failure 404 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /users/me [get]
func (h *Handler) getCurrentUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	user, err := h.services.User.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.serviceErrorResponse(c, err, "get current user")
		return
	}

	successResponse(c, http.StatusOK, user)
}

// @Summary Update current user
// @Tags Users
// @Accept json
// @Produce json
// @Param input body domain.UpdateUserDTO true "Changed fields"
// @Success 200 {object} domain.User
// @Failure 400 {object} errorResponseBody
// @Failure 409 {object} errorResponseBody "Phone already registered"
// @Security ApiKeyAuth
// @Router /users/me [put]
func (h *Handler) updateCurrentUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.UpdateUserDTO
	if !h.bind(c, &input) {
		return
	}

	if err := h.services.User.Update(c.Request.Context(), userID, input); err != nil {
		h.serviceErrorResponse(c, err, "update current user")
		return
	}

	user, err := h.services.User.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.serviceErrorResponse(c, err, "get current user")
		return
	}

	successResponse(c, http.StatusOK, user)
}
