package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthfirst/internal/domain"
)

const defaultNotificationLimit = 20

func (h *Handler) providerID(c *gin.Context) (int64, bool) {
	id, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return 0, false
	}
	return id, true
}

func (h *Handler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Debug("invalid request body", zap.Error(err))
		badRequestResponse(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// @Summary Calendar grid
// @Description Returns the month, week or day grid. Omitted parameters keep the provider's current position.
// @Tags Availability
// @Produce json
// @Param view query string false "month, week or day"
// @Param date query string false "Reference date, YYYY-MM-DD"
// @Success 200 {object} domain.Grid
// @Failure 400 {object} errorResponseBody
// @Failure 401 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /availability/calendar [get]
func (h *Handler) getCalendar(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	grid, err := h.services.Availability.GetCalendar(c.Request.Context(), providerID, domain.ViewMode(c.Query("view")), c.Query("date"))
	if err != nil {
		h.serviceErrorResponse(c, err, "get calendar")
		return
	}

	successResponse(c, http.StatusOK, grid)
}

// @Summary Change calendar view
// @Tags Availability
// @Accept json
// @Produce json
// @Param input body domain.SetViewDTO true "View and optional reference date"
// @Success 200 {object} domain.Grid
// @Failure 400 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /availability/calendar/view [put]
func (h *Handler) setCalendarView(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	var input domain.SetViewDTO
	if !h.bind(c, &input) {
		return
	}

	grid, err := h.services.Availability.SetView(c.Request.Context(), providerID, input)
	if err != nil {
		h.serviceErrorResponse(c, err, "set calendar view")
		return
	}

	successResponse(c, http.StatusOK, grid)
}

// @Summary Navigate calendar
// @Description Moves one month, week or day back or forward, or jumps to today.
// @Tags Availability
// @Accept json
// @Produce json
// @Param input body domain.NavigateDTO true "prev, next or today"
// @Success 200 {object} domain.Grid
// @Failure 400 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /availability/calendar/navigate [post]
func (h *Handler) navigateCalendar(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	var input domain.NavigateDTO
	if !h.bind(c, &input) {
		return
	}

	grid, err := h.services.Availability.Navigate(c.Request.Context(), providerID, input.Direction)
	if err != nil {
		h.serviceErrorResponse(c, err, "navigate calendar")
		return
	}

	successResponse(c, http.StatusOK, grid)
}

// @Summary Select a grid cell
// @Description Returns the slot at the cell, or quick-adds an available 30 minute slot when the cell is empty.
// @Tags Availability
// @Accept json
// @Produce json
// @Param input body domain.SelectCellDTO true "Cell date and time"
// @Success 200 {object} domain.SelectCellResult "Existing slot"
// @Success 201 {object} domain.SelectCellResult "Created slot"
// @Failure 400 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /availability/cells/select [post]
func (h *Handler) selectCell(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	var input domain.SelectCellDTO
	if !h.bind(c, &input) {
		return
	}

	result, err := h.services.Availability.SelectCell(c.Request.Context(), providerID, input)
	if err != nil {
		h.serviceErrorResponse(c, err, "select cell")
		return
	}

	if result.Created {
		createdResponse(c, result)
		return
	}
	successResponse(c, http.StatusOK, result)
}

// @Summary List slots
// @Tags Availability
// @Produce json
// @Param start_date query string false "First date, YYYY-MM-DD"
// @Param end_date query string false "Last date, YYYY-MM-DD"
// @Param status query string false "Slot status"
// @Param appointment_type query string false "Appointment type"
// @Success 200 {array} domain.Slot
// @Failure 400 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /availability/slots [get]
func (h *Handler) listSlots(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	filter := domain.SlotFilter{
		StartDate:       c.Query("start_date"),
		EndDate:         c.Query("end_date"),
		AppointmentType: c.Query("appointment_type"),
	}
	if status := c.Query("status"); status != "" {
		s := domain.SlotStatus(status)
		filter.Status = &s
	}

	slots, err := h.services.Availability.ListSlots(c.Request.Context(), providerID, filter)
	if err != nil {
		h.serviceErrorResponse(c, err, "list slots")
		return
	}

	successResponse(c, http.StatusOK, slots)
}

// @Summary Get slot
// @Tags Availability
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} domain.Slot
// @Failure 404 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /availability/slots/{id} [get]
func (h *Handler) getSlot(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	slot, err := h.services.Availability.GetSlot(c.Request.Context(), providerID, c.Param("id"))
	if err != nil {
		h.serviceErrorResponse(c, err, "get slot")
		return
	}

	successResponse(c, http.StatusOK, slot)
}

// @Summary Add availability
// @Description Creates one slot, one slot per duration step of a time range, or a recurring series.
// @Tags Availability
// @Accept json
// @Produce json
// @Param input body domain.CreateSlotDTO true "Add form"
// @Success 201 {object} domain.CreateSlotsResult
// @Failure 400 {object} errorResponseBody
// @Failure 409 {object} errorResponseBody "Slot already exists"
// @Security ApiKeyAuth
// @Router /availability/slots [post]
func (h *Handler) createSlots(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	var input domain.CreateSlotDTO
	if !h.bind(c, &input) {
		return
	}

	result, err := h.services.Availability.CreateSlots(c.Request.Context(), providerID, input)
	if err != nil {
		h.serviceErrorResponse(c, err, "create slots")
		return
	}

	createdResponse(c, result)
}

// @Summary Edit slot
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param input body domain.UpdateSlotDTO true "Changed fields"
// @Success 200 {object} domain.Slot
// @Failure 400 {object} errorResponseBody
// @Failure 404 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /availability/slots/{id} [put]
func (h *Handler) updateSlot(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	var input domain.UpdateSlotDTO
	if !h.bind(c, &input) {
		return
	}

	slot, err := h.services.Availability.UpdateSlot(c.Request.Context(), providerID, c.Param("id"), input)
	if err != nil {
		h.serviceErrorResponse(c, err, "update slot")
		return
	}

	successResponse(c, http.StatusOK, slot)
}

// @Summary Delete slot
// @Description Deleting a missing slot succeeds and reports zero removed.
// @Tags Availability
// @Produce json
// @Param id path string true "Slot ID"
// @Param delete_recurring query bool false "Delete the whole recurring series"
// @Success 200 {object} map[string]int
// @Security ApiKeyAuth
// @Router /availability/slots/{id} [delete]
func (h *Handler) deleteSlot(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	deleteRecurring, _ := strconv.ParseBool(c.DefaultQuery("delete_recurring", "false"))

	removed, err := h.services.Availability.DeleteSlot(c.Request.Context(), providerID, c.Param("id"), deleteRecurring)
	if err != nil {
		h.serviceErrorResponse(c, err, "delete slot")
		return
	}

	successResponse(c, http.StatusOK, map[string]int{"removed": removed})
}

// @Summary Bulk action
// @Tags Availability
// @Accept json
// @Produce json
// @Param input body domain.BulkActionDTO true "delete, block or unblock with the selected ids"
// @Success 200 {object} domain.BulkResult
// @Failure 400 {object} errorResponseBody "No slots selected"
// @Security ApiKeyAuth
// @Router /availability/slots/bulk [post]
func (h *Handler) bulkSlotAction(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	var input domain.BulkActionDTO
	if !h.bind(c, &input) {
		return
	}

	result, err := h.services.Availability.BulkAction(c.Request.Context(), providerID, input)
	if err != nil {
		h.serviceErrorResponse(c, err, "bulk slot action")
		return
	}

	successResponse(c, http.StatusOK, result)
}

// @Summary Week summary
// @Tags Availability
// @Produce json
// @Param date query string false "Any date of the week, defaults to today"
// @Success 200 {object} domain.WeekSummary
// @Failure 400 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /availability/stats [get]
func (h *Handler) getWeekSummary(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	summary, err := h.services.Availability.WeekSummary(c.Request.Context(), providerID, c.Query("date"))
	if err != nil {
		h.serviceErrorResponse(c, err, "week summary")
		return
	}

	successResponse(c, http.StatusOK, summary)
}

// @Summary Copy week
// @Tags Availability
// @Accept json
// @Produce json
// @Param input body domain.CopyWeekDTO true "Any date of the source and target weeks"
// @Success 201 {object} domain.CreateSlotsResult
// @Failure 400 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /availability/copy-week [post]
func (h *Handler) copyWeek(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	var input domain.CopyWeekDTO
	if !h.bind(c, &input) {
		return
	}

	result, err := h.services.Availability.CopyWeek(c.Request.Context(), providerID, input)
	if err != nil {
		h.serviceErrorResponse(c, err, "copy week")
		return
	}

	createdResponse(c, result)
}

// @Summary Export schedule
// @Description Uploads a CSV of every slot and returns a temporary download link.
// @Tags Availability
// @Produce json
// @Success 200 {object} domain.ExportResult
// @Failure 503 {object} errorResponseBody "File storage is not configured"
// @Security ApiKeyAuth
// @Router /availability/export [post]
func (h *Handler) exportSchedule(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	result, err := h.services.Availability.Export(c.Request.Context(), providerID)
	if err != nil {
		h.serviceErrorResponse(c, err, "export schedule")
		return
	}

	successResponse(c, http.StatusOK, result)
}

// @Summary List templates
// @Tags Availability
// @Produce json
// @Success 200 {array} domain.AvailabilityTemplate
// @Security ApiKeyAuth
// @Router /availability/templates [get]
func (h *Handler) listTemplates(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	templates, err := h.services.Availability.ListTemplates(c.Request.Context(), providerID)
	if err != nil {
		h.serviceErrorResponse(c, err, "list templates")
		return
	}

	successResponse(c, http.StatusOK, templates)
}

// @Summary Create template
// @Tags Availability
// @Accept json
// @Produce json
// @Param input body domain.CreateTemplateDTO true "Template"
// @Success 201 {object} domain.AvailabilityTemplate
// @Failure 400 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /availability/templates [post]
func (h *Handler) createTemplate(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	var input domain.CreateTemplateDTO
	if !h.bind(c, &input) {
		return
	}

	template, err := h.services.Availability.CreateTemplate(c.Request.Context(), providerID, input)
	if err != nil {
		h.serviceErrorResponse(c, err, "create template")
		return
	}

	createdResponse(c, template)
}

// @Summary Delete template
// @Tags Availability
// @Param id path string true "Template ID"
// @Success 204
// @Failure 404 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /availability/templates/{id} [delete]
func (h *Handler) deleteTemplate(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	if err := h.services.Availability.DeleteTemplate(c.Request.Context(), providerID, c.Param("id")); err != nil {
		h.serviceErrorResponse(c, err, "delete template")
		return
	}

	noContentResponse(c)
}

// @Summary Apply template
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param input body domain.ApplyTemplateDTO true "Date range"
// @Success 201 {object} domain.CreateSlotsResult
// @Failure 404 {object} errorResponseBody
// @Security ApiKeyAuth
// @Router /availability/templates/{id}/apply [post]
func (h *Handler) applyTemplate(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	var input domain.ApplyTemplateDTO
	if !h.bind(c, &input) {
		return
	}

	result, err := h.services.Availability.ApplyTemplate(c.Request.Context(), providerID, c.Param("id"), input)
	if err != nil {
		h.serviceErrorResponse(c, err, "apply template")
		return
	}

	createdResponse(c, result)
}

// @Summary Recent notifications
// @Tags Availability
// @Produce json
// @Param limit query int false "Maximum number of notifications" default(20)
// @Success 200 {array} domain.Notification
// @Security ApiKeyAuth
// @Router /availability/notifications [get]
func (h *Handler) getNotifications(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultNotificationLimit)))
	if err != nil || limit <= 0 {
		limit = defaultNotificationLimit
	}

	notifications, err := h.services.Availability.Notifications(c.Request.Context(), providerID, limit)
	if err != nil {
		h.serviceErrorResponse(c, err, "recent notifications")
		return
	}

	successResponse(c, http.StatusOK, notifications)
}
