package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/civicai/backend/internal/models"
	"github.com/civicai/backend/internal/service"
)

type Handler struct {
	Store         service.Store
	Lifecycle     *service.LifecycleService
	Notifications *service.NotificationService
	Coins         *service.CoinService
	Validator     *validator.Validate
	Logger        zerolog.Logger
	AdminKey      string
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Store unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type SubmitReportRequest struct {
	Address         string   `json:"address"`
	Description     string   `json:"description"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	ReporterName    string   `json:"reporter_name"`
	ReporterPhone   string   `json:"reporter_phone"`
	ReporterID      string   `json:"reporter_id"`
	Photo           string   `json:"photo"`
	Voice           string   `json:"voice"`
	VoiceTranscript string   `json:"voice_transcript"`
}

// @Summary Submit a civic issue report
// @Description Classifies, routes and scores the report, then creates the issue in Pending.
// @Tags reports
// @Accept json
// @Produce json
// @Success 201 {object} models.Issue
// @Failure 400 {object} map[string]any
// @Router /api/reports [post]
func (h *Handler) SubmitReport(c *gin.Context) {
	var req SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if req.ReporterName == "" && req.ReporterPhone == "" && req.ReporterID == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Reporter identity required", nil)
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lng must be provided together", nil)
		return
	}

	issue, err := h.Lifecycle.Submit(c.Request.Context(), models.Report{
		Address:         req.Address,
		Description:     req.Description,
		Lat:             req.Lat,
		Lng:             req.Lng,
		ReporterName:    req.ReporterName,
		ReporterPhone:   req.ReporterPhone,
		ReporterID:      req.ReporterID,
		Photo:           req.Photo,
		Voice:           req.Voice,
		VoiceTranscript: req.VoiceTranscript,
	})
	if err != nil {
		h.Logger.Error().Err(err).Msg("report submission failed")
		writeError(c, http.StatusInternalServerError, "SUBMIT_ERROR", "Failed to submit report", err.Error())
		return
	}
	c.JSON(http.StatusCreated, issue)
}

func (h *Handler) IssuesList(c *gin.Context) {
	status := c.Query("status")
	department := c.Query("department")
	items, err := h.Store.ListIssues(c.Request.Context(), status, department)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to list issues", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) IssueDetails(c *gin.Context) {
	issue, err := h.Store.GetIssue(c.Request.Context(), issueParam(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Issue not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to get issue", err.Error())
		return
	}
	c.JSON(http.StatusOK, issue)
}

type AssignRequest struct {
	ResponderID string `json:"responder_id" validate:"required"`
}

// @Summary Assign a responder to an issue
// @Tags issues
// @Accept json
// @Produce json
// @Param id path string true "Issue ID"
// @Success 200 {object} models.Issue
// @Failure 404 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/issues/{id}/assign [post]
func (h *Handler) AssignIssue(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	issue, err := h.Lifecycle.Assign(c.Request.Context(), issueParam(c), req.ResponderID)
	if err != nil {
		writeTransitionError(c, err, "Failed to assign issue")
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (h *Handler) StartIssue(c *gin.Context) {
	issue, err := h.Lifecycle.StartWork(c.Request.Context(), issueParam(c))
	if err != nil {
		writeTransitionError(c, err, "Failed to start work")
		return
	}
	c.JSON(http.StatusOK, issue)
}

// @Summary Resolve an issue
// @Tags issues
// @Produce json
// @Param id path string true "Issue ID"
// @Success 200 {object} models.Issue
// @Failure 404 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/issues/{id}/resolve [post]
func (h *Handler) ResolveIssue(c *gin.Context) {
	issue, err := h.Lifecycle.Resolve(c.Request.Context(), issueParam(c))
	if err != nil {
		writeTransitionError(c, err, "Failed to resolve issue")
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (h *Handler) RespondersList(c *gin.Context) {
	items, err := h.Store.ListResponders(c.Request.Context(), c.Query("department"))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to list responders", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type CreateResponderRequest struct {
	ID         string   `json:"id"`
	Name       string   `json:"name" validate:"required"`
	Contact    string   `json:"contact" validate:"required"`
	Department string   `json:"department" validate:"required"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

func (h *Handler) ResponderCreate(c *gin.Context) {
	var req CreateResponderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	responder := models.Responder{
		ID:         req.ID,
		Name:       req.Name,
		Contact:    req.Contact,
		Department: req.Department,
		Available:  true,
		Lat:        req.Lat,
		Lng:        req.Lng,
	}
	if err := h.Store.CreateResponder(c.Request.Context(), responder); err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to create responder", err.Error())
		return
	}
	c.JSON(http.StatusCreated, responder)
}

func (h *Handler) ResponderDelete(c *gin.Context) {
	if err := h.Store.DeleteResponder(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Responder not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to delete responder", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary List notifications visible to the viewer
// @Description The viewer is identified by role, department and user_id query parameters; all empty means anonymous.
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/notifications [get]
func (h *Handler) NotificationsList(c *gin.Context) {
	items, err := h.Notifications.ListFor(c.Request.Context(), viewerFromQuery(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to list notifications", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) NotificationsClear(c *gin.Context) {
	removed, err := h.Notifications.ClearFor(c.Request.Context(), viewerFromQuery(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to clear notifications", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *Handler) CoinsBalance(c *gin.Context) {
	userID := c.Param("userId")
	balance, err := h.Coins.Balance(c.Request.Context(), userID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to get balance", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "balance": balance})
}

func (h *Handler) CoinsLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	board, err := h.Coins.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to build leaderboard", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": board})
}

type SpendRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	UserName string `json:"user_name"`
	Amount   int    `json:"amount" validate:"required,gt=0"`
	Reason   string `json:"reason" validate:"required"`
}

// CoinsSpend is the marketplace's debit entry point. The balance floors at
// zero regardless of the requested amount.
func (h *Handler) CoinsSpend(c *gin.Context) {
	var req SpendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	tx, err := h.Coins.Debit(c.Request.Context(), req.UserID, req.UserName, req.Amount, req.Reason)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to record spend", err.Error())
		return
	}
	balance, err := h.Coins.Balance(c.Request.Context(), req.UserID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to get balance", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx, "balance": balance})
}

func issueParam(c *gin.Context) string {
	id := c.Param("id")
	// issue ids are displayed as #NNN; accept the bare number too
	if id != "" && id[0] != '#' {
		return "#" + id
	}
	return id
}

func viewerFromQuery(c *gin.Context) models.Viewer {
	return models.Viewer{
		Role:       c.Query("role"),
		Department: c.Query("department"),
		UserID:     c.Query("user_id"),
	}
}

func writeTransitionError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Issue or responder not found", nil)
	case errors.Is(err, service.ErrResponderUnavailable):
		writeError(c, http.StatusConflict, "RESPONDER_UNAVAILABLE", "Responder is not available", err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(c, http.StatusConflict, "INVALID_TRANSITION", message, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", message, err.Error())
	}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
