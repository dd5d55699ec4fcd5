package emergency

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/suraksha/crowd-safety/pkg/common"
	"github.com/suraksha/crowd-safety/pkg/validation"
)

// Handler handles HTTP requests for emergency alerts
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new emergency handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers emergency routes on the given router group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	emergency := router.Group("/emergency")
	{
		emergency.POST("/alert", h.CreateAlert)
		emergency.GET("/nearby", h.Nearby)
		emergency.POST("/confirm/:alertId", h.ConfirmAlert)
		emergency.POST("/resolve/:alertId", h.ResolveAlert)
		emergency.POST("/detect", h.Detect)
		emergency.GET("/stats", h.Stats)
		emergency.GET("/constants", h.Constants)
	}
}

// CreateAlert reports a new emergency
func (h *Handler) CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	alert, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	common.CreatedResponse(c, alert, "emergency alert created and broadcast")
}

// Nearby returns active alerts around a position
func (h *Handler) Nearby(c *gin.Context) {
	latitude, longitude, ok := parseCoordinates(c)
	if !ok {
		return
	}
	radius := parseFloatQuery(c, "radius", 0)

	alerts, err := h.service.FindNearby(c.Request.Context(), latitude, longitude, radius)
	if err != nil {
		respondError(c, err)
		return
	}

	criticalCount := 0
	for _, alert := range alerts {
		if alert.Severity == SeverityCritical {
			criticalCount++
		}
	}

	common.SuccessResponse(c, gin.H{
		"alerts":          alerts,
		"total_alerts":    len(alerts),
		"critical_alerts": criticalCount,
	})
}

// ConfirmAlert records one user's vote on an alert
func (h *Handler) ConfirmAlert(c *gin.Context) {
	alertID, err := uuid.Parse(c.Param("alertId"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid alert id")
		return
	}

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "user_id is required")
		return
	}

	// Missing confirmed field counts as an affirmative vote
	confirmed := true
	if req.Confirmed != nil {
		confirmed = *req.Confirmed
	}

	result, err := h.service.Confirm(c.Request.Context(), alertID, req.UserID, confirmed)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, result)
}

// ResolveAlert terminates an alert
func (h *Handler) ResolveAlert(c *gin.Context) {
	alertID, err := uuid.Parse(c.Param("alertId"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid alert id")
		return
	}

	var req ResolveRequest
	_ = c.ShouldBindJSON(&req)

	alert, err := h.service.Resolve(c.Request.Context(), alertID, req.ResolvedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponseWithMessage(c, alert, "alert resolved")
}

// Detect runs one auto-detection pass over critically crowded locations
func (h *Handler) Detect(c *gin.Context) {
	created, err := h.service.Detect(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponseWithMessage(c, gin.H{
		"alerts_created": len(created),
		"alerts":         created,
	}, "emergency detection completed")
}

// Stats returns the per-type alert aggregation
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, stats)
}

// Constants lists the valid enum values for clients
func (h *Handler) Constants(c *gin.Context) {
	common.SuccessResponse(c, gin.H{
		"alert_types": AlertTypes(),
		"severities":  Severities(),
	})
}

func parseCoordinates(c *gin.Context) (float64, float64, bool) {
	latitude, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	longitude, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		common.AppErrorResponse(c, common.NewValidationError(
			common.CodeInvalidCoordinates, "lat and lon query parameters are required"))
		return 0, 0, false
	}
	if err := validation.ValidateCoordinates(latitude, longitude); err != nil {
		common.AppErrorResponse(c, common.NewValidationError(common.CodeInvalidCoordinates, err.Error()))
		return 0, 0, false
	}
	return latitude, longitude, true
}

func parseFloatQuery(c *gin.Context, name string, fallback float64) float64 {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func respondError(c *gin.Context, err error) {
	appErr := common.AsAppError(err)
	if appErr.Code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	common.AppErrorResponse(c, appErr)
}
