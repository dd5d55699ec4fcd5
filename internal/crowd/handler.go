package crowd

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/suraksha/crowd-safety/pkg/common"
	"github.com/suraksha/crowd-safety/pkg/validation"
)

// Handler handles HTTP requests for crowd monitoring
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new crowd handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers crowd routes on the given router group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	crowd := router.Group("/crowd")
	{
		crowd.GET("/nearby", h.Nearby)
		crowd.GET("/alerts", h.ActiveAlerts)
		crowd.GET("/locations", h.ListLocations)
		crowd.GET("/locations/:id", h.GetLocation)
		crowd.POST("/locations", h.AddLocation)
		crowd.POST("/locations/:id/update", h.UpdateDensity)
		crowd.POST("/simulate", h.Simulate)
		crowd.GET("/constants", h.Constants)
	}
}

// Nearby returns crowd alerts around a user position
func (h *Handler) Nearby(c *gin.Context) {
	latitude, longitude, ok := parseCoordinates(c)
	if !ok {
		return
	}
	radius := parseFloatQuery(c, "radius", 0)

	report, err := h.service.CheckUserLocation(c.Request.Context(), latitude, longitude, radius)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, report)
}

// ActiveAlerts returns all locations with active crowd alerts
func (h *Handler) ActiveAlerts(c *gin.Context) {
	locations, err := h.service.ActiveAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	criticalCount := 0
	highCount := 0
	for _, location := range locations {
		switch location.DensityLevel {
		case DensityCritical:
			criticalCount++
		case DensityHigh:
			highCount++
		}
	}

	common.SuccessResponse(c, gin.H{
		"alerts":          locations,
		"total_alerts":    len(locations),
		"critical_alerts": criticalCount,
		"high_alerts":     highCount,
	})
}

// ListLocations returns monitored locations, optionally filtered
func (h *Handler) ListLocations(c *gin.Context) {
	var pagination validation.PaginationRequest
	if err := c.ShouldBindQuery(&pagination); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid pagination parameters")
		return
	}
	pagination.Normalize()

	filter := ListFilter{
		Category: Category(c.Query("location_type")),
		Level:    DensityLevel(c.Query("density_level")),
		Limit:    pagination.Limit,
		Offset:   pagination.Offset,
	}

	locations, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{
		"locations": locations,
		"count":     len(locations),
	})
}

// GetLocation returns one location with its recent history
func (h *Handler) GetLocation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid location id")
		return
	}

	location, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, location)
}

// AddLocation registers a new monitored location
func (h *Handler) AddLocation(c *gin.Context) {
	var req RegisterLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	location, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	common.CreatedResponse(c, location, "location registered")
}

// UpdateDensity applies a fresh crowd count to a location
func (h *Handler) UpdateDensity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid location id")
		return
	}

	var req UpdateDensityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.EstimatedCount == nil {
		common.ErrorResponse(c, http.StatusBadRequest, "estimated_count is required")
		return
	}

	location, err := h.service.UpdateDensity(c.Request.Context(), id, *req.EstimatedCount)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, location)
}

// Simulate triggers one synthetic detection pass
func (h *Handler) Simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateCoordinates(req.Latitude, req.Longitude); err != nil {
		common.AppErrorResponse(c, common.NewValidationError(common.CodeInvalidCoordinates, err.Error()))
		return
	}

	summary, err := h.service.Simulate(c.Request.Context(), req.Latitude, req.Longitude, req.RadiusKm)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponseWithMessage(c, summary, "crowd detection simulation completed")
}

// Constants lists the valid enum values for clients
func (h *Handler) Constants(c *gin.Context) {
	common.SuccessResponse(c, gin.H{
		"location_types": Categories(),
		"density_levels": DensityLevels(),
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
