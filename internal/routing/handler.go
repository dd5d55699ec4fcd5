package routing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suraksha/crowd-safety/pkg/common"
)

// Handler handles HTTP requests for route planning
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new routing handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers routing endpoints on the given router group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	emergency := router.Group("/emergency")
	{
		emergency.POST("/safe-routes", h.SafeRoutes)
		emergency.POST("/evacuation-routes", h.EvacuationRoutes)
	}
}

// SafeRoutes scores candidate routes between two points
func (h *Handler) SafeRoutes(c *gin.Context) {
	var req SafeRoutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "origin and destination must have lat and lng properties")
		return
	}

	result, err := h.service.SafeRoutes(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponseWithMessage(c, result, "safe routes calculated")
}

// EvacuationRoutes plans walking routes to safe destinations
func (h *Handler) EvacuationRoutes(c *gin.Context) {
	var req EvacuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "current_location and emergency_location are required")
		return
	}

	plan, err := h.service.EvacuationRoutes(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponseWithMessage(c, plan, "evacuation routes calculated")
}

func respondError(c *gin.Context, err error) {
	appErr := common.AsAppError(err)
	if appErr.Code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	common.AppErrorResponse(c, appErr)
}
