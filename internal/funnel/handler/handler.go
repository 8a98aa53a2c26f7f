package handler

import (
	"net/http"
	"time"

	"vitrine_backend/internal/funnel/service"
	"vitrine_backend/internal/funnel/transport"
	"vitrine_backend/platform/httpkit"
	"vitrine_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for funnel leads
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new funnel handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes registers the public funnel routes
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.CreateLead)
}

// RegisterAdminRoutes registers the back-office lead routes
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetByID)
}

// RegisterCronRoutes registers the scheduler trigger routes
func (h *Handler) RegisterCronRoutes(rg *gin.RouterGroup) {
	rg.GET("/nurture", h.RunNurture)
}

// CreateLead handles POST /api/v1/funnel/leads
func (h *Handler) CreateLead(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateLead(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetByID handles GET /api/v1/admin/funnel/leads/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RunNurture handles GET /api/v1/cron/nurture. The route group carries the
// shared-secret middleware; a rejected secret never reaches this handler.
func (h *Handler) RunNurture(c *gin.Context) {
	sent, err := h.svc.RunPass(c.Request.Context(), time.Now())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.NurtureRunResponse{Sent: sent})
}
