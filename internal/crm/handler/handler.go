package handler

import (
	"net/http"

	"vitrine_backend/internal/crm/service"
	"vitrine_backend/internal/crm/transport"
	"vitrine_backend/platform/httpkit"
	"vitrine_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for CRM clients
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new CRM handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the CRM client routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/stages", h.Stages)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/stage", h.UpdateStage)
}

// Stages handles GET /api/v1/admin/crm/clients/stages. The board uses it to
// render its columns.
func (h *Handler) Stages(c *gin.Context) {
	httpkit.OK(c, h.svc.Stages())
}

// List handles GET /api/v1/admin/crm/clients
func (h *Handler) List(c *gin.Context) {
	var req transport.ListClientsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create handles POST /api/v1/admin/crm/clients
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// GetByID handles GET /api/v1/admin/crm/clients/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid client id", nil)
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateStage handles PATCH /api/v1/admin/crm/clients/:id/stage.
// Responds 200 whether or not the change stuck; the body says which stage the
// board should display.
func (h *Handler) UpdateStage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid client id", nil)
		return
	}

	var req transport.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	change, err := h.svc.ChangeStage(c.Request.Context(), id, req.Stage)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.StageChangeResponse{
		Applied:  change.Applied,
		Stage:    change.Stage.String(),
		Previous: change.Previous.String(),
	})
}
