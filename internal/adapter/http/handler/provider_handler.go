package handler

import (
	"smm-admin-gateway/internal/adapter/http/dto"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"
	"smm-admin-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProviderHandler handles stored provider credential endpoints.
type ProviderHandler struct {
	providerSvc ports.ProviderService
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(providerSvc ports.ProviderService) *ProviderHandler {
	return &ProviderHandler{providerSvc: providerSvc}
}

// Create handles POST /api/v1/providers.
func (h *ProviderHandler) Create(c *gin.Context) {
	var req dto.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.TrimStruct(&req)

	provider, err := h.providerSvc.Create(c.Request.Context(), req.Name, req.APIURL, req.APIKey)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ProviderFromDomain(provider))
}

// List handles GET /api/v1/providers.
func (h *ProviderHandler) List(c *gin.Context) {
	providers, err := h.providerSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ProviderResponse, 0, len(providers))
	for i := range providers {
		items = append(items, dto.ProviderFromDomain(&providers[i]))
	}
	response.OK(c, items)
}
