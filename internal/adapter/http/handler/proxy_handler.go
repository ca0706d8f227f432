package handler

import (
	"smm-admin-gateway/internal/adapter/http/dto"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"
	"smm-admin-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProxyHandler handles the provider API proxy endpoint.
type ProxyHandler struct {
	proxySvc ports.ProxyService
}

// NewProxyHandler creates a new ProxyHandler.
func NewProxyHandler(proxySvc ports.ProxyService) *ProxyHandler {
	return &ProxyHandler{proxySvc: proxySvc}
}

// Forward handles POST /api/v1/provider/proxy. The response body keeps the
// upstream provider's shape, so it bypasses the standard envelope.
func (h *ProxyHandler) Forward(c *gin.Context) {
	var req dto.ProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.TrimStruct(&req)

	fwd := ports.ForwardRequest{
		APIURL: req.APIURL,
		APIKey: req.APIKey,
		Action: req.Action,
		Params: req.Params,
	}
	if req.ProviderID != nil && *req.ProviderID != "" {
		id, err := uuid.Parse(*req.ProviderID)
		if err != nil {
			response.Error(c, apperror.Validation("provider_id must be a valid UUID"))
			return
		}
		fwd.ProviderID = &id
	}

	payload, err := h.proxySvc.Forward(c.Request.Context(), fwd)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Raw(c, payload)
}
