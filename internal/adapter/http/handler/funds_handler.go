package handler

import (
	"smm-admin-gateway/internal/adapter/http/dto"
	"smm-admin-gateway/internal/adapter/http/middleware"
	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"
	"smm-admin-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FundsHandler handles fund request settlement endpoints.
type FundsHandler struct {
	settlementSvc ports.SettlementService
	fundRepo      ports.FundRequestRepository
}

// NewFundsHandler creates a new FundsHandler.
func NewFundsHandler(settlementSvc ports.SettlementService, fundRepo ports.FundRequestRepository) *FundsHandler {
	return &FundsHandler{settlementSvc: settlementSvc, fundRepo: fundRepo}
}

// ListPending handles GET /api/v1/funds/pending.
func (h *FundsHandler) ListPending(c *gin.Context) {
	reqs, err := h.fundRepo.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.FundRequestResponse, 0, len(reqs))
	for i := range reqs {
		items = append(items, dto.FundRequestFromDomain(&reqs[i]))
	}
	response.OK(c, items)
}

// Approve handles POST /api/v1/funds/:requestID/approve.
func (h *FundsHandler) Approve(c *gin.Context) {
	h.settle(c, domain.FundRequestStatusCompleted)
}

// Reject handles POST /api/v1/funds/:requestID/reject.
func (h *FundsHandler) Reject(c *gin.Context) {
	h.settle(c, domain.FundRequestStatusRejected)
}

func (h *FundsHandler) settle(c *gin.Context, target domain.FundRequestStatus) {
	requestID, err := uuid.Parse(c.Param("requestID"))
	if err != nil {
		response.Error(c, apperror.Validation("requestID must be a valid UUID"))
		return
	}

	settled, err := h.settlementSvc.Settle(c.Request.Context(), ports.SettleFundRequest{
		RequestID:  requestID,
		Target:     target,
		ActorEmail: actorEmail(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FundRequestFromDomain(settled))
}

// actorEmail returns the authenticated admin identity set by JWTAuth.
func actorEmail(c *gin.Context) string {
	if email, ok := c.Get(middleware.CtxAdminEmail); ok {
		if s, ok := email.(string); ok {
			return s
		}
	}
	return ""
}
