package handler

import (
	"smm-admin-gateway/internal/adapter/http/dto"
	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"
	"smm-admin-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WithdrawalHandler handles commission withdrawal settlement endpoints.
type WithdrawalHandler struct {
	withdrawalSvc  ports.WithdrawalService
	withdrawalRepo ports.WithdrawalRepository
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(withdrawalSvc ports.WithdrawalService, withdrawalRepo ports.WithdrawalRepository) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalSvc: withdrawalSvc, withdrawalRepo: withdrawalRepo}
}

// ListPending handles GET /api/v1/withdrawals/pending.
func (h *WithdrawalHandler) ListPending(c *gin.Context) {
	reqs, err := h.withdrawalRepo.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.WithdrawalResponse, 0, len(reqs))
	for i := range reqs {
		items = append(items, dto.WithdrawalFromDomain(&reqs[i]))
	}
	response.OK(c, items)
}

// Approve handles POST /api/v1/withdrawals/:requestID/approve.
func (h *WithdrawalHandler) Approve(c *gin.Context) {
	h.settle(c, domain.WithdrawalStatusCompleted)
}

// Reject handles POST /api/v1/withdrawals/:requestID/reject.
func (h *WithdrawalHandler) Reject(c *gin.Context) {
	h.settle(c, domain.WithdrawalStatusRejected)
}

func (h *WithdrawalHandler) settle(c *gin.Context, target domain.WithdrawalStatus) {
	requestID, err := uuid.Parse(c.Param("requestID"))
	if err != nil {
		response.Error(c, apperror.Validation("requestID must be a valid UUID"))
		return
	}

	settled, err := h.withdrawalSvc.Settle(c.Request.Context(), requestID, target, actorEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WithdrawalFromDomain(settled))
}
