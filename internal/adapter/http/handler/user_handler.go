package handler

import (
	"smm-admin-gateway/internal/adapter/http/dto"
	"smm-admin-gateway/internal/core/domain"
	"smm-admin-gateway/internal/core/ports"
	"smm-admin-gateway/pkg/apperror"
	"smm-admin-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserHandler handles admin-side user management endpoints.
type UserHandler struct {
	userSvc  ports.UserService
	userRepo ports.UserRepository
	txRepo   ports.TransactionRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userSvc ports.UserService, userRepo ports.UserRepository, txRepo ports.TransactionRepository) *UserHandler {
	return &UserHandler{userSvc: userSvc, userRepo: userRepo, txRepo: txRepo}
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.TrimStruct(&req)

	createReq := ports.CreateUserRequest{Email: req.Email, Name: req.Name}
	if req.ReferredBy != nil && *req.ReferredBy != "" {
		refID, err := uuid.Parse(*req.ReferredBy)
		if err != nil {
			response.Error(c, apperror.Validation("referred_by must be a valid UUID"))
			return
		}
		createReq.ReferredBy = &refID
	}

	user, err := h.userSvc.Create(c.Request.Context(), createReq)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.UserFromDomain(user))
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userRepo.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.UserFromDomain(&users[i]))
	}
	response.OK(c, items)
}

// AdjustBalance handles POST /api/v1/users/:userID/balance.
func (h *UserHandler) AdjustBalance(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.Error(c, apperror.Validation("userID must be a valid UUID"))
		return
	}

	var req dto.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.TrimStruct(&req)

	delta, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	user, err := h.userSvc.AdjustBalance(c.Request.Context(), userID, delta, actorEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.UserFromDomain(user))
}

// SetCommission handles PUT /api/v1/users/:userID/commission.
func (h *UserHandler) SetCommission(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.Error(c, apperror.Validation("userID must be a valid UUID"))
		return
	}

	var req dto.SetCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.TrimStruct(&req)

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	user, err := h.userSvc.SetCommissionBalance(c.Request.Context(), userID, amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.UserFromDomain(user))
}

// SetStatus handles PUT /api/v1/users/:userID/status.
func (h *UserHandler) SetStatus(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.Error(c, apperror.Validation("userID must be a valid UUID"))
		return
	}

	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.TrimStruct(&req)

	status, err := domain.ParseUserStatus(req.Status)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.userSvc.SetStatus(c.Request.Context(), userID, status); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"id": userID.String(), "status": string(status)})
}

// ListTransactions handles GET /api/v1/users/:userID/transactions.
func (h *UserHandler) ListTransactions(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.Error(c, apperror.Validation("userID must be a valid UUID"))
		return
	}

	txns, err := h.txRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, dto.TransactionFromDomain(&txns[i]))
	}
	response.OK(c, items)
}
