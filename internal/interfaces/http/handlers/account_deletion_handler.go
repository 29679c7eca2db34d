package handlers

import (
	"context"
	"net/http"

	"appstore.backend/internal/domain/entities"
	"appstore.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountDeletionService is the deletion lifecycle used by AccountDeletionHandler
type AccountDeletionService interface {
	RequestDeletion(ctx context.Context, accountID uuid.UUID) (*entities.CodeIssued, error)
	VerifyDeletionCode(ctx context.Context, accountID uuid.UUID, input entities.VerifyCodeInput) (*entities.VerificationResult, error)
	AbandonRequest(ctx context.Context, accountID uuid.UUID) error
	Schedule(ctx context.Context, accountID uuid.UUID) (*entities.DeletionSchedule, error)
	Cancel(ctx context.Context, accountID uuid.UUID) (*entities.DeletionCancelled, error)
	Status(ctx context.Context, accountID uuid.UUID) (*entities.DeletionSchedule, error)
}

// AccountDeletionHandler exposes the deletion lifecycle to the authenticated account
type AccountDeletionHandler struct {
	deletionUsecase AccountDeletionService
}

func NewAccountDeletionHandler(deletionUsecase AccountDeletionService) *AccountDeletionHandler {
	return &AccountDeletionHandler{deletionUsecase: deletionUsecase}
}

// Status returns whether the account is pending deletion
// GET /api/v1/account/deletion
func (h *AccountDeletionHandler) Status(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	status, err := h.deletionUsecase.Status(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}

// RequestDeletion emails a deletion code
// POST /api/v1/account/deletion/request
func (h *AccountDeletionHandler) RequestDeletion(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	issued, err := h.deletionUsecase.RequestDeletion(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, issued)
}

// VerifyCode checks the emailed deletion code
// POST /api/v1/account/deletion/verify
func (h *AccountDeletionHandler) VerifyCode(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	var input entities.VerifyCodeInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.deletionUsecase.VerifyDeletionCode(c.Request.Context(), accountID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Confirm schedules the deletion after the grace period
// POST /api/v1/account/deletion/confirm
func (h *AccountDeletionHandler) Confirm(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	schedule, err := h.deletionUsecase.Schedule(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, schedule)
}

// Cancel withdraws a pending deletion
// POST /api/v1/account/deletion/cancel
func (h *AccountDeletionHandler) Cancel(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	cancelled, err := h.deletionUsecase.Cancel(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cancelled)
}

// Abandon discards an outstanding deletion code without scheduling
// DELETE /api/v1/account/deletion/code
func (h *AccountDeletionHandler) Abandon(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	if err := h.deletionUsecase.AbandonRequest(c.Request.Context(), accountID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
