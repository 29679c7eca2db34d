package handlers

import (
	"context"
	"net/http"

	"appstore.backend/internal/domain/entities"
	"appstore.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PasswordResetService is the forgotten-password flow used by PasswordResetHandler
type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) (*entities.CodeIssued, error)
	VerifyResetCode(ctx context.Context, email string, input entities.VerifyCodeInput) (*entities.VerificationResult, error)
	ResetPassword(ctx context.Context, input *entities.PasswordResetInput) error
}

type PasswordResetHandler struct {
	resetUsecase PasswordResetService
}

func NewPasswordResetHandler(resetUsecase PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{resetUsecase: resetUsecase}
}

type verifyResetRequest struct {
	Email       string    `json:"email" binding:"required"`
	ChallengeID uuid.UUID `json:"challengeId"`
	Code        string    `json:"code" binding:"required"`
}

// RequestReset emails a reset code
// POST /api/v1/auth/password-reset/request
func (h *PasswordResetHandler) RequestReset(c *gin.Context) {
	var input emailRequest
	if !bindJSON(c, &input) {
		return
	}

	issued, err := h.resetUsecase.RequestReset(c.Request.Context(), input.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := gin.H{"message": "If that address belongs to an active account, a reset code is on its way."}
	if issued != nil {
		body["challengeId"] = issued.ChallengeID
		body["expiresAt"] = issued.ExpiresAt
	}
	response.Success(c, http.StatusAccepted, body)
}

// VerifyResetCode checks the emailed reset code
// POST /api/v1/auth/password-reset/verify
func (h *PasswordResetHandler) VerifyResetCode(c *gin.Context) {
	var input verifyResetRequest
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.resetUsecase.VerifyResetCode(c.Request.Context(), input.Email, entities.VerifyCodeInput{
		ChallengeID: input.ChallengeID,
		Code:        input.Code,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ResetPassword stores the new password
// POST /api/v1/auth/password-reset/confirm
func (h *PasswordResetHandler) ResetPassword(c *gin.Context) {
	var input entities.PasswordResetInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.resetUsecase.ResetPassword(c.Request.Context(), &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password changed. Log in with your new password."})
}
