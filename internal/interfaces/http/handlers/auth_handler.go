package handlers

import (
	"context"
	"net/http"

	"appstore.backend/internal/domain/entities"
	domainerrors "appstore.backend/internal/domain/errors"
	"appstore.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthService is the account lifecycle used by AuthHandler
type AuthService interface {
	Signup(ctx context.Context, input *entities.SignupInput) (*entities.SignupResult, error)
	Activate(ctx context.Context, login string, input entities.VerifyCodeInput) (*entities.Account, error)
	ResendActivation(ctx context.Context, email string) (*entities.CodeIssued, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*entities.AuthResponse, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*entities.Account, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase AuthService) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
	}
}

type activateRequest struct {
	Login       string    `json:"login" binding:"required"`
	ChallengeID uuid.UUID `json:"challengeId"`
	Code        string    `json:"code" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

// Signup handles account registration
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var input entities.SignupInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := h.authUsecase.Signup(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":    "Account created. Enter the code we emailed you to activate it.",
		"account":    result.Account,
		"activation": result.Activation,
	})
}

// Activate confirms the email address with the emailed code
// POST /api/v1/auth/activate
func (h *AuthHandler) Activate(c *gin.Context) {
	var input activateRequest
	if !bindJSON(c, &input) {
		return
	}

	account, err := h.authUsecase.Activate(c.Request.Context(), input.Login, entities.VerifyCodeInput{
		ChallengeID: input.ChallengeID,
		Code:        input.Code,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Account activated. You can now log in.",
		"account": account,
	})
}

// ResendActivation sends a fresh activation code
// POST /api/v1/auth/activate/resend
func (h *AuthHandler) ResendActivation(c *gin.Context) {
	var input emailRequest
	if !bindJSON(c, &input) {
		return
	}

	issued, err := h.authUsecase.ResendActivation(c.Request.Context(), input.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	// same body whether or not the address exists
	body := gin.H{"message": "If that address belongs to an account awaiting activation, a new code is on its way."}
	if issued != nil {
		body["challengeId"] = issued.ChallengeID
		body["expiresAt"] = issued.ExpiresAt
	}
	response.Success(c, http.StatusAccepted, body)
}

// Login handles login by username or email
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	authResponse, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, authResponse)
}

// RefreshToken exchanges a refresh token for a new token pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &input) {
			return
		}
	}
	if input.RefreshToken == "" {
		response.Error(c, domainerrors.BadRequest("Refresh token is required"))
		return
	}

	authResponse, err := h.authUsecase.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, authResponse)
}

// GetMe returns the authenticated account
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	accountID, ok := requireAccountID(c)
	if !ok {
		return
	}

	account, err := h.authUsecase.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"account": account})
}
