package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"appstore.backend/internal/domain/entities"
	"appstore.backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type authServiceStub struct {
	signupFn   func(ctx context.Context, input *entities.SignupInput) (*entities.SignupResult, error)
	activateFn func(ctx context.Context, login string, input entities.VerifyCodeInput) (*entities.Account, error)
	resendFn   func(ctx context.Context, email string) (*entities.CodeIssued, error)
	loginFn    func(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*entities.AuthResponse, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*entities.Account, error)
}

func (s authServiceStub) Signup(ctx context.Context, input *entities.SignupInput) (*entities.SignupResult, error) {
	return s.signupFn(ctx, input)
}

func (s authServiceStub) Activate(ctx context.Context, login string, input entities.VerifyCodeInput) (*entities.Account, error) {
	return s.activateFn(ctx, login, input)
}

func (s authServiceStub) ResendActivation(ctx context.Context, email string) (*entities.CodeIssued, error) {
	return s.resendFn(ctx, email)
}

func (s authServiceStub) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	return s.loginFn(ctx, input)
}

func (s authServiceStub) RefreshToken(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s authServiceStub) GetAccount(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	return s.getFn(ctx, id)
}

type resetServiceStub struct {
	requestFn func(ctx context.Context, email string) (*entities.CodeIssued, error)
	verifyFn  func(ctx context.Context, email string, input entities.VerifyCodeInput) (*entities.VerificationResult, error)
	resetFn   func(ctx context.Context, input *entities.PasswordResetInput) error
}

func (s resetServiceStub) RequestReset(ctx context.Context, email string) (*entities.CodeIssued, error) {
	return s.requestFn(ctx, email)
}

func (s resetServiceStub) VerifyResetCode(ctx context.Context, email string, input entities.VerifyCodeInput) (*entities.VerificationResult, error) {
	return s.verifyFn(ctx, email, input)
}

func (s resetServiceStub) ResetPassword(ctx context.Context, input *entities.PasswordResetInput) error {
	return s.resetFn(ctx, input)
}

type deletionServiceStub struct {
	requestFn  func(ctx context.Context, accountID uuid.UUID) (*entities.CodeIssued, error)
	verifyFn   func(ctx context.Context, accountID uuid.UUID, input entities.VerifyCodeInput) (*entities.VerificationResult, error)
	abandonFn  func(ctx context.Context, accountID uuid.UUID) error
	scheduleFn func(ctx context.Context, accountID uuid.UUID) (*entities.DeletionSchedule, error)
	cancelFn   func(ctx context.Context, accountID uuid.UUID) (*entities.DeletionCancelled, error)
	statusFn   func(ctx context.Context, accountID uuid.UUID) (*entities.DeletionSchedule, error)
}

func (s deletionServiceStub) RequestDeletion(ctx context.Context, accountID uuid.UUID) (*entities.CodeIssued, error) {
	return s.requestFn(ctx, accountID)
}

func (s deletionServiceStub) VerifyDeletionCode(ctx context.Context, accountID uuid.UUID, input entities.VerifyCodeInput) (*entities.VerificationResult, error) {
	return s.verifyFn(ctx, accountID, input)
}

func (s deletionServiceStub) AbandonRequest(ctx context.Context, accountID uuid.UUID) error {
	return s.abandonFn(ctx, accountID)
}

func (s deletionServiceStub) Schedule(ctx context.Context, accountID uuid.UUID) (*entities.DeletionSchedule, error) {
	return s.scheduleFn(ctx, accountID)
}

func (s deletionServiceStub) Cancel(ctx context.Context, accountID uuid.UUID) (*entities.DeletionCancelled, error) {
	return s.cancelFn(ctx, accountID)
}

func (s deletionServiceStub) Status(ctx context.Context, accountID uuid.UUID) (*entities.DeletionSchedule, error) {
	return s.statusFn(ctx, accountID)
}

// withAccount stands in for AuthMiddleware
func withAccount(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AccountIDKey, id)
		c.Next()
	}
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
