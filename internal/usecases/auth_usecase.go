package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"appstore.backend/internal/domain/entities"
	domainerrors "appstore.backend/internal/domain/errors"
	"appstore.backend/internal/domain/repositories"
	"appstore.backend/pkg/crypto"
	"appstore.backend/pkg/jwt"
	"appstore.backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var hashPassword = crypto.HashPassword

// AuthUsecase handles signup, activation and login
type AuthUsecase struct {
	accountRepo repositories.AccountRepository
	uow         repositories.UnitOfWork
	codes       *VerificationCodeUsecase
	jwtService  *jwt.JWTService
	now         Clock
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	accountRepo repositories.AccountRepository,
	uow repositories.UnitOfWork,
	codes *VerificationCodeUsecase,
	jwtService *jwt.JWTService,
) *AuthUsecase {
	return &AuthUsecase{
		accountRepo: accountRepo,
		uow:         uow,
		codes:       codes,
		jwtService:  jwtService,
		now:         systemClock,
	}
}

func (u *AuthUsecase) SetClock(now Clock) {
	u.now = now
}

// Signup creates an inactive account and emails an activation code
func (u *AuthUsecase) Signup(ctx context.Context, input *entities.SignupInput) (*entities.SignupResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := ValidateSignup(input); err != nil {
		return nil, err
	}

	if _, err := u.accountRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil, conflict("username", "A user with that username already exists.")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	if _, err := u.accountRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, conflict("email", "An account with this email already exists.")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := u.now()
	account := &entities.Account{
		ID:           newID(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	logger.Info(ctx, "Account created", zap.String("accountId", account.ID.String()))

	issued, err := u.codes.RequestCode(ctx, account, entities.CodePurposeEmailVerification)
	if err != nil {
		return nil, err
	}

	return &entities.SignupResult{Account: account, Activation: issued}, nil
}

func conflict(field, message string) error {
	return domainerrors.NewAppError(http.StatusConflict, domainerrors.CodeConflict, message,
		fmt.Errorf("%s: %w", field, domainerrors.ErrAlreadyExists))
}

// Activate verifies the activation code and marks the account active.
// Activating an active account succeeds without a code check.
func (u *AuthUsecase) Activate(ctx context.Context, login string, input entities.VerifyCodeInput) (*entities.Account, error) {
	account, err := u.accountRepo.GetByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	if account.IsActive {
		return account, nil
	}

	if _, err := u.codes.VerifyCode(ctx, account.ID, entities.CodePurposeEmailVerification, input); err != nil {
		return nil, err
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.codes.ConsumeVerified(txCtx, account.ID, entities.CodePurposeEmailVerification); err != nil {
			return err
		}
		return u.accountRepo.Activate(txCtx, account.ID)
	})
	if errors.Is(err, domainerrors.ErrCodeExpired) {
		u.codes.discardExpired(ctx, account.ID, entities.CodePurposeEmailVerification)
	}
	if err != nil {
		return nil, err
	}

	account.IsActive = true
	logger.Info(ctx, "Account activated", zap.String("accountId", account.ID.String()))
	return account, nil
}

// ResendActivation issues a new activation code. Unknown or already active
// addresses get a nil result and no error so callers cannot probe for accounts.
func (u *AuthUsecase) ResendActivation(ctx context.Context, email string) (*entities.CodeIssued, error) {
	account, err := u.accountRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if account.IsActive {
		return nil, nil
	}
	return u.codes.RequestCode(ctx, account, entities.CodePurposeEmailVerification)
}

// Login authenticates by username or email
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	account, err := u.accountRepo.GetByLogin(ctx, strings.TrimSpace(input.Login))
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, account.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, domainerrors.ErrEmailNotVerified
	}

	return u.issueTokens(account)
}

// RefreshToken exchanges a refresh token for a new pair
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	claims, err := u.jwtService.ValidateTokenType(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, domainerrors.ErrTokenExpired
		}
		return nil, domainerrors.ErrUnauthorized
	}

	account, err := u.accountRepo.GetByID(ctx, claims.AccountID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, domainerrors.ErrEmailNotVerified
	}

	return u.issueTokens(account)
}

func (u *AuthUsecase) GetAccount(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	return u.accountRepo.GetByID(ctx, id)
}

func (u *AuthUsecase) issueTokens(account *entities.Account) (*entities.AuthResponse, error) {
	tokens, err := u.jwtService.GenerateTokenPair(account.ID, account.Username, account.Email)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}
	return &entities.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Account:      account,
	}, nil
}
