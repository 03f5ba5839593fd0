package businessflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/openlaunch/open-launch/app/dto"
	"github.com/openlaunch/open-launch/app/services"
	"github.com/openlaunch/open-launch/models"
	"github.com/openlaunch/open-launch/repository"
	"github.com/openlaunch/open-launch/utils"
	"golang.org/x/crypto/bcrypt"
)

// AuthFlow handles email/password accounts
type AuthFlow interface {
	Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest, metadata *ClientMetadata) (*dto.VerifyEmailResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	RefreshTokens(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.LoginResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest, metadata *ClientMetadata) (*dto.ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest, metadata *ClientMetadata) (*dto.ResetPasswordResponse, error)
	NewCaptcha(ctx context.Context) (*dto.CaptchaChallengeResponse, error)
}

// AuthFlowImpl implements the auth business flow
type AuthFlowImpl struct {
	userRepo     repository.UserRepository
	tokenService services.TokenService
	tokens       services.OneTimeTokenStore
	mailer       services.TransactionalMailer
	captcha      services.CaptchaService // nil when captcha is disabled
}

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(
	userRepo repository.UserRepository,
	tokenService services.TokenService,
	tokens services.OneTimeTokenStore,
	mailer services.TransactionalMailer,
	captcha services.CaptchaService,
) AuthFlow {
	return &AuthFlowImpl{
		userRepo:     userRepo,
		tokenService: tokenService,
		tokens:       tokens,
		mailer:       mailer,
		captcha:      captcha,
	}
}

// Signup creates an unverified account and emails a verification link
func (af *AuthFlowImpl) Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	if err := af.checkCaptcha(ctx, req.CaptchaAnswer); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, NewBusinessError("SIGNUP_VALIDATION_FAILED", "Signup validation failed", err)
	}

	email := normalizeEmail(req.Email)
	existing, err := af.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("SIGNUP_FAILED", "Signup failed", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewBusinessError("SIGNUP_FAILED", "Failed to hash password", err)
	}

	user := &models.User{
		UUID:         uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = &name
	}
	if err := af.userRepo.Save(ctx, user); err != nil {
		return nil, NewBusinessError("SIGNUP_FAILED", "Failed to create user", err)
	}

	resp := &dto.SignupResponse{
		Message: "Account created. Check your inbox to verify your email.",
		UserID:  user.ID,
	}

	// the account exists either way; a failed email can be retried through forgot-password
	token, err := af.tokens.Issue(ctx, services.TokenPurposeEmailVerification, user.ID, utils.EmailVerificationTTL)
	if err != nil {
		log.Printf("signup %s: failed to issue verification token for user %d: %v", metadata, user.ID, err)
		resp.VerificationError = "verification token could not be issued"
		return resp, nil
	}
	res := af.mailer.SendEmailVerification(ctx, services.Recipient{Email: user.Email, Name: user.DisplayName("")}, token)
	resp.VerificationSent = res.Success
	if !res.Success {
		log.Printf("signup %s: verification email to %s failed: %s", metadata, user.Email, res.Error)
		resp.VerificationError = res.Error
	}
	return resp, nil
}

func (af *AuthFlowImpl) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest, metadata *ClientMetadata) (*dto.VerifyEmailResponse, error) {
	userID, ok, err := af.tokens.Consume(ctx, services.TokenPurposeEmailVerification, req.Token)
	if err != nil {
		return nil, NewBusinessError("VERIFY_EMAIL_FAILED", "Email verification failed", fmt.Errorf("%w: %v", ErrCacheNotAvailable, err))
	}
	if !ok {
		return nil, ErrInvalidToken
	}

	user, err := af.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("VERIFY_EMAIL_FAILED", "Email verification failed", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.EmailVerified {
		return nil, ErrAlreadyVerified
	}

	now := utils.UTCNow()
	if err := af.userRepo.MarkEmailVerified(ctx, user.ID, now); err != nil {
		return nil, NewBusinessError("VERIFY_EMAIL_FAILED", "Email verification failed", err)
	}
	log.Printf("email verified for user %d (%s)", user.ID, metadata)

	return &dto.VerifyEmailResponse{
		Message:    "Email verified successfully",
		UserID:     user.ID,
		VerifiedAt: now,
	}, nil
}

// Login authenticates a verified user and issues a token pair
func (af *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if err := af.checkCaptcha(ctx, req.CaptchaAnswer); err != nil {
		return nil, err
	}

	user, err := af.userRepo.ByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Printf("login failed for user %d (%s): wrong password", user.ID, metadata)
		return nil, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	access, refresh, err := af.tokenService.GenerateTokens(user.ID)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Failed to issue tokens", err)
	}
	if err := af.userRepo.TouchLastLogin(ctx, user.ID, utils.UTCNow()); err != nil {
		log.Printf("failed to record last login for user %d: %v", user.ID, err)
	}

	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(af.tokenService.AccessTokenTTL().Seconds()),
		User:         ToUserInfo(*user),
	}, nil
}

func (af *AuthFlowImpl) RefreshTokens(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.LoginResponse, error) {
	claims, err := af.tokenService.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != services.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	user, err := af.userRepo.ByID(ctx, claims.UserID)
	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	access, refresh, err := af.tokenService.RefreshToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(af.tokenService.AccessTokenTTL().Seconds()),
		User:         ToUserInfo(*user),
	}, nil
}

// ForgotPassword emails a reset link. The response does not reveal whether the account exists.
func (af *AuthFlowImpl) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest, metadata *ClientMetadata) (*dto.ForgotPasswordResponse, error) {
	if err := af.checkCaptcha(ctx, req.CaptchaAnswer); err != nil {
		return nil, err
	}

	resp := &dto.ForgotPasswordResponse{Message: "If the account exists, a reset link has been sent"}

	user, err := af.userRepo.ByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, NewBusinessError("FORGOT_PASSWORD_FAILED", "Forgot password failed", err)
	}
	if user == nil {
		return resp, nil
	}

	token, err := af.tokens.Issue(ctx, services.TokenPurposePasswordReset, user.ID, utils.PasswordResetTTL)
	if err != nil {
		return nil, NewBusinessError("FORGOT_PASSWORD_FAILED", "Forgot password failed", fmt.Errorf("%w: %v", ErrCacheNotAvailable, err))
	}
	if res := af.mailer.SendPasswordReset(ctx, services.Recipient{Email: user.Email, Name: user.DisplayName("")}, token); !res.Success {
		log.Printf("forgot password %s: reset email to %s failed: %s", metadata, user.Email, res.Error)
	}
	return resp, nil
}

func (af *AuthFlowImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest, metadata *ClientMetadata) (*dto.ResetPasswordResponse, error) {
	if err := validatePassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return nil, NewBusinessError("RESET_PASSWORD_VALIDATION_FAILED", "Reset password validation failed", err)
	}

	userID, ok, err := af.tokens.Consume(ctx, services.TokenPurposePasswordReset, req.Token)
	if err != nil {
		return nil, NewBusinessError("RESET_PASSWORD_FAILED", "Reset password failed", fmt.Errorf("%w: %v", ErrCacheNotAvailable, err))
	}
	if !ok {
		return nil, ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewBusinessError("RESET_PASSWORD_FAILED", "Failed to hash password", err)
	}
	if err := af.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return nil, NewBusinessError("RESET_PASSWORD_FAILED", "Reset password failed", err)
	}

	// the link reached the user's inbox, so the address is proven
	now := utils.UTCNow()
	if user, err := af.userRepo.ByID(ctx, userID); err == nil && user != nil && !user.EmailVerified {
		if err := af.userRepo.MarkEmailVerified(ctx, userID, now); err != nil {
			log.Printf("failed to mark user %d verified after reset: %v", userID, err)
		}
	}
	log.Printf("password reset for user %d (%s)", userID, metadata)

	return &dto.ResetPasswordResponse{
		Message:           "New password saved",
		PasswordChangedAt: now,
	}, nil
}

func (af *AuthFlowImpl) NewCaptcha(ctx context.Context) (*dto.CaptchaChallengeResponse, error) {
	if af.captcha == nil {
		return nil, ErrCaptchaDisabled
	}
	ch, err := af.captcha.GenerateRotate(ctx)
	if err != nil {
		return nil, NewBusinessError("CAPTCHA_FAILED", "Failed to generate captcha", err)
	}
	return &dto.CaptchaChallengeResponse{
		ID:          ch.ID,
		MasterImage: ch.MasterImageBase64,
		ThumbImage:  ch.ThumbImageBase64,
		ExpiresIn:   ch.ExpiresIn,
	}, nil
}

func (af *AuthFlowImpl) checkCaptcha(ctx context.Context, answer dto.CaptchaAnswer) error {
	if af.captcha == nil {
		return nil
	}
	if answer.CaptchaID == "" || !af.captcha.VerifyRotate(ctx, answer.CaptchaID, answer.CaptchaAngle) {
		return ErrCaptchaInvalid
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if len(password) < 8 || !hasUpper || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
