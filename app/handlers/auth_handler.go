package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/openlaunch/open-launch/app/dto"
	businessflow "github.com/openlaunch/open-launch/business_flow"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Signup(c fiber.Ctx) error
	VerifyEmail(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	RefreshToken(c fiber.Ctx) error
	ForgotPassword(c fiber.Ctx) error
	ResetPassword(c fiber.Ctx) error
	Captcha(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	baseHandler
	authFlow businessflow.AuthFlow
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authFlow businessflow.AuthFlow) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(),
		authFlow:    authFlow,
	}
}

// captchaOrCacheError maps the errors shared by every captcha-guarded endpoint
func (h *AuthHandler) captchaOrCacheError(c fiber.Ctx, err error) (bool, error) {
	switch {
	case businessflow.IsCaptchaInvalid(err):
		return true, h.ErrorResponse(c, fiber.StatusBadRequest, "Captcha verification failed", "CAPTCHA_INVALID", nil)
	case businessflow.IsCacheNotAvailable(err):
		return true, h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Service temporarily unavailable", "CACHE_UNAVAILABLE", nil)
	}
	return false, nil
}

// Signup handles the user registration process
// @Summary User Registration
// @Description Register a new account and email a verification link
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "User registration data"
// @Success 201 {object} dto.APIResponse{data=dto.SignupResponse} "Account created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Email already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if problems := h.validate(&req); problems != nil {
		return h.validationFailed(c, problems)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.authFlow.Signup(ctx, &req, clientMetadata(c))
	if err != nil {
		if handled, resp := h.captchaOrCacheError(c, err); handled {
			return resp
		}
		switch {
		case businessflow.IsEmailAlreadyExists(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_EXISTS", nil)
		case businessflow.IsPasswordMismatch(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Passwords do not match", "PASSWORD_MISMATCH", nil)
		case businessflow.IsWeakPassword(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Password is too weak", "WEAK_PASSWORD", nil)
		}
		log.Println("Signup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Signup failed", "SIGNUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// VerifyEmail consumes an emailed verification token
// @Summary Verify email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.VerifyEmailRequest true "Verification token"
// @Success 200 {object} dto.APIResponse{data=dto.VerifyEmailResponse} "Email verified"
// @Failure 400 {object} dto.APIResponse "Invalid or expired token"
// @Failure 409 {object} dto.APIResponse "Already verified"
// @Router /api/v1/auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if problems := h.validate(&req); problems != nil {
		return h.validationFailed(c, problems)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.authFlow.VerifyEmail(ctx, &req, clientMetadata(c))
	if err != nil {
		if handled, resp := h.captchaOrCacheError(c, err); handled {
			return resp
		}
		switch {
		case businessflow.IsInvalidToken(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid or expired token", "INVALID_TOKEN", nil)
		case businessflow.IsAlreadyVerified(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Email already verified", "ALREADY_VERIFIED", nil)
		case businessflow.IsUserNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
		}
		log.Println("Email verification failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Email verification failed", "VERIFICATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Login handles email/password login
// @Summary User Login
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 403 {object} dto.APIResponse "Email not verified"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if problems := h.validate(&req); problems != nil {
		return h.validationFailed(c, problems)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.authFlow.Login(ctx, &req, clientMetadata(c))
	if err != nil {
		if handled, resp := h.captchaOrCacheError(c, err); handled {
			return resp
		}
		switch {
		case businessflow.IsInvalidCredentials(err):
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS", nil)
		case businessflow.IsEmailNotVerified(err):
			return h.ErrorResponse(c, fiber.StatusForbidden, "Email address is not verified", "EMAIL_NOT_VERIFIED", nil)
		}
		log.Println("Login failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// RefreshToken rotates a refresh token
// @Summary Refresh tokens
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "New token pair"
// @Failure 401 {object} dto.APIResponse "Invalid refresh token"
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if problems := h.validate(&req); problems != nil {
		return h.validationFailed(c, problems)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.authFlow.RefreshTokens(ctx, &req)
	if err != nil {
		if businessflow.IsInvalidToken(err) || businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid refresh token", "INVALID_TOKEN", nil)
		}
		log.Println("Token refresh failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Token refresh failed", "REFRESH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tokens refreshed", result)
}

// ForgotPassword emails a password reset link
// @Summary Forgot Password
// @Description Always succeeds so the response does not reveal whether the account exists
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.APIResponse{data=dto.ForgotPasswordResponse} "Reset link sent if the account exists"
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if problems := h.validate(&req); problems != nil {
		return h.validationFailed(c, problems)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.authFlow.ForgotPassword(ctx, &req, clientMetadata(c))
	if err != nil {
		if handled, resp := h.captchaOrCacheError(c, err); handled {
			return resp
		}
		log.Println("Forgot password failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Password reset failed", "PASSWORD_RESET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ResetPassword completes a password reset with the emailed token
// @Summary Reset Password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} dto.APIResponse{data=dto.ResetPasswordResponse} "Password changed"
// @Failure 400 {object} dto.APIResponse "Invalid token or password"
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if problems := h.validate(&req); problems != nil {
		return h.validationFailed(c, problems)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.authFlow.ResetPassword(ctx, &req, clientMetadata(c))
	if err != nil {
		if handled, resp := h.captchaOrCacheError(c, err); handled {
			return resp
		}
		switch {
		case businessflow.IsInvalidToken(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid or expired token", "INVALID_TOKEN", nil)
		case businessflow.IsPasswordMismatch(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Passwords do not match", "PASSWORD_MISMATCH", nil)
		case businessflow.IsWeakPassword(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Password is too weak", "WEAK_PASSWORD", nil)
		}
		log.Println("Reset password failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Password reset failed", "PASSWORD_RESET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Captcha issues a rotate challenge
// @Summary Captcha challenge
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CaptchaChallengeResponse} "Challenge issued"
// @Failure 404 {object} dto.APIResponse "Captcha disabled"
// @Router /api/v1/auth/captcha [get]
func (h *AuthHandler) Captcha(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.authFlow.NewCaptcha(ctx)
	if err != nil {
		if businessflow.IsCaptchaDisabled(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Captcha is disabled", "CAPTCHA_DISABLED", nil)
		}
		log.Println("Captcha generation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Captcha generation failed", "CAPTCHA_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Captcha generated", result)
}
