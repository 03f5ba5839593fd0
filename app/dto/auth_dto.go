package dto

import "time"

// CaptchaAnswer carries the solution of a rotate challenge; it is ignored when captcha is disabled
type CaptchaAnswer struct {
	CaptchaID    string  `json:"captcha_id,omitempty" validate:"omitempty,max=64"`
	CaptchaAngle float64 `json:"captcha_angle,omitempty" validate:"omitempty,min=0,max=360"`
}

// SignupRequest represents the signup form data
type SignupRequest struct {
	CaptchaAnswer
	Name            string `json:"name" validate:"omitempty,max=255" example:"Ada Lovelace"`
	Email           string `json:"email" validate:"required,email,max=255" example:"ada@example.com"`
	Password        string `json:"password" validate:"required,min=8,max=100,password_strength" example:"SecurePass123!"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type SignupResponse struct {
	Message           string `json:"message"`
	UserID            uint   `json:"user_id"`
	VerificationSent  bool   `json:"verification_sent"`
	VerificationError string `json:"verification_error,omitempty"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required,min=16,max=128"`
}

type VerifyEmailResponse struct {
	Message    string    `json:"message"`
	UserID     uint      `json:"user_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	CaptchaAnswer
	Email    string `json:"email" validate:"required,email,max=255" example:"ada@example.com"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// LoginResponse carries the issued token pair
type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type" example:"Bearer"`
	ExpiresIn    int      `json:"expires_in" example:"3600"`
	User         UserInfo `json:"user"`
}

// UserInfo represents user information returned in auth responses
type UserInfo struct {
	ID            uint   `json:"id"`
	UUID          string `json:"uuid"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     string `json:"created_at"`
}

// ForgotPasswordRequest represents the request to initiate password reset
type ForgotPasswordRequest struct {
	CaptchaAnswer
	Email string `json:"email" validate:"required,email,max=255"`
}

type ForgotPasswordResponse struct {
	Message string `json:"message" example:"If the account exists, a reset link has been sent"`
}

// ResetPasswordRequest represents the request to reset password with an emailed token
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required,min=16,max=128"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=100,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type ResetPasswordResponse struct {
	Message           string    `json:"message" example:"New password saved"`
	PasswordChangedAt time.Time `json:"password_changed_at"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CaptchaChallengeResponse is a rotate challenge for the client to solve
type CaptchaChallengeResponse struct {
	ID          string `json:"id"`
	MasterImage string `json:"master_image"`
	ThumbImage  string `json:"thumb_image"`
	ExpiresIn   int    `json:"expires_in"`
}
