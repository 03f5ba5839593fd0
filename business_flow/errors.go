// Package businessflow contains the core business logic and use cases of the launch directory
package businessflow

import (
	"errors"
	"fmt"

	"github.com/openlaunch/open-launch/app/services"
)

// Business flow error constants
var (
	// Project-related errors
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectNotOngoing   = errors.New("project is not accepting upvotes")
	ErrInvalidLaunchType   = errors.New("invalid launch type")
	ErrLaunchDateInPast    = errors.New("launch date must not be in the past")
	ErrCommentBodyRequired = errors.New("comment body is required")
	ErrCommentBodyTooLong  = errors.New("comment body is too long")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")

	// Payment-related errors
	ErrPaymentsDisabled        = errors.New("payment functionality is not enabled")
	ErrSessionIDRequired       = errors.New("session_id is required")
	ErrCheckoutSessionNotFound = services.ErrCheckoutSessionNotFound
	ErrPaymentProviderFailed   = errors.New("failed to verify payment with provider")
	ErrProjectReferenceMissing = errors.New("project reference not found in session")

	// User/auth-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email is not verified")
	ErrAlreadyVerified    = errors.New("already verified")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrCaptchaInvalid     = errors.New("captcha verification failed")
	ErrCaptchaDisabled    = errors.New("captcha is not enabled")
	ErrCacheNotAvailable  = errors.New("cache not available")
	ErrWeakPassword       = errors.New("password does not meet strength requirements")
	ErrPasswordMismatch   = errors.New("passwords do not match")

	// Daily job errors
	ErrDailyTasksAlreadyRunning = errors.New("daily tasks are already running")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsProjectNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound)
}

func IsProjectNotOngoing(err error) bool {
	return errors.Is(err, ErrProjectNotOngoing)
}

func IsInvalidLaunchType(err error) bool {
	return errors.Is(err, ErrInvalidLaunchType)
}

func IsLaunchDateInPast(err error) bool {
	return errors.Is(err, ErrLaunchDateInPast)
}

func IsInvalidDate(err error) bool {
	return errors.Is(err, ErrInvalidDate)
}

func IsCommentBodyInvalid(err error) bool {
	return errors.Is(err, ErrCommentBodyRequired) || errors.Is(err, ErrCommentBodyTooLong)
}

func IsPaymentsDisabled(err error) bool {
	return errors.Is(err, ErrPaymentsDisabled)
}

func IsSessionIDRequired(err error) bool {
	return errors.Is(err, ErrSessionIDRequired)
}

func IsCheckoutSessionNotFound(err error) bool {
	return errors.Is(err, ErrCheckoutSessionNotFound)
}

func IsPaymentProviderFailed(err error) bool {
	return errors.Is(err, ErrPaymentProviderFailed)
}

func IsProjectReferenceMissing(err error) bool {
	return errors.Is(err, ErrProjectReferenceMissing)
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsEmailNotVerified(err error) bool {
	return errors.Is(err, ErrEmailNotVerified)
}

func IsAlreadyVerified(err error) bool {
	return errors.Is(err, ErrAlreadyVerified)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsCaptchaInvalid(err error) bool {
	return errors.Is(err, ErrCaptchaInvalid)
}

func IsCaptchaDisabled(err error) bool {
	return errors.Is(err, ErrCaptchaDisabled)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}

func IsWeakPassword(err error) bool {
	return errors.Is(err, ErrWeakPassword)
}

func IsDailyTasksAlreadyRunning(err error) bool {
	return errors.Is(err, ErrDailyTasksAlreadyRunning)
}

func IsPasswordMismatch(err error) bool {
	return errors.Is(err, ErrPasswordMismatch)
}
