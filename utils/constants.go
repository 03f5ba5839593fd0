package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// EmailVerificationTTL is how long an email verification link stays valid
	EmailVerificationTTL = 24 * time.Hour

	// PasswordResetTTL is how long a password reset link stays valid
	PasswordResetTTL = time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Launch directory constants
const (
	// DefaultSiteName is used in emails and announcements when SITE_NAME is unset
	DefaultSiteName = "Open Launch"

	// DefaultPaymentWindow is how long a payment_pending project may wait for checkout
	DefaultPaymentWindow = 24 * time.Hour

	// MaxCommentLength bounds comment bodies
	MaxCommentLength = 2000
)
