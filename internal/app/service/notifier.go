package service

import (
	"context"
	"time"
)

// Notifier delivers transactional email. It is injected into services rather
// than reached through a global so tests can observe and fail deliveries.
// Failures during document-status notification are logged and swallowed;
// failures during OTP dispatch roll the challenge back (see AuthService).
type Notifier interface {
	SendOtp(to, code string, validFor time.Duration) error
	SendVerificationApproved(to, name string) error
	SendVerificationRejected(to, name string, rejections map[string]string) error
	SendAccountStatusChanged(to, name, status, reason string) error
}

// TokenBlacklist revokes bearer tokens until their natural expiry
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string, expiry time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
