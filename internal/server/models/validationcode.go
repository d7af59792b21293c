package models

import "time"

// Validation code purposes.
const (
	CodePurposeSignup          = "SIGNUP"
	CodePurposeRestorePassword = "RESTORE_PASSWORD"
)

// Validation code lifecycle.
const (
	CodeStatusPending   = "PENDING"
	CodeStatusValidated = "VALIDATED"
	CodeStatusExpired   = "EXPIRED"
)

// MaxCodeRetries is the number of redeem attempts allowed per code. The
// attempt whose increment reaches this value fails with RetriesExceeded.
const MaxCodeRetries = 3

// ValidationCode is a single-use 4-digit code mailed to a user. The requester
// IP and user agent recorded at issue time are compared on redemption.
type ValidationCode struct {
	ID          string
	Code        string
	UserID      string
	AuditID     string
	Purpose     string
	IP          string
	UserAgent   string
	Status      string
	Retries     int
	CreatedAt   time.Time
	ValidatedAt *time.Time
}
