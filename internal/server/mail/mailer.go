// Package mail dispatches transactional email through an external
// Brevo-compatible REST API.
package mail

import "context"

// Mailer sends the validation codes issued by the identity services.
// Implementations must not log or persist the code.
type Mailer interface {
	SendValidationCode(ctx context.Context, toEmail, toName, code string) error
}
