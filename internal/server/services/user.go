package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fcastro-dev/taskroom/internal/apperr"
	"github.com/fcastro-dev/taskroom/internal/logging"
	"github.com/fcastro-dev/taskroom/internal/server/auth"
	"github.com/fcastro-dev/taskroom/internal/server/mail"
	"github.com/fcastro-dev/taskroom/internal/server/models"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/repomanager"
)

// Audit operation tags for identity flows.
const (
	opSignup             = "AUTH.SIGNUP"
	opSendValidationCode = "AUTH.SEND_VALIDATION_CODE"
	opValidateCode       = "AUTH.VALIDATE_CODE"
	opRestorePassword    = "AUTH.RESTORE_PASSWORD"
	opChangePassword     = "AUTH.CHANGE_PASSWORD"
)

// UserService implements registration, authentication and the validation
// code flows.
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	ledger        Ledger
	mailer        mail.Mailer
	logger        logging.Logger
	secretKey     []byte
	tokenValidity time.Duration
	bcryptCost    int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, ledger Ledger, mailer mail.Mailer,
	logger logging.Logger, secretKey []byte, tokenValidity time.Duration, bcryptCost int) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		ledger:        ledger,
		mailer:        mailer,
		logger:        logger.With("module", "user_service"),
		secretKey:     secretKey,
		tokenValidity: tokenValidity,
		bcryptCost:    bcryptCost,
	}
}

// Signup registers a new Active user and returns it with a fresh session
// token. Email uniqueness is checked among Active users only, so an
// Inactive account's email can be reused.
func (s *UserService) Signup(ctx context.Context, name, lastName, email, password string, rc RequestContext) (user *models.User, token string, err error) {
	auditID, err := s.ledger.Open(ctx, opSignup, "",
		map[string]string{"name": name, "lastname": lastName, "email": email}, rc.UserAgent)
	if err != nil {
		return nil, "", err
	}
	defer func() { s.ledger.Close(ctx, auditID, outcomeOf(user, err)) }()

	_, err = s.repomanager.Users(s.db).GetActiveByEmail(ctx, email)
	if err == nil {
		return nil, "", apperr.Conflict("a user with this email already exists")
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		s.logger.Error(ctx, "signup lookup error", "error", err.Error())
		return nil, "", apperr.Unexpected()
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "password hash error", "error", err.Error())
		return nil, "", apperr.Unexpected()
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        email,
		Name:         name,
		LastName:     lastName,
		PasswordHash: hash,
		Status:       models.StatusActive,
		AuditID:      auditID,
	})
	if err != nil {
		s.logger.Error(ctx, "signup insert error", "error", err.Error())
		return nil, "", apperr.Unexpected()
	}

	token, err = auth.GenerateToken(user.ID, s.secretKey, s.tokenValidity)
	if err != nil {
		return nil, "", fmt.Errorf("token error: %w", err)
	}

	return user, token, nil
}

// Signin authenticates an Active user by email and password. It is the one
// identity operation without an audit record, being read-only.
func (s *UserService) Signin(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.repomanager.Users(s.db).GetActiveByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, "", apperr.InvalidCredentials("incorrect email or password")
	}
	if err != nil {
		s.logger.Error(ctx, "signin lookup error", "error", err.Error())
		return nil, "", apperr.Unexpected()
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", apperr.InvalidCredentials("incorrect email or password")
	}

	token, err := auth.GenerateToken(user.ID, s.secretKey, s.tokenValidity)
	if err != nil {
		return nil, "", fmt.Errorf("token error: %w", err)
	}

	return user, token, nil
}

// Session reloads the authenticated user and rotates the session token.
func (s *UserService) Session(ctx context.Context, userID string) (*models.User, string, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, "", apperr.InvalidCredentials("we could not find your user, sign in again")
	}
	if err != nil {
		s.logger.Error(ctx, "session lookup error", "error", err.Error())
		return nil, "", apperr.Unexpected()
	}

	token, err := auth.GenerateToken(user.ID, s.secretKey, s.tokenValidity)
	if err != nil {
		return nil, "", fmt.Errorf("token error: %w", err)
	}

	return user, token, nil
}

// SendValidationCode issues a fresh 4-digit code for the given purpose,
// expiring any pending code the user still has, and mails it. The requester
// IP and user agent are pinned to the code for redemption checks.
func (s *UserService) SendValidationCode(ctx context.Context, email, purpose string, rc RequestContext) (userID string, err error) {
	if purpose != models.CodePurposeSignup && purpose != models.CodePurposeRestorePassword {
		return "", apperr.Validation("unknown validation code purpose")
	}

	// The actor is resolved before the audit record opens so the record can
	// reference the user the code is issued for.
	user, lookupErr := s.repomanager.Users(s.db).GetLiveByEmail(ctx, email)
	if lookupErr != nil && !errors.Is(lookupErr, apperr.ErrNotFound) {
		s.logger.Error(ctx, "code lookup error", "error", lookupErr.Error())
		return "", apperr.Unexpected()
	}

	actorID := ""
	if user != nil {
		actorID = user.ID
	}

	auditID, err := s.ledger.Open(ctx, opSendValidationCode, actorID,
		map[string]string{"email": email, "purpose": purpose}, rc.UserAgent)
	if err != nil {
		return "", err
	}
	defer func() { s.ledger.Close(ctx, auditID, outcomeOf(map[string]string{"userId": userID}, err)) }()

	if user == nil {
		return "", apperr.NotFound("we could not find a user with this email")
	}

	codes := s.repomanager.ValidationCodes(s.db)

	if pending, err := codes.GetPendingByUser(ctx, user.ID); err == nil {
		if err := codes.SetStatus(ctx, pending.ID, models.CodeStatusExpired); err != nil {
			s.logger.Error(ctx, "code expire error", "error", err.Error())
			return "", apperr.Unexpected()
		}
	} else if !errors.Is(err, apperr.ErrNotFound) {
		s.logger.Error(ctx, "pending code lookup error", "error", err.Error())
		return "", apperr.Unexpected()
	}

	code, err := randomNumericCode()
	if err != nil {
		s.logger.Error(ctx, "code generation error", "error", err.Error())
		return "", apperr.Unexpected()
	}

	if err = s.mailer.SendValidationCode(ctx, user.Email, user.Name+" "+user.LastName, code); err != nil {
		s.logger.Error(ctx, "validation code mail error", "error", err.Error())
		return "", apperr.Unexpected()
	}

	if _, err = codes.Create(ctx, &models.ValidationCode{
		Code:      code,
		UserID:    user.ID,
		AuditID:   auditID,
		Purpose:   purpose,
		IP:        rc.IP,
		UserAgent: rc.UserAgent,
		Status:    models.CodeStatusPending,
	}); err != nil {
		s.logger.Error(ctx, "code insert error", "error", err.Error())
		return "", apperr.Unexpected()
	}

	return user.ID, nil
}

// ValidateCode redeems a pending code. Every attempt bumps the retry
// counter first; the attempt whose increment reaches the limit expires the
// code and fails, even when the digits match.
func (s *UserService) ValidateCode(ctx context.Context, email, code string, rc RequestContext) (user *models.User, err error) {
	user, lookupErr := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if lookupErr != nil && !errors.Is(lookupErr, apperr.ErrNotFound) {
		s.logger.Error(ctx, "validate lookup error", "error", lookupErr.Error())
		return nil, apperr.Unexpected()
	}

	actorID := ""
	if user != nil {
		actorID = user.ID
	}

	auditID, err := s.ledger.Open(ctx, opValidateCode, actorID,
		map[string]string{"email": email}, rc.UserAgent)
	if err != nil {
		return nil, err
	}
	defer func() { s.ledger.Close(ctx, auditID, outcomeOf(user, err)) }()

	if user == nil {
		return nil, apperr.NotFound("we could not find a user with this email")
	}

	codes := s.repomanager.ValidationCodes(s.db)

	vc, err := codes.GetPendingByUser(ctx, user.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.InvalidCode("incorrect validation code")
	}
	if err != nil {
		s.logger.Error(ctx, "pending code lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	if vc.UserAgent != rc.UserAgent && vc.IP != rc.IP {
		return nil, apperr.InvalidCode("incorrect validation code")
	}

	retries, err := codes.IncrementRetries(ctx, vc.ID)
	if err != nil {
		s.logger.Error(ctx, "retry increment error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	if retries >= models.MaxCodeRetries {
		if err := codes.SetStatus(ctx, vc.ID, models.CodeStatusExpired); err != nil {
			s.logger.Error(ctx, "code expire error", "error", err.Error())
			return nil, apperr.Unexpected()
		}
		return nil, apperr.RetriesExceeded("you have exceeded the maximum number of attempts, request a new code")
	}

	if vc.Code != code {
		return nil, apperr.InvalidCode("incorrect validation code")
	}

	if err = codes.MarkValidated(ctx, vc.ID, time.Now()); err != nil {
		s.logger.Error(ctx, "code validate error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	return user, nil
}

// RestorePassword sets a new password for a user holding a validated code.
// The code must have been validated from the same IP; a user agent mismatch
// flags the account as Errored and refuses the change.
func (s *UserService) RestorePassword(ctx context.Context, userID, password string, rc RequestContext) (user *models.User, err error) {
	auditID, err := s.ledger.Open(ctx, opRestorePassword, userID,
		map[string]string{"userId": userID}, rc.UserAgent)
	if err != nil {
		return nil, err
	}
	defer func() { s.ledger.Close(ctx, auditID, outcomeOf(user, err)) }()

	userRepo := s.repomanager.Users(s.db)

	user, err = userRepo.GetActiveByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find your user")
	}
	if err != nil {
		s.logger.Error(ctx, "restore lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	vc, err := s.repomanager.ValidationCodes(s.db).GetValidatedByUser(ctx, user.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.InvalidCode("we could not authenticate you, request a new validation code")
	}
	if err != nil {
		s.logger.Error(ctx, "validated code lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	if vc.IP != rc.IP {
		return nil, apperr.InvalidCode("we could not authenticate you, request a new validation code")
	}

	if vc.UserAgent != rc.UserAgent {
		if err := userRepo.UpdateStatus(ctx, user.ID, models.StatusErrored); err != nil {
			s.logger.Error(ctx, "status update error", "error", err.Error())
			return nil, apperr.Unexpected()
		}
		return nil, apperr.InvalidCredentials("we could not authenticate your user, contact support")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "password hash error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	if err = userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Error(ctx, "password update error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	return user, nil
}

// ChangePassword replaces the password of an authenticated user after
// checking the current one. The new password must differ from the stored
// one.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string, rc RequestContext) (user *models.User, err error) {
	auditID, err := s.ledger.Open(ctx, opChangePassword, userID,
		map[string]string{"userId": userID}, rc.UserAgent)
	if err != nil {
		return nil, err
	}
	defer func() { s.ledger.Close(ctx, auditID, outcomeOf(user, err)) }()

	userRepo := s.repomanager.Users(s.db)

	user, err = userRepo.GetActiveByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find your user, sign in again")
	}
	if err != nil {
		s.logger.Error(ctx, "change password lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	if auth.CheckPassword(user.PasswordHash, newPassword) {
		return nil, apperr.Validation("the new password cannot be the same as the previous one")
	}

	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return nil, apperr.InvalidCredentials("incorrect password")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "password hash error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	if err = userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Error(ctx, "password update error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	return user, nil
}
