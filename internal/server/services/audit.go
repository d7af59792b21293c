// Package services contains the server-side business logic. Every mutating
// operation brackets its work with one audit open/close pair: the open must
// succeed or the operation aborts, the close is best-effort and always runs.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fcastro-dev/taskroom/internal/apperr"
	"github.com/fcastro-dev/taskroom/internal/logging"
	"github.com/fcastro-dev/taskroom/internal/server/models"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/repomanager"
)

// RequestContext carries the per-request caller details attached to audit
// records and validation codes.
type RequestContext struct {
	ActorID   string
	UserAgent string
	IP        string
}

// Ledger is the audit collaborator injected into every service. Tests
// substitute an in-memory fake.
type Ledger interface {
	// Open serializes the input and inserts a new audit record, returning
	// its id. A failure here is fatal for the calling operation.
	Open(ctx context.Context, operation string, actorID string, input any, userAgent string) (string, error)

	// Close serializes and attaches the outcome to an existing record.
	// Fire-and-forget: failures are logged, never propagated, because the
	// business operation has already happened.
	Close(ctx context.Context, auditID string, outcome any)
}

type AuditService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewAuditService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *AuditService {
	return &AuditService{db: db, repomanager: m, logger: logger.With("module", "audit")}
}

func (s *AuditService) Open(ctx context.Context, operation string, actorID string, input any, userAgent string) (string, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("audit input marshal error: %w", err)
	}

	rec := &models.AuditRecord{
		DataIn:    string(payload),
		Operation: operation,
		UserAgent: userAgent,
	}
	if actorID != "" {
		rec.ActorID = sql.NullString{String: actorID, Valid: true}
	}

	rec, err = s.repomanager.Audit(s.db).Create(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("audit open error: %w", err)
	}

	return rec.ID, nil
}

func (s *AuditService) Close(ctx context.Context, auditID string, outcome any) {
	if auditID == "" {
		return
	}

	if err := s.repomanager.Audit(s.db).AttachOutput(ctx, auditID, serializeOutcome(outcome)); err != nil {
		s.logger.Error(ctx, "audit close error", "audit_id", auditID, "error", err.Error())
	}
}

// serializeOutcome renders the operation result for the ledger. Errors are
// stored in the same {errors, status} shape the HTTP layer responds with.
func serializeOutcome(outcome any) string {
	if err, ok := outcome.(error); ok {
		var e *apperr.Error
		if errors.As(err, &e) {
			payload, _ := json.Marshal(map[string]any{"errors": e.Messages, "status": e.Status})
			return string(payload)
		}
		payload, _ := json.Marshal(map[string]any{"errors": []string{err.Error()}})
		return string(payload)
	}

	payload, err := json.Marshal(outcome)
	if err != nil {
		return `{"errors":["unserializable outcome"]}`
	}
	return string(payload)
}

// outcomeOf picks what to attach to the ledger when an operation returns:
// the error if it failed, the result otherwise.
func outcomeOf(result any, err error) any {
	if err != nil {
		return err
	}
	return result
}
