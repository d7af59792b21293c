package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fcastro-dev/taskroom/internal/apperr"
	"github.com/fcastro-dev/taskroom/internal/dbx"
	"github.com/fcastro-dev/taskroom/internal/logging"
	"github.com/fcastro-dev/taskroom/internal/server/auth"
	"github.com/fcastro-dev/taskroom/internal/server/models"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/repomanager"
)

// Audit operation tags for group flows.
const (
	opCreateGroup = "GROUP.ADD_GROUP"
	opJoinGroup   = "GROUP.ADD_USER_GROUP"
	opRemoveGroup = "GROUP.REMOVE_GROUP"
)

// inviteCodeLength is the length of the generated group invite codes.
const inviteCodeLength = 6

// GroupService implements group creation, joining and listing.
type GroupService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ledger      Ledger
	logger      logging.Logger
	bcryptCost  int
}

func NewGroupService(db *sql.DB, m repomanager.RepositoryManager, ledger Ledger,
	logger logging.Logger, bcryptCost int) *GroupService {
	return &GroupService{
		db:          db,
		repomanager: m,
		ledger:      ledger,
		logger:      logger.With("module", "group_service"),
		bcryptCost:  bcryptCost,
	}
}

// Create inserts a new group with a unique invite code and enrolls the
// creator as its first member. Group and membership land in one
// transaction.
func (s *GroupService) Create(ctx context.Context, name, password string, rc RequestContext) (group *models.Group, err error) {
	auditID, err := s.ledger.Open(ctx, opCreateGroup, rc.ActorID,
		map[string]string{"name": name}, rc.UserAgent)
	if err != nil {
		return nil, err
	}
	defer func() { s.ledger.Close(ctx, auditID, outcomeOf(group, err)) }()

	creator, err := s.repomanager.Users(s.db).GetActiveByID(ctx, rc.ActorID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find your user, sign in again")
	}
	if err != nil {
		s.logger.Error(ctx, "group creator lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	hash := ""
	if password != "" {
		hash, err = auth.HashPassword(password, s.bcryptCost)
		if err != nil {
			s.logger.Error(ctx, "password hash error", "error", err.Error())
			return nil, apperr.Unexpected()
		}
	}

	code, err := s.uniqueInviteCode(ctx)
	if err != nil {
		s.logger.Error(ctx, "invite code error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		group, err = s.repomanager.Groups(tx).Create(ctx, &models.Group{
			Name:         name,
			InviteCode:   code,
			PasswordHash: hash,
			Status:       models.StatusActive,
			CreatedByID:  creator.ID,
			AuditID:      auditID,
		})
		if err != nil {
			return err
		}

		_, err = s.repomanager.Memberships(tx).Create(ctx, &models.Membership{
			UserID:  creator.ID,
			GroupID: group.ID,
			Status:  models.StatusActive,
			AuditID: auditID,
		})
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "group insert error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	return group, nil
}

// uniqueInviteCode draws codes until one misses the Active groups table.
func (s *GroupService) uniqueInviteCode(ctx context.Context) (string, error) {
	groups := s.repomanager.Groups(s.db)
	for {
		code, err := randomInviteCode(inviteCodeLength)
		if err != nil {
			return "", err
		}

		_, err = groups.GetActiveByCode(ctx, code)
		if errors.Is(err, apperr.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// Join enrolls the caller in the group behind the invite code. Checks run
// in a fixed order: group existence, existing membership, group password.
func (s *GroupService) Join(ctx context.Context, code, password string, rc RequestContext) (group *models.Group, err error) {
	auditID, err := s.ledger.Open(ctx, opJoinGroup, rc.ActorID,
		map[string]string{"groupCode": code}, rc.UserAgent)
	if err != nil {
		return nil, err
	}
	defer func() { s.ledger.Close(ctx, auditID, outcomeOf(group, err)) }()

	user, err := s.repomanager.Users(s.db).GetActiveByID(ctx, rc.ActorID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find your user, sign in again")
	}
	if err != nil {
		s.logger.Error(ctx, "join user lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	group, err = s.repomanager.Groups(s.db).GetActiveByCode(ctx, strings.ToUpper(code))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find the group, check the code")
	}
	if err != nil {
		s.logger.Error(ctx, "join group lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	_, err = s.repomanager.Memberships(s.db).GetActive(ctx, user.ID, group.ID)
	if err == nil {
		return nil, apperr.AlreadyMember("you already belong to this group")
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		s.logger.Error(ctx, "membership lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	if group.PasswordHash != "" && !auth.CheckPassword(group.PasswordHash, password) {
		return nil, apperr.InvalidCredentials("incorrect group password")
	}

	if _, err = s.repomanager.Memberships(s.db).Create(ctx, &models.Membership{
		UserID:  user.ID,
		GroupID: group.ID,
		Status:  models.StatusActive,
		AuditID: auditID,
	}); err != nil {
		s.logger.Error(ctx, "membership insert error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	return group, nil
}

// GetByID returns a single Active group.
func (s *GroupService) GetByID(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.repomanager.Groups(s.db).GetActiveByID(ctx, groupID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("we could not find the group")
	}
	if err != nil {
		s.logger.Error(ctx, "group lookup error", "error", err.Error())
		return nil, apperr.Unexpected()
	}
	return group, nil
}

// ListForUser returns the caller's Active groups; CanRemove marks the ones
// the caller created.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]*models.GroupSummary, error) {
	groups, err := s.repomanager.Groups(s.db).ListActiveForUser(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "group list error", "error", err.Error())
		return nil, apperr.Unexpected()
	}

	summaries := make([]*models.GroupSummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, &models.GroupSummary{
			ID:         g.ID,
			Name:       g.Name,
			InviteCode: g.InviteCode,
			CreatedAt:  g.CreatedAt,
			CanRemove:  g.CreatedByID == userID,
		})
	}

	return summaries, nil
}

// Remove flags a group Inactive. Tasks and memberships keep their rows; the
// group simply stops appearing in listings and lookups.
func (s *GroupService) Remove(ctx context.Context, groupID string, rc RequestContext) (err error) {
	auditID, err := s.ledger.Open(ctx, opRemoveGroup, rc.ActorID,
		map[string]string{"groupId": groupID}, rc.UserAgent)
	if err != nil {
		return err
	}
	defer func() { s.ledger.Close(ctx, auditID, outcomeOf(map[string]string{"groupId": groupID}, err)) }()

	group, err := s.repomanager.Groups(s.db).GetActiveByID(ctx, groupID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound("we could not find the group")
	}
	if err != nil {
		s.logger.Error(ctx, "group lookup error", "error", err.Error())
		return apperr.Unexpected()
	}

	if err = s.repomanager.Groups(s.db).SetStatus(ctx, group.ID, models.StatusInactive); err != nil {
		s.logger.Error(ctx, "group remove error", "error", err.Error())
		return apperr.Unexpected()
	}

	return nil
}
