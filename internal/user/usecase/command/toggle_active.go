package command

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	"github.com/denly1/motoshop/internal/user/domain"
)

// ToggleActiveCommand represents the command to activate/deactivate a user (admin only)
type ToggleActiveCommand struct {
	UserID      uint
	IsActive    bool
	ActorUserID *uint
}

// ToggleActiveHandler handles user activation toggle command
type ToggleActiveHandler struct {
	db       *gorm.DB
	repo     domain.UserRepository
	recorder *audit.Recorder
}

// NewToggleActiveHandler creates a new toggle active handler
func NewToggleActiveHandler(db *gorm.DB, repo domain.UserRepository, recorder *audit.Recorder) *ToggleActiveHandler {
	return &ToggleActiveHandler{db: db, repo: repo, recorder: recorder}
}

// Handle executes the toggle active command
func (h *ToggleActiveHandler) Handle(ctx context.Context, cmd ToggleActiveCommand) (*domain.User, error) {
	if cmd.UserID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	var updated *domain.User
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := h.repo.WithTx(tx)

		user, err := repo.FindByID(cmd.UserID)
		if err != nil {
			return err
		}
		before := user.Redacted()

		user.IsActive = cmd.IsActive
		if err := repo.Update(user); err != nil {
			return fmt.Errorf("failed to update user status: %w", err)
		}

		h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionUpdate,
			auditdomain.EntityUser, user.ID, before, user.Redacted())
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
