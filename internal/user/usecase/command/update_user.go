package command

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	"github.com/denly1/motoshop/internal/user/domain"
)

// UpdateUserCommand represents the command to update a user profile. Nil
// fields are left unchanged.
type UpdateUserCommand struct {
	UserID      uint
	Email       *string
	FullName    *string
	ActorUserID *uint
}

// UpdateUserHandler handles user update command
type UpdateUserHandler struct {
	db       *gorm.DB
	repo     domain.UserRepository
	recorder *audit.Recorder
}

// NewUpdateUserHandler creates a new update user handler
func NewUpdateUserHandler(db *gorm.DB, repo domain.UserRepository, recorder *audit.Recorder) *UpdateUserHandler {
	return &UpdateUserHandler{db: db, repo: repo, recorder: recorder}
}

// Handle executes the update user command
func (h *UpdateUserHandler) Handle(ctx context.Context, cmd UpdateUserCommand) (*domain.User, error) {
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

		if cmd.Email != nil {
			if *cmd.Email == "" {
				return fmt.Errorf("email cannot be empty")
			}
			user.Email = *cmd.Email
		}
		if cmd.FullName != nil {
			user.FullName = *cmd.FullName
		}

		if err := repo.Update(user); err != nil {
			return err
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
