package command

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	"github.com/denly1/motoshop/internal/category/domain"
)

// CreateCategoryCommand represents the command to create a category
type CreateCategoryCommand struct {
	Name        string
	Description string
	ParentID    *uint
	ActorUserID *uint
}

// UpdateCategoryCommand represents the command to update a category. Nil
// fields are left unchanged; a non-nil ParentID pointing at id 0 clears
// the parent.
type UpdateCategoryCommand struct {
	CategoryID  uint
	Name        *string
	Description *string
	ParentID    *uint
	ActorUserID *uint
}

// DeleteCategoryCommand represents the command to delete a category
type DeleteCategoryCommand struct {
	CategoryID  uint
	ActorUserID *uint
}

// ManageCategoryHandler handles category mutations. Parent references are
// validated for existence only; the tree is not checked for cycles.
type ManageCategoryHandler struct {
	db       *gorm.DB
	repo     domain.CategoryRepository
	recorder *audit.Recorder
}

// NewManageCategoryHandler creates a new category handler
func NewManageCategoryHandler(db *gorm.DB, repo domain.CategoryRepository, recorder *audit.Recorder) *ManageCategoryHandler {
	return &ManageCategoryHandler{db: db, repo: repo, recorder: recorder}
}

// Create executes the create category command
func (h *ManageCategoryHandler) Create(ctx context.Context, cmd CreateCategoryCommand) (*domain.Category, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	category := &domain.Category{
		Name:        cmd.Name,
		Description: cmd.Description,
		ParentID:    cmd.ParentID,
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := h.repo.WithTx(tx)
		if cmd.ParentID != nil {
			if _, err := repo.FindByID(*cmd.ParentID); err != nil {
				return fmt.Errorf("parent category: %w", err)
			}
		}
		if err := repo.Create(category); err != nil {
			return err
		}
		h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionInsert,
			auditdomain.EntityCategory, category.ID, nil, category)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Update executes the update category command
func (h *ManageCategoryHandler) Update(ctx context.Context, cmd UpdateCategoryCommand) (*domain.Category, error) {
	if cmd.CategoryID == 0 {
		return nil, fmt.Errorf("category_id is required")
	}

	var updated *domain.Category
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := h.repo.WithTx(tx)

		category, err := repo.FindByID(cmd.CategoryID)
		if err != nil {
			return err
		}
		before := *category

		if cmd.Name != nil {
			category.Name = *cmd.Name
		}
		if cmd.Description != nil {
			category.Description = *cmd.Description
		}
		if cmd.ParentID != nil {
			if *cmd.ParentID == 0 {
				category.ParentID = nil
			} else {
				if _, err := repo.FindByID(*cmd.ParentID); err != nil {
					return fmt.Errorf("parent category: %w", err)
				}
				category.ParentID = cmd.ParentID
			}
		}

		if err := repo.Update(category); err != nil {
			return err
		}
		h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionUpdate,
			auditdomain.EntityCategory, category.ID, before, category)
		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete executes the delete category command
func (h *ManageCategoryHandler) Delete(ctx context.Context, cmd DeleteCategoryCommand) error {
	if cmd.CategoryID == 0 {
		return fmt.Errorf("category_id is required")
	}

	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := h.repo.WithTx(tx)

		category, err := repo.FindByID(cmd.CategoryID)
		if err != nil {
			return err
		}

		children, err := repo.FindChildren(cmd.CategoryID)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return fmt.Errorf("category %d has child categories", cmd.CategoryID)
		}

		if err := repo.Delete(cmd.CategoryID); err != nil {
			return err
		}
		h.recorder.RecordInTx(ctx, tx, cmd.ActorUserID, auditdomain.ActionDelete,
			auditdomain.EntityCategory, category.ID, category, nil)
		return nil
	})
}
