package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrCategoryNotFound = errors.New("category not found")

// Category is a node of the catalog tree. ParentID is nil for root
// categories. The tree is not checked for cycles on write.
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	ParentID    *uint     `json:"parent_id" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Category) TableName() string {
	return "categories"
}

// CategoryRepository defines the contract for category data access
type CategoryRepository interface {
	Create(category *Category) error
	FindByID(id uint) (*Category, error)
	FindAll(limit, offset int) ([]Category, error)
	FindChildren(parentID uint) ([]Category, error)
	Update(category *Category) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) CategoryRepository
}
