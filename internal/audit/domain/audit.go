package domain

import (
	"time"

	"gorm.io/gorm"
)

// Action is the kind of mutation an audit record captures.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Tracked entity names, as stored in the table_name column.
const (
	EntityProduct   = "products"
	EntityCategory  = "categories"
	EntityOrder     = "orders"
	EntityUser      = "users"
	EntityInventory = "inventory"
)

// Record is one immutable audit-log entry. Rows are append-only: nothing
// in the codebase updates or deletes them.
type Record struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id" gorm:"index"` // acting principal, nil for system-initiated mutations
	Action    Action    `json:"action" gorm:"type:varchar(16);not null"`
	Entity    string    `json:"table_name" gorm:"column:table_name;type:varchar(64);not null;index:idx_audit_entity"`
	RecordID  uint      `json:"record_id" gorm:"not null;index:idx_audit_entity"`
	OldValues *string   `json:"old_values" gorm:"type:text"`
	NewValues *string   `json:"new_values" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name
func (Record) TableName() string {
	return "audit_log"
}

// AuditRepository defines the contract for audit-log data access
type AuditRepository interface {
	Create(record *Record) error
	FindByEntity(entity string, recordID uint, limit, offset int) ([]Record, error)
	FindAll(limit, offset int) ([]Record, error)
	WithTx(tx *gorm.DB) AuditRepository
}
