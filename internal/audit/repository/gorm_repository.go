package repository

import (
	"github.com/denly1/motoshop/internal/audit/domain"
	"gorm.io/gorm"
)

type GormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Record{})
}

func (r *GormAuditRepository) Create(record *domain.Record) error {
	return r.db.Create(record).Error
}

func (r *GormAuditRepository) FindByEntity(entity string, recordID uint, limit, offset int) ([]domain.Record, error) {
	var records []domain.Record
	err := r.db.Where("table_name = ? AND record_id = ?", entity, recordID).
		Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *GormAuditRepository) FindAll(limit, offset int) ([]domain.Record, error) {
	var records []domain.Record
	err := r.db.Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *GormAuditRepository) WithTx(tx *gorm.DB) domain.AuditRepository {
	return &GormAuditRepository{db: tx}
}
