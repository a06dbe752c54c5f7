package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/denly1/motoshop/internal/audit/domain"
	"github.com/denly1/motoshop/internal/audit/repository"
	invdomain "github.com/denly1/motoshop/internal/inventory/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "audit.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Record{}, &invdomain.InventoryRecord{}))
	return db
}

func newRecorder(db *gorm.DB) *Recorder {
	return NewRecorder(repository.NewGormAuditRepository(db))
}

func lastRecord(t *testing.T, db *gorm.DB) domain.Record {
	t.Helper()
	var record domain.Record
	require.NoError(t, db.Order("id DESC").First(&record).Error)
	return record
}

func TestRecordInsertImage(t *testing.T) {
	db := newTestDB(t)
	recorder := newRecorder(db)

	actor := uint(5)
	after := invdomain.InventoryRecord{ID: 1, ProductID: 1, Quantity: 10}
	recorder.Record(context.Background(), &actor, domain.ActionInsert, domain.EntityInventory, 1, nil, after)

	record := lastRecord(t, db)
	assert.Equal(t, domain.ActionInsert, record.Action)
	assert.Equal(t, domain.EntityInventory, record.Entity)
	assert.Equal(t, uint(1), record.RecordID)
	require.NotNil(t, record.UserID)
	assert.Equal(t, actor, *record.UserID)
	assert.Nil(t, record.OldValues)
	require.NotNil(t, record.NewValues)
	assert.Contains(t, *record.NewValues, `"quantity":10`)
}

func TestRecordDeleteImage(t *testing.T) {
	db := newTestDB(t)
	recorder := newRecorder(db)

	before := invdomain.InventoryRecord{ID: 1, ProductID: 1, Quantity: 3}
	recorder.Record(context.Background(), nil, domain.ActionDelete, domain.EntityInventory, 1, before, nil)

	record := lastRecord(t, db)
	assert.Equal(t, domain.ActionDelete, record.Action)
	assert.Nil(t, record.UserID)
	require.NotNil(t, record.OldValues)
	assert.Nil(t, record.NewValues)
}

func TestRecordInTxCommitsWithCaller(t *testing.T) {
	db := newTestDB(t)
	recorder := newRecorder(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		rec := invdomain.InventoryRecord{ProductID: 1, Quantity: 5}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		recorder.RecordInTx(context.Background(), tx, nil, domain.ActionInsert,
			domain.EntityInventory, rec.ID, nil, rec)
		return nil
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.Record{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordInTxRollsBackWithCaller(t *testing.T) {
	db := newTestDB(t)
	recorder := newRecorder(db)

	sentinel := assert.AnError
	err := db.Transaction(func(tx *gorm.DB) error {
		rec := invdomain.InventoryRecord{ProductID: 1, Quantity: 5}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		recorder.RecordInTx(context.Background(), tx, nil, domain.ActionInsert,
			domain.EntityInventory, rec.ID, nil, rec)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	// Neither the mutation nor its audit record survives the rollback.
	var audits, stock int64
	require.NoError(t, db.Model(&domain.Record{}).Count(&audits).Error)
	require.NoError(t, db.Model(&invdomain.InventoryRecord{}).Count(&stock).Error)
	assert.Zero(t, audits)
	assert.Zero(t, stock)
}

func TestAuditFailureDoesNotAbortCallerTransaction(t *testing.T) {
	db := newTestDB(t)
	recorder := newRecorder(db)

	// Break the audit table so the insert inside the savepoint fails.
	require.NoError(t, db.Migrator().DropTable(&domain.Record{}))

	err := db.Transaction(func(tx *gorm.DB) error {
		rec := invdomain.InventoryRecord{ProductID: 1, Quantity: 5}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		recorder.RecordInTx(context.Background(), tx, nil, domain.ActionInsert,
			domain.EntityInventory, rec.ID, nil, rec)
		return nil
	})
	require.NoError(t, err)

	var stock int64
	require.NoError(t, db.Model(&invdomain.InventoryRecord{}).Count(&stock).Error)
	assert.Equal(t, int64(1), stock)
}

func TestSnapshotFailureSkipsRecord(t *testing.T) {
	db := newTestDB(t)
	recorder := newRecorder(db)

	// Channels cannot be marshalled to JSON.
	recorder.Record(context.Background(), nil, domain.ActionInsert, domain.EntityInventory, 1, nil, make(chan int))

	var count int64
	require.NoError(t, db.Model(&domain.Record{}).Count(&count).Error)
	assert.Zero(t, count)
}
