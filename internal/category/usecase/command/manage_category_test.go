package command

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/denly1/motoshop/internal/audit"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	auditrepo "github.com/denly1/motoshop/internal/audit/repository"
	"github.com/denly1/motoshop/internal/category/domain"
	"github.com/denly1/motoshop/internal/category/repository"
)

func newHandler(t *testing.T) (*ManageCategoryHandler, *gorm.DB, domain.CategoryRepository) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "categories.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Category{}, &auditdomain.Record{}))

	repo := repository.NewGormCategoryRepository(db)
	recorder := audit.NewRecorder(auditrepo.NewGormAuditRepository(db))
	return NewManageCategoryHandler(db, repo, recorder), db, repo
}

func TestCreateCategoryWithParent(t *testing.T) {
	handler, _, _ := newHandler(t)

	root, err := handler.Create(context.Background(), CreateCategoryCommand{Name: "Helmets"})
	require.NoError(t, err)

	child, err := handler.Create(context.Background(), CreateCategoryCommand{
		Name:     "Full Face",
		ParentID: &root.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)
}

func TestCreateCategoryRejectsUnknownParent(t *testing.T) {
	handler, _, _ := newHandler(t)

	missing := uint(99)
	_, err := handler.Create(context.Background(), CreateCategoryCommand{
		Name:     "Orphan",
		ParentID: &missing,
	})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestUpdateCategoryClearsParent(t *testing.T) {
	handler, _, repo := newHandler(t)

	root, err := handler.Create(context.Background(), CreateCategoryCommand{Name: "Helmets"})
	require.NoError(t, err)
	child, err := handler.Create(context.Background(), CreateCategoryCommand{
		Name:     "Full Face",
		ParentID: &root.ID,
	})
	require.NoError(t, err)

	zero := uint(0)
	_, err = handler.Update(context.Background(), UpdateCategoryCommand{
		CategoryID: child.ID,
		ParentID:   &zero,
	})
	require.NoError(t, err)

	stored, err := repo.FindByID(child.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ParentID)
}

func TestDeleteCategoryRefusesWhenChildrenExist(t *testing.T) {
	handler, _, repo := newHandler(t)

	root, err := handler.Create(context.Background(), CreateCategoryCommand{Name: "Helmets"})
	require.NoError(t, err)
	_, err = handler.Create(context.Background(), CreateCategoryCommand{
		Name:     "Full Face",
		ParentID: &root.ID,
	})
	require.NoError(t, err)

	err = handler.Delete(context.Background(), DeleteCategoryCommand{CategoryID: root.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "child categories")

	_, err = repo.FindByID(root.ID)
	assert.NoError(t, err)
}

func TestDeleteCategoryWritesAuditImage(t *testing.T) {
	handler, db, _ := newHandler(t)

	cat, err := handler.Create(context.Background(), CreateCategoryCommand{Name: "Gloves"})
	require.NoError(t, err)
	require.NoError(t, handler.Delete(context.Background(), DeleteCategoryCommand{CategoryID: cat.ID}))

	var record auditdomain.Record
	require.NoError(t, db.
		Where("table_name = ? AND action = ?", auditdomain.EntityCategory, auditdomain.ActionDelete).
		First(&record).Error)
	require.NotNil(t, record.OldValues)
	assert.Contains(t, *record.OldValues, "Gloves")
	assert.Nil(t, record.NewValues)
}
