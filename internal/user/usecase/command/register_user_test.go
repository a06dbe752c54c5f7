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
	"github.com/denly1/motoshop/internal/user/domain"
	"github.com/denly1/motoshop/internal/user/repository"
	"github.com/denly1/motoshop/pkg/auth"
)

func newUserTestEnv(t *testing.T) (*gorm.DB, domain.UserRepository, *audit.Recorder) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "users.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &auditdomain.Record{}))
	return db, repository.NewGormUserRepository(db), audit.NewRecorder(auditrepo.NewGormAuditRepository(db))
}

func registerTestUser(t *testing.T, db *gorm.DB, repo domain.UserRepository, recorder *audit.Recorder) *domain.User {
	t.Helper()
	user, err := NewRegisterUserHandler(db, repo, recorder).Handle(context.Background(), RegisterUserCommand{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret!",
		FullName: "Alice Example",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterHashesPassword(t *testing.T) {
	db, repo, recorder := newUserTestEnv(t)
	user := registerTestUser(t, db, repo, recorder)

	assert.NotEqual(t, "s3cret!", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "s3cret!"))
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.True(t, user.IsActive)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	db, repo, recorder := newUserTestEnv(t)
	registerTestUser(t, db, repo, recorder)

	_, err := NewRegisterUserHandler(db, repo, recorder).Handle(context.Background(), RegisterUserCommand{
		Username: "alice",
		Email:    "other@example.com",
		Password: "s3cret!",
		FullName: "Other",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username already exists")
}

func TestRegisterKeepsPasswordOutOfAuditLog(t *testing.T) {
	db, repo, recorder := newUserTestEnv(t)
	user := registerTestUser(t, db, repo, recorder)

	var record auditdomain.Record
	require.NoError(t, db.Where("table_name = ?", auditdomain.EntityUser).First(&record).Error)
	assert.Equal(t, auditdomain.ActionInsert, record.Action)
	require.NotNil(t, record.NewValues)
	assert.Contains(t, *record.NewValues, user.Username)
	assert.NotContains(t, *record.NewValues, user.Password)
}

func TestLoginReturnsValidToken(t *testing.T) {
	db, repo, recorder := newUserTestEnv(t)
	user := registerTestUser(t, db, repo, recorder)

	resp, err := NewLoginUserHandler(repo).Handle(LoginUserCommand{
		Username: "alice",
		Password: "s3cret!",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db, repo, recorder := newUserTestEnv(t)
	registerTestUser(t, db, repo, recorder)

	_, err := NewLoginUserHandler(repo).Handle(LoginUserCommand{
		Username: "alice",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	db, repo, recorder := newUserTestEnv(t)
	user := registerTestUser(t, db, repo, recorder)

	_, err := NewToggleActiveHandler(db, repo, recorder).Handle(context.Background(), ToggleActiveCommand{
		UserID:   user.ID,
		IsActive: false,
	})
	require.NoError(t, err)

	_, err = NewLoginUserHandler(repo).Handle(LoginUserCommand{
		Username: "alice",
		Password: "s3cret!",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deactivated")
}
