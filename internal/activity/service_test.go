package activity

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
)

func testService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ActivityLog{}))

	return NewService(db)
}

func TestLogAndList(t *testing.T) {
	svc := testService(t)

	svc.Success("Login", "User logged in", "jdoe", models.ActivityCategoryAuth, "10.0.0.5")
	svc.Failure("Login", "Bad password", "intruder", models.ActivityCategoryAuth, "10.0.0.9")
	svc.Success("Create Item", "Tracking ID 17", "jdoe", models.ActivityCategoryItems, "10.0.0.5")

	all, err := svc.List(Filter{}, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	auth, err := svc.List(Filter{Category: models.ActivityCategoryAuth}, 0)
	require.NoError(t, err)
	assert.Len(t, auth, 2)

	failed, err := svc.List(Filter{Status: models.ActivityStatusFailed}, 0)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "intruder", failed[0].PerformedBy)

	byUser, err := svc.List(Filter{PerformedBy: "jdoe"}, 1)
	require.NoError(t, err)
	require.Len(t, byUser, 1, "limit caps the result")
}

func TestClear(t *testing.T) {
	svc := testService(t)

	svc.Success("Login", "User logged in", "jdoe", models.ActivityCategoryAuth, "")
	require.NoError(t, svc.Clear("superadmin", "10.0.0.1"))

	entries, err := svc.List(Filter{}, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1, "the clear itself is recorded")
	assert.Equal(t, "Clear Activity Log", entries[0].Action)
	assert.Equal(t, models.ActivityCategorySystem, entries[0].Category)
}
