package setting

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Setting{}))

	return db
}

func TestSetAndGet(t *testing.T) {
	db := testDB(t)

	require.NoError(t, Set(db, "greeting", []byte("hello")))

	setting, err := Get(db, "greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), setting.Value)

	require.NoError(t, Set(db, "greeting", []byte("goodbye")))

	setting, err = Get(db, "greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte("goodbye"), setting.Value)

	var count int64
	require.NoError(t, db.Model(&models.Setting{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "overwriting must not create a second row")
}

func TestGetMissing(t *testing.T) {
	db := testDB(t)

	_, err := Get(db, "missing")
	assert.ErrorIs(t, err, ErrSettingNotFound)

	_, err = Get(db, "")
	assert.ErrorIs(t, err, ErrSettingNameEmpty)

	_, err = Get(nil, "anything")
	assert.ErrorIs(t, err, ErrDBNil)
}

func TestLastSyncRoundTrip(t *testing.T) {
	db := testDB(t)

	_, err := LastSync(db)
	assert.ErrorIs(t, err, ErrSettingNotFound)

	at := time.Date(2026, 8, 28, 2, 0, 0, 0, time.UTC)
	require.NoError(t, SetLastSync(db, SyncStatus{
		At:      at,
		Success: true,
		Summary: "Sync completed. Created: 2, Updated: 0, Deactivated: 0, Roles changed: 0.",
		Actor:   "System (Scheduled)",
	}))

	status, err := LastSync(db)
	require.NoError(t, err)
	assert.True(t, status.Success)
	assert.True(t, status.At.Equal(at))
	assert.Equal(t, "System (Scheduled)", status.Actor)

	require.NoError(t, SetLastSync(db, SyncStatus{At: at.Add(time.Hour), Success: false, Summary: "Sync failed."}))

	status, err = LastSync(db)
	require.NoError(t, err)
	assert.False(t, status.Success)
	assert.Equal(t, "Sync failed.", status.Summary)
}
