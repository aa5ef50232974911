package dirsync

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/directory"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ADGroupMapping{}))

	return db
}

func TestGormStoreListActiveMappings(t *testing.T) {
	db := testDB(t)
	store := NewGormStore(db)

	require.NoError(t, db.Create(&models.ADGroupMapping{GroupName: "App-Admins", MappedRole: models.RoleSuperAdmin, Active: true}).Error)
	require.NoError(t, db.Create(&models.ADGroupMapping{GroupName: "Old-Group", MappedRole: models.RoleUser, Active: false}).Error)
	require.NoError(t, db.Create(&models.ADGroupMapping{GroupName: "App-Users", MappedRole: models.RoleUser, Active: true}).Error)

	mappings, err := store.ListActiveMappings()
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, "App-Admins", mappings[0].GroupName)
	assert.Equal(t, "App-Users", mappings[1].GroupName)
}

func TestGormStoreFindBySamAccountName(t *testing.T) {
	db := testDB(t)
	store := NewGormStore(db)

	require.NoError(t, store.Create(&models.User{
		Active:         true,
		Username:       "jdoe",
		Email:          "jdoe@corp.example",
		Role:           models.RoleUser,
		AuthSource:     models.AuthSourceActiveDirectory,
		SamAccountName: "jdoe",
	}))

	user, err := store.FindBySamAccountName("jdoe")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "jdoe@corp.example", user.Email)

	missing, err := store.FindBySamAccountName("nobody")
	require.NoError(t, err)
	assert.Nil(t, missing, "absence is not an error")
}

func TestGormStoreFindBySamAccountNameIgnoresCase(t *testing.T) {
	db := testDB(t)
	store := NewGormStore(db)

	require.NoError(t, store.Create(&models.User{
		Active:         true,
		Username:       "JDoe",
		Role:           models.RoleUser,
		AuthSource:     models.AuthSourceActiveDirectory,
		SamAccountName: "JDoe",
	}))

	for _, sam := range []string{"jdoe", "JDOE", "JDoe"} {
		user, err := store.FindBySamAccountName(sam)
		require.NoError(t, err)
		require.NotNil(t, user, "lookup %q must resolve the existing identity", sam)
		assert.Equal(t, "JDoe", user.Username)
	}
}

func TestReconcilerCasingChangeKeepsOneAccount(t *testing.T) {
	db := testDB(t)
	store := NewGormStore(db)

	require.NoError(t, db.Create(&models.ADGroupMapping{GroupName: "App-Users", MappedRole: models.RoleUser, Active: true}).Error)
	require.NoError(t, store.Create(&models.User{
		Active:         true,
		Username:       "JDoe",
		Role:           models.RoleUser,
		AuthSource:     models.AuthSourceActiveDirectory,
		SamAccountName: "JDoe",
	}))

	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Users": {member("jdoe")},
	}}

	result := NewReconciler(true, provider, store, store, nil).Run()

	require.True(t, result.Success)
	assert.Zero(t, result.UsersCreated, "a casing change in the directory must not create a new account")

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGormStoreSetRole(t *testing.T) {
	db := testDB(t)
	store := NewGormStore(db)

	user := &models.User{
		Active:         true,
		Username:       "jdoe",
		Role:           models.RoleUser,
		AuthSource:     models.AuthSourceActiveDirectory,
		SamAccountName: "jdoe",
	}
	require.NoError(t, store.Create(user))

	require.NoError(t, store.SetRole(user, models.RoleSupervisor))
	assert.Equal(t, models.RoleSupervisor, user.Role)

	reloaded, err := store.FindBySamAccountName("jdoe")
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, models.RoleSupervisor, reloaded.Role)
}

func TestGormStoreListActiveDirectoryUsers(t *testing.T) {
	db := testDB(t)
	store := NewGormStore(db)

	require.NoError(t, store.Create(&models.User{
		Active: true, Username: "addy", Role: models.RoleUser,
		AuthSource: models.AuthSourceActiveDirectory, SamAccountName: "addy",
	}))
	require.NoError(t, store.Create(&models.User{
		Active: false, Username: "inactive", Role: models.RoleUser,
		AuthSource: models.AuthSourceActiveDirectory, SamAccountName: "inactive",
	}))
	require.NoError(t, store.Create(&models.User{
		Active: true, Username: "localadmin", Role: models.RoleSuperAdmin,
		AuthSource: models.AuthSourceLocal,
	}))

	users, err := store.ListActiveDirectoryUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "addy", users[0].Username)
}

func TestReconcilerAgainstGormStore(t *testing.T) {
	db := testDB(t)
	store := NewGormStore(db)

	require.NoError(t, db.Create(&models.ADGroupMapping{GroupName: "App-Users", MappedRole: models.RoleUser, Active: true}).Error)

	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Users": {member("jdoe")},
	}}

	rec := NewReconciler(true, provider, store, store, nil)

	first := rec.Run()
	require.True(t, first.Success)
	assert.Equal(t, 1, first.UsersCreated)

	second := rec.Run()
	assert.True(t, second.Success)
	assert.Zero(t, second.UsersCreated+second.UsersUpdated+second.UsersDeactivated+second.RolesChanged)
}
