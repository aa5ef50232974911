package dirsync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
	"github.com/lostandfound-admin/lostandfound-admin/internal/directory"
)

// fakeProvider maps group names to members. Groups listed in failing
// return the associated error.
type fakeProvider struct {
	groups  map[string][]directory.Member
	failing map[string]error
	calls   []string
}

func (p *fakeProvider) GroupMembers(groupName string) ([]directory.Member, error) {
	p.calls = append(p.calls, groupName)

	if err, ok := p.failing[groupName]; ok {
		return nil, err
	}

	members, ok := p.groups[groupName]
	if !ok {
		return nil, directory.ErrGroupNotFound
	}

	return members, nil
}

// fakeStore is an in-memory UserStore and MappingSource with fault
// injection per operation.
type fakeStore struct {
	mappings []models.ADGroupMapping
	users    map[string]*models.User

	nextID uint64

	listMappingsErr error
	findErr         error
	createErr       error
	updateErr       error
	listUsersErr    error

	createCalls  int
	updateCalls  int
	setRoleCalls int
	storeTouched bool
}

func newFakeStore(mappings ...models.ADGroupMapping) *fakeStore {
	return &fakeStore{
		mappings: mappings,
		users:    make(map[string]*models.User),
	}
}

func (s *fakeStore) addUser(user models.User) *models.User {
	s.nextID++
	user.ID = s.nextID
	s.users[identityKey(user.SamAccountName)] = &user

	return &user
}

func (s *fakeStore) ListActiveMappings() ([]models.ADGroupMapping, error) {
	if s.listMappingsErr != nil {
		return nil, s.listMappingsErr
	}

	var active []models.ADGroupMapping

	for _, m := range s.mappings {
		if m.Active {
			active = append(active, m)
		}
	}

	return active, nil
}

func (s *fakeStore) FindBySamAccountName(sam string) (*models.User, error) {
	s.storeTouched = true

	if s.findErr != nil {
		return nil, s.findErr
	}

	user, ok := s.users[identityKey(sam)]
	if !ok {
		return nil, nil
	}

	copied := *user

	return &copied, nil
}

func (s *fakeStore) Create(user *models.User) error {
	s.storeTouched = true
	s.createCalls++

	if s.createErr != nil {
		return s.createErr
	}

	s.addUser(*user)

	return nil
}

func (s *fakeStore) Update(user *models.User) error {
	s.storeTouched = true
	s.updateCalls++

	if s.updateErr != nil {
		return s.updateErr
	}

	copied := *user
	s.users[identityKey(user.SamAccountName)] = &copied

	return nil
}

func (s *fakeStore) SetRole(user *models.User, role models.Role) error {
	s.storeTouched = true
	s.setRoleCalls++

	user.Role = role
	if stored, ok := s.users[identityKey(user.SamAccountName)]; ok {
		stored.Role = role
	}

	return nil
}

func (s *fakeStore) ListActiveDirectoryUsers() ([]models.User, error) {
	s.storeTouched = true

	if s.listUsersErr != nil {
		return nil, s.listUsersErr
	}

	var users []models.User

	for _, u := range s.users {
		if u.Active && u.AuthSource == models.AuthSourceActiveDirectory {
			users = append(users, *u)
		}
	}

	return users, nil
}

func mapping(id uint, group string, role models.Role) models.ADGroupMapping {
	return models.ADGroupMapping{ID: id, GroupName: group, MappedRole: role, Active: true}
}

func member(sam string) directory.Member {
	return directory.Member{
		SamAccountName: sam,
		DisplayName:    "User " + sam,
		Email:          sam + "@corp.example",
	}
}

func TestRunDisabledIntegration(t *testing.T) {
	store := newFakeStore(mapping(1, "App-Users", models.RoleUser))
	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Users": {member("jdoe")},
	}}

	result := NewReconciler(false, provider, store, store, nil).Run()

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "disabled")
	assert.Zero(t, result.UsersCreated)
	assert.Zero(t, result.UsersUpdated)
	assert.Zero(t, result.UsersDeactivated)
	assert.Zero(t, result.RolesChanged)
	assert.False(t, store.storeTouched)
	assert.Empty(t, provider.calls)
}

func TestRunNoActiveMappings(t *testing.T) {
	store := newFakeStore(models.ADGroupMapping{ID: 1, GroupName: "Old-Group", MappedRole: models.RoleUser, Active: false})
	provider := &fakeProvider{}

	result := NewReconciler(true, provider, store, store, nil).Run()

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no active AD group mappings")
	assert.Zero(t, result.UsersCreated+result.UsersUpdated+result.UsersDeactivated+result.RolesChanged)
	assert.Empty(t, provider.calls)
	assert.False(t, store.storeTouched)
}

func TestRunMappingListFailure(t *testing.T) {
	store := newFakeStore()
	store.listMappingsErr = errors.New("connection refused")

	result := NewReconciler(true, &fakeProvider{}, store, store, nil).Run()

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "AD sync failed")
}

func TestRunCreatesNewMembers(t *testing.T) {
	store := newFakeStore(mapping(1, "App-Admins", models.RoleSuperAdmin))
	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Admins": {member("asmith")},
	}}

	result := NewReconciler(true, provider, store, store, nil).Run()

	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.UsersCreated)
	assert.Zero(t, result.UsersUpdated)
	assert.Zero(t, result.UsersDeactivated)

	created := store.users["asmith"]
	require.NotNil(t, created)
	assert.True(t, created.Active)
	assert.Equal(t, models.RoleSuperAdmin, created.Role)
	assert.Equal(t, models.AuthSourceActiveDirectory, created.AuthSource)
	assert.Equal(t, "asmith", created.SamAccountName)
	assert.Equal(t, "asmith@corp.example", created.Email)
	assert.Empty(t, created.Password)
}

func TestRunFallbackEmailAndDisplayName(t *testing.T) {
	store := newFakeStore(mapping(1, "App-Users", models.RoleUser))
	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Users": {{SamAccountName: "bare"}},
	}}

	fallback := func(sam string) string { return sam + "@fallback.example" }

	result := NewReconciler(true, provider, store, store, fallback).Run()

	assert.True(t, result.Success)

	created := store.users["bare"]
	require.NotNil(t, created)
	assert.Equal(t, "bare@fallback.example", created.Email)
	assert.Equal(t, "bare", created.DisplayName)
}

func TestRunRolePriorityRegardlessOfMappingOrder(t *testing.T) {
	memberBoth := member("jdoe")

	groups := map[string][]directory.Member{
		"App-Users":  {memberBoth},
		"App-Admins": {memberBoth},
	}

	orders := map[string][]models.ADGroupMapping{
		"low role first":  {mapping(1, "App-Users", models.RoleUser), mapping(2, "App-Admins", models.RoleSuperAdmin)},
		"high role first": {mapping(1, "App-Admins", models.RoleSuperAdmin), mapping(2, "App-Users", models.RoleUser)},
	}

	for name, mappings := range orders {
		t.Run(name, func(t *testing.T) {
			store := newFakeStore(mappings...)
			provider := &fakeProvider{groups: groups}

			result := NewReconciler(true, provider, store, store, nil).Run()

			assert.True(t, result.Success)
			assert.Equal(t, 1, result.UsersCreated)

			created := store.users["jdoe"]
			require.NotNil(t, created)
			assert.Equal(t, models.RoleSuperAdmin, created.Role)
		})
	}
}

func TestRunGroupFailureSuppressesDeactivation(t *testing.T) {
	store := newFakeStore(
		mapping(1, "App-Users", models.RoleUser),
		mapping(2, "App-Broken", models.RoleSupervisor),
	)
	store.addUser(models.User{
		Active:         true,
		Username:       "stale",
		SamAccountName: "stale",
		Role:           models.RoleUser,
		AuthSource:     models.AuthSourceActiveDirectory,
	})

	provider := &fakeProvider{
		groups:  map[string][]directory.Member{"App-Users": {member("jdoe")}},
		failing: map[string]error{"App-Broken": errors.New("server unreachable")},
	}

	result := NewReconciler(true, provider, store, store, nil).Run()

	// The reachable group is still processed and the run stays successful,
	// but nobody is deactivated under partial directory knowledge.
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.UsersCreated)
	assert.Zero(t, result.UsersDeactivated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "App-Broken")

	stale := store.users["stale"]
	require.NotNil(t, stale)
	assert.True(t, stale.Active)
}

func TestRunGroupNotFoundMessage(t *testing.T) {
	store := newFakeStore(mapping(1, "Gone-Group", models.RoleUser))
	provider := &fakeProvider{groups: map[string][]directory.Member{}}

	result := NewReconciler(true, provider, store, store, nil).Run()

	assert.True(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `AD group "Gone-Group" not found in directory`)
}

func TestRunDeactivatesMissingUsers(t *testing.T) {
	store := newFakeStore(mapping(1, "App-Users", models.RoleUser))
	store.addUser(models.User{
		Active:         true,
		Username:       "gone",
		SamAccountName: "gone",
		Role:           models.RoleUser,
		AuthSource:     models.AuthSourceActiveDirectory,
	})
	localUser := store.addUser(models.User{
		Active:     true,
		Username:   "localadmin",
		Role:       models.RoleSuperAdmin,
		AuthSource: models.AuthSourceLocal,
	})

	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Users": {member("jdoe")},
	}}

	result := NewReconciler(true, provider, store, store, nil).Run()

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.UsersDeactivated)

	gone := store.users["gone"]
	require.NotNil(t, gone)
	assert.False(t, gone.Active, "user absent from all mapped groups is deactivated")
	assert.True(t, store.users[identityKey(localUser.SamAccountName)].Active,
		"local accounts are never touched by deactivation")

	// Deactivated, never deleted.
	assert.Len(t, store.users, 3)
}

func TestRunCaseInsensitiveIdentityMatching(t *testing.T) {
	store := newFakeStore(mapping(1, "App-Users", models.RoleUser))
	store.addUser(models.User{
		Active:         true,
		Username:       "JDoe",
		SamAccountName: "JDoe",
		DisplayName:    "User JDoe",
		Email:          "jdoe@corp.example",
		Role:           models.RoleUser,
		AuthSource:     models.AuthSourceActiveDirectory,
	})

	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Users": {{SamAccountName: "jdoe", DisplayName: "User JDoe", Email: "jdoe@corp.example"}},
	}}

	result := NewReconciler(true, provider, store, store, nil).Run()

	assert.True(t, result.Success)
	assert.Zero(t, result.UsersCreated, "differently-cased identity is the same account")
	assert.Zero(t, result.UsersDeactivated)
}

func TestRunUpdatedCountsOncePerUser(t *testing.T) {
	store := newFakeStore(mapping(1, "App-Admins", models.RoleSuperAdmin))
	store.addUser(models.User{
		Active:         false,
		Username:       "jdoe",
		SamAccountName: "jdoe",
		DisplayName:    "Old Name",
		Email:          "old@corp.example",
		Role:           models.RoleUser,
		AuthSource:     models.AuthSourceActiveDirectory,
	})

	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Admins": {member("jdoe")},
	}}

	result := NewReconciler(true, provider, store, store, nil).Run()

	// Reactivation, attribute refresh and role change all hit the same
	// user; the updated count still moves by one.
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.UsersUpdated)
	assert.Equal(t, 1, result.RolesChanged)

	updated := store.users["jdoe"]
	require.NotNil(t, updated)
	assert.True(t, updated.Active)
	assert.Equal(t, "User jdoe", updated.DisplayName)
	assert.Equal(t, "jdoe@corp.example", updated.Email)
	assert.Equal(t, models.RoleSuperAdmin, updated.Role)
}

func TestRunIdempotent(t *testing.T) {
	store := newFakeStore(
		mapping(1, "App-Users", models.RoleUser),
		mapping(2, "App-Admins", models.RoleSuperAdmin),
	)
	store.addUser(models.User{
		Active:         true,
		Username:       "gone",
		SamAccountName: "gone",
		Role:           models.RoleUser,
		AuthSource:     models.AuthSourceActiveDirectory,
	})

	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Users":  {member("jdoe"), member("asmith")},
		"App-Admins": {member("asmith")},
	}}

	rec := NewReconciler(true, provider, store, store, nil)

	first := rec.Run()
	require.True(t, first.Success)
	assert.Equal(t, 2, first.UsersCreated)
	assert.Equal(t, 1, first.UsersDeactivated)

	second := rec.Run()
	assert.True(t, second.Success)
	assert.Zero(t, second.UsersCreated)
	assert.Zero(t, second.UsersUpdated)
	assert.Zero(t, second.UsersDeactivated)
	assert.Zero(t, second.RolesChanged)
	assert.Empty(t, second.Errors)
}

func TestRunPerUserFailureContinues(t *testing.T) {
	store := newFakeStore(mapping(1, "App-Users", models.RoleUser))
	store.createErr = errors.New("constraint violation")

	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Users": {member("jdoe"), member("asmith")},
	}}

	result := NewReconciler(true, provider, store, store, nil).Run()

	assert.True(t, result.Success, "per-user failures do not fail the run")
	assert.Zero(t, result.UsersCreated)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, 2, store.createCalls, "remaining users still processed")
}

func TestRunFatalDeactivationListFailure(t *testing.T) {
	store := newFakeStore(mapping(1, "App-Users", models.RoleUser))
	store.listUsersErr = errors.New("disk error")

	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Users": {member("jdoe")},
	}}

	result := NewReconciler(true, provider, store, store, nil).Run()

	// Creations already applied stay committed even though the run fails.
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.UsersCreated)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[len(result.Errors)-1], "AD sync failed")
	require.NotNil(t, store.users["jdoe"])
}

func TestRunSkipsMembersWithoutIdentity(t *testing.T) {
	store := newFakeStore(mapping(1, "App-Users", models.RoleUser))
	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Users": {{SamAccountName: "", DisplayName: "Ghost"}, member("jdoe")},
	}}

	result := NewReconciler(true, provider, store, store, nil).Run()

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.UsersCreated)
}

func TestRunNoAttributeOverwriteWithEmptyValues(t *testing.T) {
	store := newFakeStore(mapping(1, "App-Users", models.RoleUser))
	store.addUser(models.User{
		Active:         true,
		Username:       "jdoe",
		SamAccountName: "jdoe",
		DisplayName:    "John Doe",
		Email:          "jdoe@corp.example",
		Role:           models.RoleUser,
		AuthSource:     models.AuthSourceActiveDirectory,
	})

	provider := &fakeProvider{groups: map[string][]directory.Member{
		"App-Users": {{SamAccountName: "jdoe"}},
	}}

	result := NewReconciler(true, provider, store, store, nil).Run()

	assert.True(t, result.Success)
	assert.Zero(t, result.UsersUpdated, "empty directory attributes never clear local ones")

	kept := store.users["jdoe"]
	require.NotNil(t, kept)
	assert.Equal(t, "John Doe", kept.DisplayName)
	assert.Equal(t, "jdoe@corp.example", kept.Email)
}

func TestResultSummary(t *testing.T) {
	r := &Result{Success: true, UsersCreated: 2, UsersUpdated: 1}
	assert.Equal(t, "Sync completed. Created: 2, Updated: 1, Deactivated: 0, Roles changed: 0.", r.Summary())

	r = &Result{Errors: []string{"first", "second"}}
	assert.Equal(t, "Sync failed. Created: 0, Updated: 0, Deactivated: 0, Roles changed: 0. Errors: first; second", r.Summary())
}
