package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/portal/storage"
	"github.com/schoolhub/portal/storage/model"
)

func newTestAdmin(t *testing.T) (*UserAdminService, *GroupService, *storage.Store) {
	t.Helper()
	store := storage.NewStore(t.TempDir())
	return NewUserAdminService(store), NewGroupService(store), store
}

func TestCreateUserValidation(t *testing.T) {
	users, _, _ := newTestAdmin(t)

	_, err := users.CreateUser("ab", "password", model.RoleStudent, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = users.CreateUser("alice", "short", model.RoleStudent, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = users.CreateUser("alice", "password", model.Role("principal"), "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = users.CreateUser("alice", "password", model.RoleStudent, "10b")
	assert.ErrorIs(t, err, ErrValidation, "group must be registered before assignment")
}

func TestCreateUserAssignsGroup(t *testing.T) {
	users, groups, _ := newTestAdmin(t)

	_, err := groups.CreateGroup("10b")
	require.NoError(t, err)

	view, err := users.CreateUser("alice", "password", model.RoleStudent, "10b")
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, view.Role)
	assert.Equal(t, "10b", view.Group)
	assert.NotEmpty(t, view.Id)

	_, err = users.CreateUser("alice", "password2", model.RoleTeacher, "")
	assert.ErrorIs(t, err, ErrValidation, "duplicate login")
}

func TestUpdateUserRoleAndGroup(t *testing.T) {
	users, groups, _ := newTestAdmin(t)
	_, err := groups.CreateGroup("staff")
	require.NoError(t, err)

	view, err := users.CreateUser("bob", "password", model.RoleUser, "")
	require.NoError(t, err)

	updated, err := users.UpdateUser(view.Id, model.RoleTeacher, "staff")
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeacher, updated.Role)
	assert.Equal(t, "staff", updated.Group)

	_, err = users.UpdateUser("no-such-id", model.RoleTeacher, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPasswordAndDelete(t *testing.T) {
	users, _, store := newTestAdmin(t)

	view, err := users.CreateUser("carol", "password", model.RoleStudent, "")
	require.NoError(t, err)

	require.NoError(t, users.ResetPassword(view.Id, "newsecret"))
	assert.ErrorIs(t, users.ResetPassword(view.Id, "tiny"), ErrValidation)

	auth := NewAuthService(store, "test-secret", time.Hour)
	_, _, err = auth.Login("carol", "newsecret")
	require.NoError(t, err, "login must work with the reset password")

	require.NoError(t, users.DeleteUser(view.Id))
	_, err = users.GetUser(view.Id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, users.DeleteUser(view.Id), ErrNotFound)
}

func TestDeleteGroupWithAssignedUsersFails(t *testing.T) {
	users, groups, _ := newTestAdmin(t)

	_, err := groups.CreateGroup("9a")
	require.NoError(t, err)
	_, err = users.CreateUser("dave", "password", model.RoleStudent, "9a")
	require.NoError(t, err)

	err = groups.DeleteGroup("9a")
	assert.ErrorIs(t, err, ErrValidation)

	list, err := groups.ListGroups()
	require.NoError(t, err)
	assert.Equal(t, []model.Group{{Name: "9a"}}, list, "failed delete must leave the list unchanged")
}

func TestDeleteGroup(t *testing.T) {
	_, groups, _ := newTestAdmin(t)

	_, err := groups.CreateGroup("11c")
	require.NoError(t, err)
	require.NoError(t, groups.DeleteGroup("11c"))
	assert.ErrorIs(t, groups.DeleteGroup("11c"), ErrNotFound)
}

func TestCreateGroupValidation(t *testing.T) {
	_, groups, _ := newTestAdmin(t)

	_, err := groups.CreateGroup("")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = groups.CreateGroup(model.NoGroup)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = groups.CreateGroup("8d")
	require.NoError(t, err)
	_, err = groups.CreateGroup("8d")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRankingLifecycle(t *testing.T) {
	_, _, store := newTestAdmin(t)
	ranking := NewRankingService(store)

	_, err := ranking.Add("", 10)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ranking.Add("9a", -1)
	assert.ErrorIs(t, err, ErrValidation)

	entry, err := ranking.Add("9a", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.Id)

	updated, err := ranking.SetPoints(entry.Id, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Points)

	_, err = ranking.SetPoints("no-such-id", 5)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := ranking.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 25, list[0].Points)

	require.NoError(t, ranking.Delete(entry.Id))
	assert.ErrorIs(t, ranking.Delete(entry.Id), ErrNotFound)
}
