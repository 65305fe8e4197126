package directors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdbd/src/auth"
)

func TestAddUserAndAuthenticate(t *testing.T) {
	store := newMockStore()
	_, _, _, users := newTestServices(store)
	ctx := context.Background()

	user, err := users.AddUser(ctx, auth.NewUser{
		UserName:  "jdoe",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jdoe@example.com",
		GroupID:   7,
		Password:  "hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.PublicID)
	assert.True(t, user.Active)

	authenticated, err := users.Authenticate(ctx, "jdoe", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.PublicID, authenticated.PublicID)

	_, err = users.Authenticate(ctx, "jdoe", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = users.Authenticate(ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAddUserRejectsTakenUserName(t *testing.T) {
	store := newMockStore()
	_, _, _, users := newTestServices(store)
	ctx := context.Background()

	_, err := users.AddUser(ctx, auth.NewUser{UserName: "jdoe", Password: "hunter2"})
	require.NoError(t, err)

	_, err = users.AddUser(ctx, auth.NewUser{UserName: "jdoe", Password: "other"})
	assert.ErrorIs(t, err, auth.ErrUserAlreadyExists)
}

func TestResolveDisplayName(t *testing.T) {
	store := newMockStore()
	_, _, _, users := newTestServices(store)
	ctx := context.Background()

	user, err := users.AddUser(ctx, auth.NewUser{
		UserName: "jdoe", FirstName: "Jane", LastName: "Doe", Password: "hunter2",
	})
	require.NoError(t, err)

	name, err := users.ResolveDisplayName(user.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", name)

	_, err = users.ResolveDisplayName(999)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestGroupPermittedResolvesTwoTierRights(t *testing.T) {
	store := newMockStore()
	_, _, _, users := newTestServices(store)
	ctx := context.Background()

	basicID, err := users.AddGroup(ctx, &auth.UserGroup{
		Name: "operators", Label: "Operators",
		Rights: []string{"framework.object.view"},
	})
	require.NoError(t, err)
	extendedID, err := users.AddGroup(ctx, &auth.UserGroup{
		Name: "admins", Label: "Admins",
		Rights: []string{"framework.object.*"},
	})
	require.NoError(t, err)

	permitted, err := users.GroupPermitted(ctx, basicID, "framework.object.view")
	require.NoError(t, err)
	assert.True(t, permitted)

	permitted, err = users.GroupPermitted(ctx, basicID, "framework.object.delete")
	require.NoError(t, err)
	assert.False(t, permitted)

	permitted, err = users.GroupPermitted(ctx, extendedID, "framework.object.delete")
	require.NoError(t, err)
	assert.True(t, permitted)

	_, err = users.GroupPermitted(ctx, 99, "framework.object.view")
	assert.ErrorIs(t, err, auth.ErrGroupNotFound)
}
