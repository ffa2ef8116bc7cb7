package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmatrack/backend/internal/models"
)

func TestUserCreateAndAuthenticate(t *testing.T) {
	db := openTestDB(t)
	users := NewUserService(db)

	created, err := users.Create(CreateUserInput{
		Username: "mallory",
		Email:    "mallory@example.com",
		Password: "hunter22",
		FullName: "Mallory Quinn",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.NotEqual(t, "hunter22", created.Password, "password must be hashed")

	authed, err := users.Authenticate("mallory", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, created.ID, authed.ID)
	assert.NotNil(t, authed.LastLogin)

	// Email works as the login too.
	_, err = users.Authenticate("mallory@example.com", "hunter22")
	require.NoError(t, err)

	_, err = users.Authenticate("mallory", "wrong")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = users.Authenticate("nobody", "hunter22")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserCreateValidation(t *testing.T) {
	db := openTestDB(t)
	users := NewUserService(db)

	var validation *ValidationError
	_, err := users.Create(CreateUserInput{Username: "", Password: "longenough"})
	require.ErrorAs(t, err, &validation)
	_, err = users.Create(CreateUserInput{Username: "short", Password: "abc"})
	require.ErrorAs(t, err, &validation)
	_, err = users.Create(CreateUserInput{Username: "badrole", Password: "longenough", Role: "superuser"})
	require.ErrorAs(t, err, &validation)

	_, err = users.Create(CreateUserInput{Username: "taken", Email: "taken@example.com", Password: "longenough", FullName: "T"})
	require.NoError(t, err)
	_, err = users.Create(CreateUserInput{Username: "taken", Email: "other@example.com", Password: "longenough", FullName: "T"})
	require.ErrorAs(t, err, &validation)
}

func TestChangePassword(t *testing.T) {
	db := openTestDB(t)
	users := NewUserService(db)

	user, err := users.Create(CreateUserInput{
		Username: "nina", Email: "nina@example.com", Password: "original1", FullName: "Nina",
	})
	require.NoError(t, err)

	var validation *ValidationError
	err = users.ChangePassword(user.ID, "wrong", "replacement1")
	require.ErrorAs(t, err, &validation)

	require.NoError(t, users.ChangePassword(user.ID, "original1", "replacement1"))
	_, err = users.Authenticate("nina", "replacement1")
	require.NoError(t, err)
	_, err = users.Authenticate("nina", "original1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetRoleGuardsLastAdmin(t *testing.T) {
	db := openTestDB(t)
	users := NewUserService(db)

	admin, err := users.EnsureAdmin("admin", "admin@example.com", "bootstrap1")
	require.NoError(t, err)
	require.NotNil(t, admin)

	// EnsureAdmin is a no-op once an admin exists.
	second, err := users.EnsureAdmin("admin2", "admin2@example.com", "bootstrap2")
	require.NoError(t, err)
	assert.Nil(t, second)

	_, err = users.SetRole(admin.ID, models.RoleUser)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	other, err := users.Create(CreateUserInput{
		Username: "olive", Email: "olive@example.com", Password: "longenough", FullName: "Olive", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	demoted, err := users.SetRole(admin.ID, models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, demoted.Role)
	_ = other
}

func TestDeleteUserGuardedByReferences(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(f.db)

	rma := f.createRMA(t)
	err := users.Delete(f.actor.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	require.NoError(t, f.rmas.Delete(rma.ID))
	require.NoError(t, users.Delete(f.actor.ID))

	_, err = users.Get(f.actor.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
