package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxcollect/cobradash/internal/common"
)

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Name:            "Maria Lopez",
		Email:           email,
		Password:        "s3cret",
		ConfirmPassword: "s3cret",
		EmployeeNumber:  "12345",
		Title:           "Agente de Cobranza",
		Company:         "Coppel",
		City:            "Culiacán",
	}
}

func TestRegister_CreatesAccountAndLogsIn(t *testing.T) {
	e := setupEnv(t)
	svc := e.authService()
	ctx := context.Background()

	u, err := svc.Register(ctx, registerInput("maria@x.com"))
	require.NoError(t, err)
	assert.False(t, u.IsAdmin, "self-registered accounts are never admins")
	assert.NotEqual(t, "s3cret", u.PasswordHash)

	id, err := e.sessions.UserID(ctx)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, u.ID, *id)
}

func TestRegister_Validation(t *testing.T) {
	e := setupEnv(t)
	svc := e.authService()
	ctx := context.Background()

	in := registerInput("maria@x.com")
	in.ConfirmPassword = "other"
	_, err := svc.Register(ctx, in)
	require.ErrorIs(t, err, common.ErrValidation)

	in = registerInput("not-an-email")
	_, err = svc.Register(ctx, in)
	require.ErrorIs(t, err, common.ErrValidation)

	in = registerInput("maria@x.com")
	in.Name = "  "
	_, err = svc.Register(ctx, in)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := setupEnv(t)
	svc := e.authService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("a@x.com"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, registerInput("A@x.com"))
	require.ErrorIs(t, err, common.ErrEmailTaken)
}

func TestLogin_WrongCredentials(t *testing.T) {
	e := setupEnv(t)
	svc := e.authService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("maria@x.com"))
	require.NoError(t, err)

	_, err = svc.Login(ctx, "maria@x.com", "wrong")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	// unknown account is indistinguishable from a wrong password
	_, err = svc.Login(ctx, "nobody@x.com", "s3cret")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_Succeeds(t *testing.T) {
	e := setupEnv(t)
	svc := e.authService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("maria@x.com"))
	require.NoError(t, err)
	require.NoError(t, e.sessions.Clear(ctx))

	u, err := svc.Login(ctx, "MARIA@X.COM", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "maria@x.com", u.Email)

	id, err := e.sessions.UserID(ctx)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, u.ID, *id)
}

func TestChangePassword(t *testing.T) {
	e := setupEnv(t)
	svc := e.authService()
	ctx := context.Background()

	u, err := svc.Register(ctx, registerInput("maria@x.com"))
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "wrong", "newpass"), common.ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, "s3cret", "newpass"))

	_, err = svc.Login(ctx, "maria@x.com", "s3cret")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "maria@x.com", "newpass")
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	e := setupEnv(t)
	svc := e.authService()
	ctx := context.Background()

	u, err := svc.Register(ctx, registerInput("maria@x.com"))
	require.NoError(t, err)

	require.NoError(t, svc.UpdateProfile(ctx, u.ID, "Maria L. de la Cruz", "Supervisora", "Coppel", "Mazatlán"))

	got, err := e.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria L. de la Cruz", got.Name)
	assert.Equal(t, "Supervisora", got.Title)
	assert.Equal(t, "maria@x.com", got.Email, "profile edits never touch the email")
}

func TestSeedAdmin_Idempotent(t *testing.T) {
	e := setupEnv(t)
	svc := e.authService()
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx))
	require.NoError(t, svc.SeedAdmin(ctx))

	admin, err := e.users.FindByEmail(ctx, AdminEmail)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	got, err := svc.Login(ctx, AdminEmail, "admin123")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
}
