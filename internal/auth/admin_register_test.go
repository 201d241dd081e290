package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimbouaziz/ateliera-backend/internal/users"
	"github.com/selimbouaziz/ateliera-backend/pkg/enums"
	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
	"github.com/selimbouaziz/ateliera-backend/pkg/security"
)

func newTestAdminRegister(t *testing.T) (AdminRegisterService, *users.Repository) {
	t.Helper()

	repo := users.NewRepository(setupUsersTestDB(t))
	svc, err := NewAdminRegisterService(AdminRegisterServiceParams{
		UserRepo:       repo,
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)
	return svc, repo
}

func adminRegisterInput(email string) AdminRegisterRequest {
	return AdminRegisterRequest{
		Email:     email,
		Password:  "atelier-keys",
		FirstName: "Nour",
		LastName:  "Chahine",
	}
}

func TestAdminRegisterCreatesVerifiedAdmin(t *testing.T) {
	svc, repo := newTestAdminRegister(t)

	created, err := svc.Register(context.Background(), adminRegisterInput("nour@example.com"))
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, created.Role)
	assert.True(t, created.IsVerified)
	assert.True(t, created.IsActive)

	stored, err := repo.FindByEmail(context.Background(), "nour@example.com")
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, stored.Role)

	valid, err := security.VerifyPassword("atelier-keys", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestAdminRegisterConflictForExistingEmail(t *testing.T) {
	svc, _ := newTestAdminRegister(t)

	_, err := svc.Register(context.Background(), adminRegisterInput("nour@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), adminRegisterInput("Nour@Example.com"))
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestAdminRegisterCanLogin(t *testing.T) {
	authSvc, repo, _, _ := newTestAuth(t)

	adminSvc, err := NewAdminRegisterService(AdminRegisterServiceParams{
		UserRepo:       repo,
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)

	_, err = adminSvc.Register(context.Background(), adminRegisterInput("nour@example.com"))
	require.NoError(t, err)

	session, err := authSvc.Login(context.Background(), LoginRequest{
		Email:    "nour@example.com",
		Password: "atelier-keys",
	}, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, session.User.Role)
}
