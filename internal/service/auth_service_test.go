package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestAuthService(users *fakeUsers, sessions *fakeSessions) *AuthService {
	return NewAuthService(users, sessions, nil, nil, AuthConfig{Secret: "test-secret", Issuer: "rvnp-test", Expiry: time.Hour})
}

func TestAuthenticateIssuesSessionToken(t *testing.T) {
	users := newFakeUsers()
	hod := users.add("h1", models.RoleHOD, "ICT", hashPassword(t, "s3cret"))
	sessions := newFakeSessions()
	svc := newTestAuthService(users, sessions)

	resp, err := svc.Authenticate(context.Background(), models.LoginRequest{Username: " h1 ", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.UserInfo{ID: hod.ID, Username: "h1", Role: models.RoleHOD, Department: "ICT"}, resp.User)
	assert.Len(t, sessions.rows, 1)

	session, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, hod.ID, session.UserID)
	assert.Equal(t, models.RoleHOD, session.Role)
	assert.Equal(t, "ICT", session.Department)
	_, stored := sessions.rows[session.ID]
	assert.True(t, stored)
}

func TestAuthenticateFailuresShareOneError(t *testing.T) {
	users := newFakeUsers()
	users.add("admin", models.RoleSuperAdmin, "", hashPassword(t, "right"))
	svc := newTestAuthService(users, newFakeSessions())

	_, wrongPassword := svc.Authenticate(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})
	_, unknownUser := svc.Authenticate(context.Background(), models.LoginRequest{Username: "ghost", Password: "wrong"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.True(t, errors.Is(wrongPassword, appErrors.ErrInvalidCredentials))
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestAuthenticateRequiresCredentials(t *testing.T) {
	svc := newTestAuthService(newFakeUsers(), newFakeSessions())
	_, err := svc.Authenticate(context.Background(), models.LoginRequest{Username: "admin"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestLogoutRevokesSession(t *testing.T) {
	users := newFakeUsers()
	users.add("r1", models.RoleClassRep, "ICT", hashPassword(t, "pw1234"))
	svc := newTestAuthService(users, newFakeSessions())

	resp, err := svc.Authenticate(context.Background(), models.LoginRequest{Username: "r1", Password: "pw1234"})
	require.NoError(t, err)
	session, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), session))

	_, err = svc.ValidateToken(context.Background(), resp.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	users := newFakeUsers()
	users.add("admin", models.RoleSuperAdmin, "", hashPassword(t, "pw1234"))
	sessions := newFakeSessions()
	svc := newTestAuthService(users, sessions)

	issued := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	resp, err := svc.Authenticate(context.Background(), models.LoginRequest{Username: "admin", Password: "pw1234"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(context.Background(), resp.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	other := NewAuthService(users, sessions, nil, nil, AuthConfig{Secret: "another-secret"})
	other.now = func() time.Time { return issued }
	_, err = other.ValidateToken(context.Background(), resp.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.ValidateToken(context.Background(), "not-a-token")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenRejectsDeletedAccount(t *testing.T) {
	users := newFakeUsers()
	rep := users.add("r1", models.RoleClassRep, "ICT", hashPassword(t, "pw1234"))
	svc := newTestAuthService(users, newFakeSessions())

	resp, err := svc.Authenticate(context.Background(), models.LoginRequest{Username: "r1", Password: "pw1234"})
	require.NoError(t, err)
	delete(users.rows, rep.ID)

	_, err = svc.ValidateToken(context.Background(), resp.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
