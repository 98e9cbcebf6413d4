package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-app/colegio-api/internal/models"
	"github.com/colegio-app/colegio-api/pkg/config"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type mockAuthUsers struct {
	byEmail    map[string]models.User
	lastLogins []string
}

func (m *mockAuthUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[strings.ToLower(email)]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *mockAuthUsers) Get(ctx context.Context, id string) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *mockAuthUsers) UpdateLastLogin(ctx context.Context, id string) error {
	m.lastLogins = append(m.lastLogins, id)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "colegio-api"}
}

func newAuthFixture(t *testing.T) (*AuthService, *mockAuthUsers) {
	t.Helper()
	hash, err := HashPassword("correcthorse")
	require.NoError(t, err)
	users := &mockAuthUsers{byEmail: map[string]models.User{
		"padre@colegio.test": {
			ID: "padre-1", Email: "padre@colegio.test", PasswordHash: hash,
			Role: models.RoleParent, Nombre: "María", Apellido: "Pérez",
			HijosIDs: []string{"est-1", "est-2"}, Active: true,
		},
		"inactivo@colegio.test": {
			ID: "padre-2", Email: "inactivo@colegio.test", PasswordHash: hash,
			Role: models.RoleParent, Active: false,
		},
	}}
	return NewAuthService(users, testJWTConfig(), nil, nil), users
}

func TestLoginIssuesTokenWithChildren(t *testing.T) {
	svc, users := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "padre@colegio.test", Password: "correcthorse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleParent, resp.User.Role)
	assert.Equal(t, []string{"padre-1"}, users.lastLogins)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "padre-1", claims.UserID)
	assert.Equal(t, []string{"est-1", "est-2"}, claims.ChildrenIDs)
}

func TestLoginRejectionsAreUniform(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, unknownErr := svc.Login(context.Background(), models.LoginRequest{
		Email: "nadie@colegio.test", Password: "correcthorse",
	})
	_, badPassErr := svc.Login(context.Background(), models.LoginRequest{
		Email: "padre@colegio.test", Password: "wrong",
	})
	require.Error(t, unknownErr)
	require.Error(t, badPassErr)

	// Unknown account and wrong password are indistinguishable.
	assert.Equal(t, appErrors.FromError(unknownErr).Code, appErrors.FromError(badPassErr).Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(unknownErr).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "inactivo@colegio.test", Password: "correcthorse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "padre@colegio.test", Password: "correcthorse",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	require.Error(t, err)

	other := NewAuthService(&mockAuthUsers{}, config.JWTConfig{Secret: "another-secret", Expiration: time.Hour}, nil, nil)
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
