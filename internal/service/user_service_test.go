package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-app/colegio-api/internal/models"
	"github.com/colegio-app/colegio-api/pkg/config"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type mockUserRepo struct {
	users map[string]models.User
}

func (m *mockUserRepo) Get(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, u *models.User) error {
	if m.users == nil {
		m.users = make(map[string]models.User)
	}
	if u.ID == "" {
		u.ID = "user-new"
	}
	m.users[u.ID] = *u
	return nil
}

func (m *mockUserRepo) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	u := m.users[id]
	if v, ok := patch["email"]; ok {
		u.Email = v.(string)
	}
	if v, ok := patch["password_hash"]; ok {
		u.PasswordHash = v.(string)
	}
	if v, ok := patch["active"]; ok {
		u.Active = v.(bool)
	}
	m.users[id] = u
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		delete(m.users, id)
		return &u, nil
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	for id, u := range m.users {
		if id != excludeID && u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) SetChildren(ctx context.Context, id string, studentIDs []string) error {
	u := m.users[id]
	u.HijosIDs = studentIDs
	m.users[id] = u
	return nil
}

func (m *mockUserRepo) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	n := 0
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type mockStudentSet struct {
	known map[string]models.Student
}

func (m *mockStudentSet) FindByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	out := []models.Student{}
	seen := map[string]struct{}{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if s, ok := m.known[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func newUserTestService(repo *mockUserRepo) *UserService {
	students := &mockStudentSet{known: map[string]models.Student{
		"est-1": {ID: "est-1"},
		"est-2": {ID: "est-2"},
	}}
	return NewUserService(repo, students, nil, nil)
}

func TestUserCreateAdminRejectsChildren(t *testing.T) {
	svc := newUserTestService(&mockUserRepo{})

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "admin@colegio.test", Password: "longenough", Role: "ADMIN",
		Nombre: "Ad", Apellido: "Min", HijosIDs: []string{"est-1"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserCreateParentWithChildren(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newUserTestService(repo)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "Padre@Colegio.Test", Password: "longenough", Role: "PADRE",
		Nombre: "María", Apellido: "Pérez", HijosIDs: []string{"est-1", "est-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "padre@colegio.test", user.Email)
	assert.True(t, user.Active)
	assert.NotEqual(t, "longenough", user.PasswordHash)

	// Unknown student ids are refused.
	_, err = svc.Create(context.Background(), CreateUserRequest{
		Email: "otro@colegio.test", Password: "longenough", Role: "PADRE",
		Nombre: "Otro", Apellido: "Padre", HijosIDs: []string{"est-9"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{
		"user-1": {ID: "user-1", Email: "padre@colegio.test", Role: models.RoleParent},
	}}
	svc := newUserTestService(repo)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "padre@colegio.test", Password: "longenough", Role: "PADRE",
		Nombre: "María", Apellido: "Pérez",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserSetChildrenParentOnly(t *testing.T) {
	repo := &mockUserRepo{users: map[string]models.User{
		"admin-1": {ID: "admin-1", Role: models.RoleAdmin},
		"padre-1": {ID: "padre-1", Role: models.RoleParent},
	}}
	svc := newUserTestService(repo)

	_, err := svc.SetChildren(context.Background(), "admin-1", []string{"est-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	user, err := svc.SetChildren(context.Background(), "padre-1", []string{"est-1", "est-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"est-1", "est-2"}, []string(user.HijosIDs))
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newUserTestService(repo)

	// Blank settings: nothing happens.
	require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), config.BootstrapConfig{}))
	assert.Empty(t, repo.users)

	cfg := config.BootstrapConfig{AdminEmail: "root@colegio.test", AdminPassword: "bootstrap1"}
	require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), cfg))
	require.Len(t, repo.users, 1)

	// Idempotent once an admin exists.
	require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), cfg))
	assert.Len(t, repo.users, 1)
}
