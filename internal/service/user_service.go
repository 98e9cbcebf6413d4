package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/colegio-app/colegio-api/internal/models"
	"github.com/colegio-app/colegio-api/pkg/config"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type userRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	SetChildren(ctx context.Context, id string, studentIDs []string) error
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

type studentSetLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Student, error)
}

// UserService manages admin and parent accounts, including the
// parent-to-children links that drive scoped visibility.
type UserService struct {
	repo      userRepository
	students  studentSetLookup
	validator *validator.Validate
	logger    *zap.Logger
}

func NewUserService(repo userRepository, students studentSetLookup, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, students: students, validator: validate, logger: logger}
}

// CreateUserRequest describes a new account.
type CreateUserRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Username  *string  `json:"username"`
	Password  string   `json:"password" validate:"required,min=8"`
	Role      string   `json:"role" validate:"required,oneof=ADMIN PADRE"`
	Nombre    string   `json:"nombre" validate:"required"`
	Apellido  string   `json:"apellido" validate:"required"`
	Telefono  *string  `json:"telefono"`
	Direccion *string  `json:"direccion"`
	HijosIDs  []string `json:"hijos_ids"`
}

func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	role := models.UserRole(req.Role)
	if role == models.RoleAdmin && len(req.HijosIDs) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "admin accounts cannot carry hijos_ids")
	}

	taken, err := s.repo.EmailTaken(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	}
	if err := s.checkChildren(ctx, req.HijosIDs); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "hash password")
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
		Nombre:       strings.TrimSpace(req.Nombre),
		Apellido:     strings.TrimSpace(req.Apellido),
		Telefono:     req.Telefono,
		Direccion:    req.Direccion,
		HijosIDs:     pq.StringArray(req.HijosIDs),
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create account")
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load account")
	}
	if user == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
	}
	return user, nil
}

// UpdateUserRequest carries a partial account update.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Username  *string `json:"username"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
	Nombre    *string `json:"nombre"`
	Apellido  *string `json:"apellido"`
	Telefono  *string `json:"telefono"`
	Direccion *string `json:"direccion"`
	Active    *bool   `json:"active"`
}

func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	patch := map[string]interface{}{}
	if req.Email != nil {
		taken, err := s.repo.EmailTaken(ctx, *req.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check email")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
		}
		patch["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Username != nil {
		patch["username"] = *req.Username
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "hash password")
		}
		patch["password_hash"] = hash
	}
	if req.Nombre != nil {
		patch["nombre"] = strings.TrimSpace(*req.Nombre)
	}
	if req.Apellido != nil {
		patch["apellido"] = strings.TrimSpace(*req.Apellido)
	}
	if req.Telefono != nil {
		patch["telefono"] = *req.Telefono
	}
	if req.Direccion != nil {
		patch["direccion"] = *req.Direccion
	}
	if req.Active != nil {
		patch["active"] = *req.Active
	}

	if err := s.repo.UpdateFields(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update account")
	}
	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete account")
	}
	if deleted == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "account not found")
	}
	return nil
}

func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, models.PageMeta, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.PageMeta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list accounts")
	}
	req := models.PageRequest{Page: filter.Page, PerPage: filter.Size}.Normalize()
	return users, models.NewPageMeta(total, req), nil
}

// SetChildren replaces a parent's linked students after verifying every id
// references a real student.
func (s *UserService) SetChildren(ctx context.Context, id string, studentIDs []string) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleParent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only parent accounts carry hijos_ids")
	}
	if err := s.checkChildren(ctx, studentIDs); err != nil {
		return nil, err
	}
	if err := s.repo.SetChildren(ctx, id, studentIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "link children")
	}
	return s.Get(ctx, id)
}

// Children resolves a parent's linked student records.
func (s *UserService) Children(ctx context.Context, id string) ([]models.Student, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	students, err := s.students.FindByIDs(ctx, user.HijosIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load children")
	}
	return students, nil
}

// EnsureBootstrapAdmin seeds the first admin account on an empty database.
// It is a no-op when any admin exists or the bootstrap settings are blank.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	n, err := s.repo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = s.Create(ctx, CreateUserRequest{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     string(models.RoleAdmin),
		Nombre:   "Administrador",
		Apellido: "Sistema",
	})
	if err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("email", cfg.AdminEmail))
	return nil
}

func (s *UserService) checkChildren(ctx context.Context, studentIDs []string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	students, err := s.students.FindByIDs(ctx, studentIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load students")
	}
	if len(students) != len(dedupe(studentIDs)) {
		return appErrors.Clone(appErrors.ErrValidation, "hijos_ids contains unknown students")
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
