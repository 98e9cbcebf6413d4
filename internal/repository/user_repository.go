package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/colegio-app/colegio-api/internal/models"
)

const insertUser = `
	INSERT INTO users (id, email, username, password_hash, role, nombre, apellido, telefono, direccion, hijos_ids, active, created_at, updated_at)
	VALUES (:id, :email, :username, :password_hash, :role, :nombre, :apellido, :telefono, :direccion, :hijos_ids, :active, :created_at, :updated_at)`

// UserRepository persists accounts.
type UserRepository struct {
	table *Table[models.User]
	db    *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{
		table: NewTable[models.User](db, "users", insertUser,
			[]string{"email", "username", "password_hash", "role", "nombre", "apellido", "telefono", "direccion", "hijos_ids", "active"}),
		db: db,
	}
}

func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return r.table.Get(ctx, id)
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.HijosIDs == nil {
		u.HijosIDs = pq.StringArray{}
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return r.table.Create(ctx, u)
}

func (r *UserRepository) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.table.UpdateFields(ctx, id, patch)
}

func (r *UserRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	return r.table.Delete(ctx, id)
}

// FindByEmail fetches an account by email, nil when absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, "SELECT * FROM users WHERE LOWER(email) = LOWER($1)", email)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

// EmailTaken reports whether another account already registered the email.
func (r *UserRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	query := "SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

// List pages accounts with optional role, active and search filters.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	conds := []string{}
	args := []interface{}{}
	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Role != nil {
		add("role = $%d", *filter.Role)
	}
	if filter.Active != nil {
		add("active = $%d", *filter.Active)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+strings.ToLower(s)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(LOWER(nombre) LIKE $%d OR LOWER(apellido) LIKE $%d OR LOWER(email) LIKE $%d)", n, n, n))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	req := models.PageRequest{Page: filter.Page, PerPage: filter.Size}.Normalize()
	users := []models.User{}
	query := fmt.Sprintf("SELECT * FROM users%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		where, req.PerPage, req.Offset())
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// FindActiveByRole returns every active account holding the role. Used by
// notification fan-out.
func (r *UserRepository) FindActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	users := []models.User{}
	query := "SELECT * FROM users WHERE role = $1 AND active = TRUE"
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("find %s accounts: %w", role, err)
	}
	return users, nil
}

// FindParentsOfStudent returns the active parent accounts linked to the
// student.
func (r *UserRepository) FindParentsOfStudent(ctx context.Context, studentID string) ([]models.User, error) {
	users := []models.User{}
	query := "SELECT * FROM users WHERE role = $1 AND active = TRUE AND $2 = ANY(hijos_ids)"
	if err := r.db.SelectContext(ctx, &users, query, models.RoleParent, studentID); err != nil {
		return nil, fmt.Errorf("find student parents: %w", err)
	}
	return users, nil
}

// UpdateLastLogin stamps a successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET last_login = $1, updated_at = $1 WHERE id = $2", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("stamp login: %w", err)
	}
	return nil
}

// SetChildren replaces a parent's linked student ids.
func (r *UserRepository) SetChildren(ctx context.Context, id string, studentIDs []string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET hijos_ids = $1, updated_at = $2 WHERE id = $3",
		pq.StringArray(studentIDs), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set children: %w", err)
	}
	return nil
}

// CountByRole counts the accounts holding a role, for bootstrap checks.
func (r *UserRepository) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users WHERE role = $1", role); err != nil {
		return 0, fmt.Errorf("count %s accounts: %w", role, err)
	}
	return n, nil
}
