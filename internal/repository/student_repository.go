package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/colegio-app/colegio-api/internal/models"
)

const insertStudent = `
	INSERT INTO estudiantes (id, rude, nombres, apellidos, curso_id, estado, created_at, updated_at)
	VALUES (:id, :rude, :nombres, :apellidos, :curso_id, :estado, :created_at, :updated_at)`

var studentListSpec = ListSpec{
	Table:         "estudiantes",
	TextColumns:   []string{"nombres", "apellidos"},
	NumericColumn: "rude",
	SectionColumn: "curso_id",
}

// StudentRepository persists the student roster.
type StudentRepository struct {
	table *Table[models.Student]
	db    *sqlx.DB
	pager *Paginator
}

func NewStudentRepository(db *sqlx.DB, pager *Paginator) *StudentRepository {
	return &StudentRepository{
		table: NewTable[models.Student](db, "estudiantes", insertStudent,
			[]string{"rude", "nombres", "apellidos", "curso_id", "estado"}),
		db:    db,
		pager: pager,
	}
}

func (r *StudentRepository) Get(ctx context.Context, id string) (*models.Student, error) {
	return r.table.Get(ctx, id)
}

func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	now := time.Now().UTC()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Estado == "" {
		s.Estado = models.StudentActivo
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	return r.table.Create(ctx, s)
}

func (r *StudentRepository) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.table.UpdateFields(ctx, id, patch)
}

func (r *StudentRepository) Delete(ctx context.Context, id string) (*models.Student, error) {
	return r.table.Delete(ctx, id)
}

// List pages the roster with academic filters and free-text search.
func (r *StudentRepository) List(ctx context.Context, req models.PageRequest, f models.AcademicFilter) ([]models.Student, int, error) {
	return Paginate[models.Student](ctx, r.pager, studentListSpec, req, f, models.RoleScope{})
}

// ExistsByRude reports whether another student already holds the rude code.
func (r *StudentRepository) ExistsByRude(ctx context.Context, rude int64, excludeID string) (bool, error) {
	query := "SELECT COUNT(*) FROM estudiantes WHERE rude = $1"
	args := []interface{}{rude}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return false, fmt.Errorf("check rude: %w", err)
	}
	return n > 0, nil
}

// FindByRude fetches a student by rude code, nil when absent.
func (r *StudentRepository) FindByRude(ctx context.Context, rude int64) (*models.Student, error) {
	var s models.Student
	err := r.db.GetContext(ctx, &s, "SELECT * FROM estudiantes WHERE rude = $1", rude)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by rude: %w", err)
	}
	return &s, nil
}

// FindByIDs fetches the students in the id set, skipping unknown ids.
func (r *StudentRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Student, error) {
	students := []models.Student{}
	if len(ids) == 0 {
		return students, nil
	}
	query := "SELECT * FROM estudiantes WHERE id = ANY($1) ORDER BY apellidos, nombres"
	if err := r.db.SelectContext(ctx, &students, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find students: %w", err)
	}
	return students, nil
}

// ListBySection returns the full roster of one course section, for exports.
func (r *StudentRepository) ListBySection(ctx context.Context, sectionID string) ([]models.Student, error) {
	students := []models.Student{}
	query := "SELECT * FROM estudiantes WHERE curso_id = $1 ORDER BY apellidos, nombres"
	if err := r.db.SelectContext(ctx, &students, query, sectionID); err != nil {
		return nil, fmt.Errorf("list section roster: %w", err)
	}
	return students, nil
}
