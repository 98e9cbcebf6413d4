package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegio-app/colegio-api/internal/models"
)

const insertCourse = `
	INSERT INTO cursos (id, nombre, paralelo, nivel, turno, malla_id, tutor_id, created_at, updated_at)
	VALUES (:id, :nombre, :paralelo, :nivel, :turno, :malla_id, :tutor_id, :created_at, :updated_at)`

var courseListSpec = ListSpec{
	Table:       "cursos",
	TextColumns: []string{"nombre", "paralelo", "nivel", "turno"},
	OrderBy:     "nivel, nombre, paralelo",
}

// CourseRepository persists course sections.
type CourseRepository struct {
	table *Table[models.CourseSection]
	db    *sqlx.DB
	pager *Paginator
}

func NewCourseRepository(db *sqlx.DB, pager *Paginator) *CourseRepository {
	return &CourseRepository{
		table: NewTable[models.CourseSection](db, "cursos", insertCourse,
			[]string{"nombre", "paralelo", "nivel", "turno", "malla_id", "tutor_id"}),
		db:    db,
		pager: pager,
	}
}

func (r *CourseRepository) Get(ctx context.Context, id string) (*models.CourseSection, error) {
	return r.table.Get(ctx, id)
}

func (r *CourseRepository) Create(ctx context.Context, c *models.CourseSection) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return r.table.Create(ctx, c)
}

func (r *CourseRepository) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.table.UpdateFields(ctx, id, patch)
}

func (r *CourseRepository) Delete(ctx context.Context, id string) (*models.CourseSection, error) {
	return r.table.Delete(ctx, id)
}

func (r *CourseRepository) List(ctx context.Context, req models.PageRequest) ([]models.CourseSection, int, error) {
	return Paginate[models.CourseSection](ctx, r.pager, courseListSpec, req, models.AcademicFilter{}, models.RoleScope{})
}
