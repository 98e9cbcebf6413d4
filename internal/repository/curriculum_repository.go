package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegio-app/colegio-api/internal/models"
)

const insertCurriculum = `
	INSERT INTO mallas (id, gestion, nivel, anio_escolaridad, areas, created_at, updated_at)
	VALUES (:id, :gestion, :nivel, :anio_escolaridad, :areas, :created_at, :updated_at)`

var curriculumListSpec = ListSpec{
	Table:       "mallas",
	TextColumns: []string{"nivel"},
	OrderBy:     "gestion DESC, nivel, anio_escolaridad",
}

// CurriculumRepository persists yearly academic plans (mallas).
type CurriculumRepository struct {
	table *Table[models.Curriculum]
	db    *sqlx.DB
	pager *Paginator
}

func NewCurriculumRepository(db *sqlx.DB, pager *Paginator) *CurriculumRepository {
	return &CurriculumRepository{
		table: NewTable[models.Curriculum](db, "mallas", insertCurriculum,
			[]string{"gestion", "nivel", "anio_escolaridad", "areas"}),
		db:    db,
		pager: pager,
	}
}

func (r *CurriculumRepository) Get(ctx context.Context, id string) (*models.Curriculum, error) {
	return r.table.Get(ctx, id)
}

func (r *CurriculumRepository) Create(ctx context.Context, m *models.Curriculum) error {
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	return r.table.Create(ctx, m)
}

func (r *CurriculumRepository) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.table.UpdateFields(ctx, id, patch)
}

func (r *CurriculumRepository) Delete(ctx context.Context, id string) (*models.Curriculum, error) {
	return r.table.Delete(ctx, id)
}

func (r *CurriculumRepository) List(ctx context.Context, req models.PageRequest) ([]models.Curriculum, int, error) {
	return Paginate[models.Curriculum](ctx, r.pager, curriculumListSpec, req, models.AcademicFilter{}, models.RoleScope{})
}

// Exists reports whether a plan for the same gestion, level and school year
// is already registered.
func (r *CurriculumRepository) Exists(ctx context.Context, gestion int, nivel models.EducationLevel, anio int, excludeID string) (bool, error) {
	query := "SELECT COUNT(*) FROM mallas WHERE gestion = $1 AND nivel = $2 AND anio_escolaridad = $3"
	args := []interface{}{gestion, nivel, anio}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return false, fmt.Errorf("check malla: %w", err)
	}
	return n > 0, nil
}

// CountSections reports how many course sections reference the plan.
func (r *CurriculumRepository) CountSections(ctx context.Context, id string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM cursos WHERE malla_id = $1", id); err != nil {
		return 0, fmt.Errorf("count plan sections: %w", err)
	}
	return n, nil
}
