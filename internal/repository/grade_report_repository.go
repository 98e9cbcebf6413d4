package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegio-app/colegio-api/internal/models"
)

const insertGradeReport = `
	INSERT INTO libretas (id, estudiante_id, gestion, titulo, archivo_url, estudiante_nombre, curso_nombre, estado_documento, created_at, updated_at)
	VALUES (:id, :estudiante_id, :gestion, :titulo, :archivo_url, :estudiante_nombre, :curso_nombre, :estado_documento, :created_at, :updated_at)`

var gradeReportListSpec = ListSpec{
	Table:         "libretas",
	TextColumns:   []string{"titulo", "estudiante_nombre"},
	StudentColumn: "estudiante_id",
	StateColumn:   "estado_documento",
}

// GradeReportRepository persists libretas.
type GradeReportRepository struct {
	table *Table[models.GradeReport]
	db    *sqlx.DB
	pager *Paginator
}

func NewGradeReportRepository(db *sqlx.DB, pager *Paginator) *GradeReportRepository {
	return &GradeReportRepository{
		table: NewTable[models.GradeReport](db, "libretas", insertGradeReport,
			[]string{"gestion", "titulo", "archivo_url", "estado_documento"}),
		db:    db,
		pager: pager,
	}
}

func (r *GradeReportRepository) Get(ctx context.Context, id string) (*models.GradeReport, error) {
	return r.table.Get(ctx, id)
}

func (r *GradeReportRepository) Create(ctx context.Context, g *models.GradeReport) error {
	now := time.Now().UTC()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.EstadoDocumento == "" {
		g.EstadoDocumento = models.ReportBorrador
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	return r.table.Create(ctx, g)
}

func (r *GradeReportRepository) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.table.UpdateFields(ctx, id, patch)
}

func (r *GradeReportRepository) Delete(ctx context.Context, id string) (*models.GradeReport, error) {
	return r.table.Delete(ctx, id)
}

// List pages reports subject to the caller's scope; parents only ever see
// published documents for their own children.
func (r *GradeReportRepository) List(ctx context.Context, req models.PageRequest, f models.AcademicFilter, scope models.RoleScope) ([]models.GradeReport, int, error) {
	return Paginate[models.GradeReport](ctx, r.pager, gradeReportListSpec, req, f, scope)
}
