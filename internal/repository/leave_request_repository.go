package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegio-app/colegio-api/internal/models"
)

const insertLeaveRequest = `
	INSERT INTO licencias (id, padre_id, estudiante_id, fecha_inicio, fecha_fin, tipo, motivo, adjunto, estado, respuesta_admin, created_at, updated_at)
	VALUES (:id, :padre_id, :estudiante_id, :fecha_inicio, :fecha_fin, :tipo, :motivo, :adjunto, :estado, :respuesta_admin, :created_at, :updated_at)`

var leaveRequestListSpec = ListSpec{
	Table:         "licencias",
	TextColumns:   []string{"motivo", "tipo", "estado"},
	StudentColumn: "estudiante_id",
	ParentColumn:  "padre_id",
}

// LeaveRequestRepository persists licencias.
type LeaveRequestRepository struct {
	table *Table[models.LeaveRequest]
	db    *sqlx.DB
	pager *Paginator
}

func NewLeaveRequestRepository(db *sqlx.DB, pager *Paginator) *LeaveRequestRepository {
	return &LeaveRequestRepository{
		table: NewTable[models.LeaveRequest](db, "licencias", insertLeaveRequest,
			[]string{"fecha_inicio", "fecha_fin", "tipo", "motivo", "adjunto", "estado", "respuesta_admin"}),
		db:    db,
		pager: pager,
	}
}

func (r *LeaveRequestRepository) Get(ctx context.Context, id string) (*models.LeaveRequest, error) {
	return r.table.Get(ctx, id)
}

func (r *LeaveRequestRepository) Create(ctx context.Context, l *models.LeaveRequest) error {
	now := time.Now().UTC()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Estado == "" {
		l.Estado = models.LeavePendiente
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	return r.table.Create(ctx, l)
}

func (r *LeaveRequestRepository) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.table.UpdateFields(ctx, id, patch)
}

func (r *LeaveRequestRepository) Delete(ctx context.Context, id string) (*models.LeaveRequest, error) {
	return r.table.Delete(ctx, id)
}

func (r *LeaveRequestRepository) List(ctx context.Context, req models.PageRequest, f models.AcademicFilter, scope models.RoleScope) ([]models.LeaveRequest, int, error) {
	return Paginate[models.LeaveRequest](ctx, r.pager, leaveRequestListSpec, req, f, scope)
}
