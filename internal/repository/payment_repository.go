package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegio-app/colegio-api/internal/models"
)

const insertPayment = `
	INSERT INTO pagos (id, padre_id, estudiante_id, concepto, monto, fecha_vencimiento, estado, comprobante, created_at, updated_at)
	VALUES (:id, :padre_id, :estudiante_id, :concepto, :monto, :fecha_vencimiento, :estado, :comprobante, :created_at, :updated_at)`

var paymentListSpec = ListSpec{
	Table:         "pagos",
	TextColumns:   []string{"concepto", "estado"},
	StudentColumn: "estudiante_id",
	ParentColumn:  "padre_id",
}

// PaymentRepository persists pagos.
type PaymentRepository struct {
	table *Table[models.Payment]
	db    *sqlx.DB
	pager *Paginator
}

func NewPaymentRepository(db *sqlx.DB, pager *Paginator) *PaymentRepository {
	return &PaymentRepository{
		table: NewTable[models.Payment](db, "pagos", insertPayment,
			[]string{"concepto", "monto", "fecha_vencimiento", "estado", "comprobante"}),
		db:    db,
		pager: pager,
	}
}

func (r *PaymentRepository) Get(ctx context.Context, id string) (*models.Payment, error) {
	return r.table.Get(ctx, id)
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Estado == "" {
		p.Estado = models.PaymentPendiente
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return r.table.Create(ctx, p)
}

func (r *PaymentRepository) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.table.UpdateFields(ctx, id, patch)
}

func (r *PaymentRepository) Delete(ctx context.Context, id string) (*models.Payment, error) {
	return r.table.Delete(ctx, id)
}

func (r *PaymentRepository) List(ctx context.Context, req models.PageRequest, f models.AcademicFilter, scope models.RoleScope) ([]models.Payment, int, error) {
	return Paginate[models.Payment](ctx, r.pager, paymentListSpec, req, f, scope)
}
