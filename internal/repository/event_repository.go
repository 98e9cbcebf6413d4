package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegio-app/colegio-api/internal/models"
)

const insertEvent = `
	INSERT INTO eventos (id, titulo, descripcion, fecha, lugar, created_by, created_at, updated_at)
	VALUES (:id, :titulo, :descripcion, :fecha, :lugar, :created_by, :created_at, :updated_at)`

var eventListSpec = ListSpec{
	Table:       "eventos",
	TextColumns: []string{"titulo", "descripcion", "lugar"},
	OrderBy:     "fecha DESC",
}

// EventRepository persists institutional events.
type EventRepository struct {
	table *Table[models.Event]
	pager *Paginator
}

func NewEventRepository(db *sqlx.DB, pager *Paginator) *EventRepository {
	return &EventRepository{
		table: NewTable[models.Event](db, "eventos", insertEvent,
			[]string{"titulo", "descripcion", "fecha", "lugar"}),
		pager: pager,
	}
}

func (r *EventRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	return r.table.Get(ctx, id)
}

func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	return r.table.Create(ctx, e)
}

func (r *EventRepository) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.table.UpdateFields(ctx, id, patch)
}

func (r *EventRepository) Delete(ctx context.Context, id string) (*models.Event, error) {
	return r.table.Delete(ctx, id)
}

func (r *EventRepository) List(ctx context.Context, req models.PageRequest) ([]models.Event, int, error) {
	return Paginate[models.Event](ctx, r.pager, eventListSpec, req, models.AcademicFilter{}, models.RoleScope{})
}
