package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegio-app/colegio-api/internal/models"
)

const insertMeeting = `
	INSERT INTO reuniones (id, titulo, descripcion, fecha, modalidad, enlace, created_by, created_at, updated_at)
	VALUES (:id, :titulo, :descripcion, :fecha, :modalidad, :enlace, :created_by, :created_at, :updated_at)`

var meetingListSpec = ListSpec{
	Table:       "reuniones",
	TextColumns: []string{"titulo", "descripcion", "modalidad"},
	OrderBy:     "fecha DESC",
}

// MeetingRepository persists scheduled parent meetings.
type MeetingRepository struct {
	table *Table[models.Meeting]
	pager *Paginator
}

func NewMeetingRepository(db *sqlx.DB, pager *Paginator) *MeetingRepository {
	return &MeetingRepository{
		table: NewTable[models.Meeting](db, "reuniones", insertMeeting,
			[]string{"titulo", "descripcion", "fecha", "modalidad", "enlace"}),
		pager: pager,
	}
}

func (r *MeetingRepository) Get(ctx context.Context, id string) (*models.Meeting, error) {
	return r.table.Get(ctx, id)
}

func (r *MeetingRepository) Create(ctx context.Context, m *models.Meeting) error {
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	return r.table.Create(ctx, m)
}

func (r *MeetingRepository) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.table.UpdateFields(ctx, id, patch)
}

func (r *MeetingRepository) Delete(ctx context.Context, id string) (*models.Meeting, error) {
	return r.table.Delete(ctx, id)
}

func (r *MeetingRepository) List(ctx context.Context, req models.PageRequest) ([]models.Meeting, int, error) {
	return Paginate[models.Meeting](ctx, r.pager, meetingListSpec, req, models.AcademicFilter{}, models.RoleScope{})
}
