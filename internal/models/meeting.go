package models

import "time"

// MeetingMode distinguishes on-site from virtual meetings.
type MeetingMode string

const (
	MeetingPresencial MeetingMode = "PRESENCIAL"
	MeetingVirtual    MeetingMode = "VIRTUAL"
)

// Meeting (reunión) is a scheduled parent meeting; virtual ones carry the
// conference link in Enlace.
type Meeting struct {
	ID          string      `db:"id" json:"id"`
	Titulo      string      `db:"titulo" json:"titulo"`
	Descripcion string      `db:"descripcion" json:"descripcion"`
	Fecha       time.Time   `db:"fecha" json:"fecha"`
	Modalidad   MeetingMode `db:"modalidad" json:"modalidad"`
	Enlace      *string     `db:"enlace" json:"enlace,omitempty"`
	CreatedBy   string      `db:"created_by" json:"created_by"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}
