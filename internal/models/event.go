package models

import "time"

// Event (evento) is an institutional activity announced to all parents.
type Event struct {
	ID          string    `db:"id" json:"id"`
	Titulo      string    `db:"titulo" json:"titulo"`
	Descripcion string    `db:"descripcion" json:"descripcion"`
	Fecha       time.Time `db:"fecha" json:"fecha"`
	Lugar       *string   `db:"lugar" json:"lugar,omitempty"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
