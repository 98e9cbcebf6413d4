package models

import "time"

// ReportState is the lifecycle of a grade-report document.
type ReportState string

const (
	ReportBorrador  ReportState = "BORRADOR"
	ReportPublicada ReportState = "PUBLICADA"
)

// GradeReport (libreta) is a per-student, per-gestion document. Student and
// section names are frozen at creation time so published reports keep the
// wording they were issued with even if the roster changes later.
type GradeReport struct {
	ID               string      `db:"id" json:"id"`
	EstudianteID     string      `db:"estudiante_id" json:"estudiante_id"`
	Gestion          int         `db:"gestion" json:"gestion"`
	Titulo           string      `db:"titulo" json:"titulo"`
	ArchivoURL       string      `db:"archivo_url" json:"archivo_url"`
	EstudianteNombre string      `db:"estudiante_nombre" json:"estudiante_nombre"`
	CursoNombre      *string     `db:"curso_nombre" json:"curso_nombre,omitempty"`
	EstadoDocumento  ReportState `db:"estado_documento" json:"estado_documento"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}
