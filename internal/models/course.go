package models

import "time"

// CourseSection is a concrete class group (e.g. "Quinto A Secundaria")
// instantiating a curriculum for a shift and parallel label. Students point
// at their section through Student.CursoID; the section never embeds them.
type CourseSection struct {
	ID        string         `db:"id" json:"id"`
	Nombre    string         `db:"nombre" json:"nombre"`
	Paralelo  string         `db:"paralelo" json:"paralelo"`
	Nivel     EducationLevel `db:"nivel" json:"nivel"`
	Turno     Shift          `db:"turno" json:"turno"`
	MallaID   string         `db:"malla_id" json:"malla_id"`
	TutorID   *string        `db:"tutor_id" json:"tutor_id,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
