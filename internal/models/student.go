package models

import "time"

// StudentStatus tracks a student's academic situation.
type StudentStatus string

const (
	StudentActivo    StudentStatus = "ACTIVO"
	StudentRetirado  StudentStatus = "RETIRADO"
	StudentPromovido StudentStatus = "PROMOVIDO"
)

// Student represents a learner registered in the institution. The rude is
// the national student registry code and is unique across the system.
type Student struct {
	ID        string        `db:"id" json:"id"`
	Rude      int64         `db:"rude" json:"rude"`
	Nombres   string        `db:"nombres" json:"nombres"`
	Apellidos string        `db:"apellidos" json:"apellidos"`
	CursoID   *string       `db:"curso_id" json:"curso_id,omitempty"`
	Estado    StudentStatus `db:"estado" json:"estado"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// FullName joins the name fields the way reports and notifications show them.
func (s Student) FullName() string {
	if s.Apellidos == "" {
		return s.Nombres
	}
	return s.Nombres + " " + s.Apellidos
}
