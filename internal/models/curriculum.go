package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SubjectArea groups the subjects taught under one curricular field.
type SubjectArea struct {
	NombreCampo string   `json:"nombre_campo"`
	Materias    []string `json:"materias"`
}

// SubjectAreas is stored as a JSONB column.
type SubjectAreas []SubjectArea

// Value implements driver.Valuer.
func (a SubjectAreas) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *SubjectAreas) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("unsupported subject areas type %T", src)
	}
}

// Curriculum is the yearly academic plan (malla curricular) for one
// education level and school-year number.
type Curriculum struct {
	ID              string         `db:"id" json:"id"`
	Gestion         int            `db:"gestion" json:"gestion"`
	Nivel           EducationLevel `db:"nivel" json:"nivel"`
	AnioEscolaridad int            `db:"anio_escolaridad" json:"anio_escolaridad"`
	Areas           SubjectAreas   `db:"areas" json:"estructura_areas"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
