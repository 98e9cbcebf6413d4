package models

import "math"

// PageMeta carries the pagination block returned by every list endpoint.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// NewPageMeta derives the metadata for a result set of the given size.
func NewPageMeta(total int, req PageRequest) PageMeta {
	pages := 0
	if req.PerPage > 0 {
		pages = int(math.Ceil(float64(total) / float64(req.PerPage)))
	}
	return PageMeta{Total: total, Page: req.Page, PerPage: req.PerPage, TotalPages: pages}
}

// PageRequest captures the common listing parameters.
type PageRequest struct {
	Page    int
	PerPage int
	Query   string
}

// Normalize clamps page and per_page into their contract ranges.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PerPage < 1 {
		r.PerPage = 10
	}
	if r.PerPage > 100 {
		r.PerPage = 100
	}
	return r
}

// Offset returns the row offset for the current page.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PerPage
}

// EducationLevel enumerates the institution's academic levels.
type EducationLevel string

const (
	LevelInicial    EducationLevel = "INICIAL"
	LevelPrimaria   EducationLevel = "PRIMARIA"
	LevelSecundaria EducationLevel = "SECUNDARIA"
)

// Shift enumerates class shifts.
type Shift string

const (
	ShiftManana Shift = "MAÑANA"
	ShiftTarde  Shift = "TARDE"
)

// Grade is the colloquial grade label used by clients when filtering.
type Grade string

const (
	GradePreKinder Grade = "PRE_KINDER"
	GradeKinder    Grade = "KINDER"
	GradePrimero   Grade = "PRIMERO"
	GradeSegundo   Grade = "SEGUNDO"
	GradeTercero   Grade = "TERCERO"
	GradeCuarto    Grade = "CUARTO"
	GradeQuinto    Grade = "QUINTO"
	GradeSexto     Grade = "SEXTO"
)

var gradeYears = map[Grade]int{
	GradePreKinder: 1,
	GradeKinder:    2,
	GradePrimero:   1,
	GradeSegundo:   2,
	GradeTercero:   3,
	GradeCuarto:    4,
	GradeQuinto:    5,
	GradeSexto:     6,
}

// SchoolYear maps a grade label to its school-year number (1-6). Pre-kinder
// and kinder always belong to the INICIAL level regardless of any level
// filter supplied alongside them.
func (g Grade) SchoolYear() (year int, forced EducationLevel, ok bool) {
	year, ok = gradeYears[g]
	if !ok {
		return 0, "", false
	}
	if g == GradePreKinder || g == GradeKinder {
		forced = LevelInicial
	}
	return year, forced, true
}

// AcademicFilter holds the structured curriculum-level filters accepted by
// the list endpoints (nivel, grado, turno, paralelo).
type AcademicFilter struct {
	Nivel    EducationLevel
	Grado    Grade
	Turno    Shift
	Paralelo string
}

// IsZero reports whether no structured filter was supplied.
func (f AcademicFilter) IsZero() bool {
	return f.Nivel == "" && f.Grado == "" && f.Turno == "" && f.Paralelo == ""
}

// RoleScope restricts a listing to the records visible to the caller. A nil
// StudentIDs slice means unconstrained; Empty short-circuits the whole query.
type RoleScope struct {
	ParentID      string
	StudentIDs    []string
	OnlyPublished bool
	Empty         bool
}
