package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-app/colegio-api/internal/models"
)

var reportSpec = ListSpec{
	Table:         "libretas",
	TextColumns:   []string{"titulo"},
	StudentColumn: "estudiante_id",
	StateColumn:   "estado_documento",
}

func reportRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "estudiante_id", "gestion", "titulo", "archivo_url", "estudiante_nombre", "curso_nombre", "estado_documento", "created_at", "updated_at"}).
		AddRow("rep-1", "est-1", 2026, "Primer trimestre", "/uploads/libretas/a.pdf", "Ana García", nil, "PUBLICADA", time.Now(), time.Now())
}

func TestPaginateEmptyScope(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	p := NewPaginator(db)

	items, total, err := Paginate[models.GradeReport](context.Background(), p, reportSpec,
		models.PageRequest{}, models.AcademicFilter{}, models.RoleScope{Empty: true})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaginateParentScope(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	p := NewPaginator(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM libretas WHERE estado_documento = $1 AND estudiante_id = ANY($2)")).
		WithArgs("PUBLICADA", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM libretas WHERE estado_documento = $1 AND estudiante_id = ANY($2) ORDER BY created_at DESC LIMIT 10 OFFSET 0")).
		WithArgs("PUBLICADA", sqlmock.AnyArg()).
		WillReturnRows(reportRows())

	scope := models.RoleScope{StudentIDs: []string{"est-1"}, OnlyPublished: true}
	items, total, err := Paginate[models.GradeReport](context.Background(), p, reportSpec,
		models.PageRequest{}, models.AcademicFilter{}, scope)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaginateAcademicHopShortCircuits(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	p := NewPaginator(db)

	spec := ListSpec{Table: "estudiantes", SectionColumn: "curso_id"}

	// The shift matches no section; the estudiantes table is never touched.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM cursos WHERE turno = $1")).
		WithArgs("TARDE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, total, err := Paginate[models.Student](context.Background(), p, spec,
		models.PageRequest{}, models.AcademicFilter{Turno: models.ShiftTarde}, models.RoleScope{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaginateTextSearchStaysInsideScope(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	p := NewPaginator(db)

	// The name lookup also matches est-2, but the caller may only see
	// est-1, so the OR branch is intersected down before it reaches SQL.
	mock.ExpectQuery("SELECT id FROM estudiantes WHERE LOWER\\(nombres\\) LIKE \\$1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("est-1").AddRow("est-2"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM libretas WHERE (LOWER(titulo) LIKE $1 OR estudiante_id = ANY($2)) AND estudiante_id = ANY($3)")).
		WithArgs("%garcía%", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	scope := models.RoleScope{StudentIDs: []string{"est-1"}}
	items, total, err := Paginate[models.GradeReport](context.Background(), p, reportSpec,
		models.PageRequest{Query: "García"}, models.AcademicFilter{}, scope)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaginateScopeIntersectsAcademicFilter(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	p := NewPaginator(db)

	// Scope allows est-1 only; the academic filter resolves to est-2 and
	// est-3. The intersection is empty, so no libretas query runs.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM cursos WHERE turno = $1")).
		WithArgs("TARDE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("curso-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM estudiantes WHERE curso_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("est-2").AddRow("est-3"))

	scope := models.RoleScope{StudentIDs: []string{"est-1"}}
	items, total, err := Paginate[models.GradeReport](context.Background(), p, reportSpec,
		models.PageRequest{}, models.AcademicFilter{Turno: models.ShiftTarde}, scope)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIntersectPreservesOrder(t *testing.T) {
	assert.Equal(t, []string{"b", "c"}, intersect([]string{"a", "b", "c"}, []string{"b", "c", "d"}))
	assert.Empty(t, intersect([]string{"a"}, []string{"b"}))
}
