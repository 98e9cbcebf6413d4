package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-app/colegio-api/internal/models"
)

func TestSectionIDsGradeForcesInicial(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	resolver := NewAcademicResolver(db)

	// KINDER means school year 2 of INICIAL even though the caller asked
	// for PRIMARIA alongside it.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM mallas WHERE anio_escolaridad = $1 AND nivel = $2")).
		WithArgs(2, "INICIAL").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("malla-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM cursos WHERE malla_id = ANY($1) AND nivel = $2")).
		WithArgs(sqlmock.AnyArg(), "INICIAL").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("curso-1").AddRow("curso-2"))

	ids, ok, err := resolver.SectionIDs(context.Background(), models.AcademicFilter{
		Nivel: models.LevelPrimaria,
		Grado: models.GradeKinder,
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"curso-1", "curso-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionIDsUnknownGrade(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	resolver := NewAcademicResolver(db)

	ids, ok, err := resolver.SectionIDs(context.Background(), models.AcademicFilter{Grado: "SEPTIMO"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionIDsNoFilter(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	resolver := NewAcademicResolver(db)

	ids, ok, err := resolver.SectionIDs(context.Background(), models.AcademicFilter{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentIDsStopsOnEmptySectionHop(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	resolver := NewAcademicResolver(db)

	// No section matches the shift, so the estudiantes table is never
	// queried.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM cursos WHERE turno = $1")).
		WithArgs("TARDE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, ok, err := resolver.StudentIDs(context.Background(), models.AcademicFilter{Turno: models.ShiftTarde})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentIDsChainsHops(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	resolver := NewAcademicResolver(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM cursos WHERE turno = $1")).
		WithArgs("TARDE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("curso-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM estudiantes WHERE curso_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("est-1"))

	ids, ok, err := resolver.StudentIDs(context.Background(), models.AcademicFilter{Turno: models.ShiftTarde})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"est-1"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentIDsByTextNumericTerm(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	resolver := NewAcademicResolver(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM estudiantes WHERE LOWER(nombres) LIKE $1 OR LOWER(apellidos) LIKE $1 OR LOWER(nombres || ' ' || apellidos) LIKE $1 OR rude = $2")).
		WithArgs("%80123456%", int64(80123456)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("est-1"))

	ids, err := resolver.StudentIDsByText(context.Background(), "80123456")
	require.NoError(t, err)
	assert.Equal(t, []string{"est-1"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
