package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-app/colegio-api/internal/models"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type stubRoster struct {
	students []models.Student
}

func (s *stubRoster) ListBySection(ctx context.Context, sectionID string) ([]models.Student, error) {
	return s.students, nil
}

func newExportTestService() *ExportService {
	sections := &mockSectionLookup{sections: map[string]models.CourseSection{
		"curso-1": {ID: "curso-1", Nombre: "Quinto", Paralelo: "A", Nivel: models.LevelPrimaria, Turno: models.ShiftManana},
	}}
	roster := &stubRoster{students: []models.Student{
		{ID: "est-1", Rude: 80123456, Nombres: "Ana", Apellidos: "García", Estado: models.StudentActivo},
		{ID: "est-2", Rude: 80123457, Nombres: "Luis", Apellidos: "Quispe", Estado: models.StudentActivo},
	}}
	return NewExportService(sections, roster, nil)
}

func TestRosterCSV(t *testing.T) {
	svc := newExportTestService()

	out, err := svc.Roster(context.Background(), "curso-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "roster-Quinto-A.csv", out.FileName)
	assert.Equal(t, "text/csv", out.ContentType)

	assert.True(t, bytes.HasPrefix(out.Data, []byte("RUDE,Apellidos,Nombres,Estado")))
	assert.Contains(t, string(out.Data), "80123456,García,Ana,ACTIVO")
}

func TestRosterPDF(t *testing.T) {
	svc := newExportTestService()

	out, err := svc.Roster(context.Background(), "curso-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "roster-Quinto-A.pdf", out.FileName)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("%PDF")))
}

func TestRosterUnknownSection(t *testing.T) {
	svc := newExportTestService()

	_, err := svc.Roster(context.Background(), "curso-9", "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRosterUnknownFormat(t *testing.T) {
	svc := newExportTestService()

	_, err := svc.Roster(context.Background(), "curso-1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
