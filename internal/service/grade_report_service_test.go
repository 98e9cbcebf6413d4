package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-app/colegio-api/internal/models"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type mockReportRepo struct {
	reports   map[string]models.GradeReport
	lastScope models.RoleScope
}

func (m *mockReportRepo) Get(ctx context.Context, id string) (*models.GradeReport, error) {
	if r, ok := m.reports[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *mockReportRepo) Create(ctx context.Context, g *models.GradeReport) error {
	if m.reports == nil {
		m.reports = make(map[string]models.GradeReport)
	}
	if g.ID == "" {
		g.ID = "rep-new"
	}
	m.reports[g.ID] = *g
	return nil
}

func (m *mockReportRepo) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	r := m.reports[id]
	if v, ok := patch["estado_documento"]; ok {
		r.EstadoDocumento = v.(models.ReportState)
	}
	if v, ok := patch["titulo"]; ok {
		r.Titulo = v.(string)
	}
	if v, ok := patch["archivo_url"]; ok {
		r.ArchivoURL = v.(string)
	}
	m.reports[id] = r
	return nil
}

func (m *mockReportRepo) Delete(ctx context.Context, id string) (*models.GradeReport, error) {
	if r, ok := m.reports[id]; ok {
		delete(m.reports, id)
		return &r, nil
	}
	return nil, nil
}

func (m *mockReportRepo) List(ctx context.Context, req models.PageRequest, f models.AcademicFilter, scope models.RoleScope) ([]models.GradeReport, int, error) {
	m.lastScope = scope
	return []models.GradeReport{}, 0, nil
}

func newReportService(repo *mockReportRepo, notifier *fakeNotifier, directory *fakeDirectory) (*GradeReportService, *fakeUploader) {
	uploader := &fakeUploader{}
	if directory == nil {
		directory = &fakeDirectory{}
	}
	svc := NewGradeReportService(repo, &mockStudentLookup{students: map[string]models.Student{
		"est-1": {ID: "est-1", Rude: 80123456, Nombres: "Ana", Apellidos: "García"},
	}}, &mockSectionLookup{}, uploader, notifier, directory, testUploadsConfig(), nil, nil)
	return svc, uploader
}

func TestGradeReportCreateFreezesNames(t *testing.T) {
	repo := &mockReportRepo{}
	svc, _ := newReportService(repo, &fakeNotifier{}, nil)

	report, err := svc.Create(context.Background(), CreateGradeReportRequest{
		EstudianteID: "est-1",
		Gestion:      2026,
		Titulo:       "  Primer trimestre ",
		FileName:     "libreta.pdf",
		FileMIME:     "application/pdf",
		FileData:     []byte("%PDF-"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana García", report.EstudianteNombre)
	assert.Equal(t, "Primer trimestre", report.Titulo)
	assert.Equal(t, models.ReportBorrador, report.EstadoDocumento)
}

func TestGradeReportCreateRejectsBadMIME(t *testing.T) {
	repo := &mockReportRepo{}
	svc, _ := newReportService(repo, &fakeNotifier{}, nil)

	_, err := svc.Create(context.Background(), CreateGradeReportRequest{
		EstudianteID: "est-1",
		Gestion:      2026,
		Titulo:       "Primer trimestre",
		FileName:     "libreta.txt",
		FileMIME:     "text/plain",
		FileData:     []byte("hola"),
	})
	require.Error(t, err)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", appErrors.FromError(err).Code)
}

func TestGradeReportCreateRejectsOversizedFile(t *testing.T) {
	repo := &mockReportRepo{}
	svc, _ := newReportService(repo, &fakeNotifier{}, nil)

	_, err := svc.Create(context.Background(), CreateGradeReportRequest{
		EstudianteID: "est-1",
		Gestion:      2026,
		Titulo:       "Primer trimestre",
		FileName:     "libreta.pdf",
		FileMIME:     "application/pdf",
		FileData:     make([]byte, (1<<20)+1),
	})
	require.Error(t, err)
	assert.Equal(t, "FILE_TOO_LARGE", appErrors.FromError(err).Code)
}

func TestGradeReportPublishNotifiesParentsOnce(t *testing.T) {
	repo := &mockReportRepo{reports: map[string]models.GradeReport{
		"rep-1": {ID: "rep-1", EstudianteID: "est-1", Titulo: "Primer trimestre", EstadoDocumento: models.ReportBorrador},
	}}
	notifier := &fakeNotifier{}
	directory := &fakeDirectory{parentsOf: map[string][]models.User{
		"est-1": {{ID: "padre-1"}, {ID: "padre-2"}},
	}}
	svc, _ := newReportService(repo, notifier, directory)

	report, err := svc.Publish(context.Background(), "rep-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportPublicada, report.EstadoDocumento)
	require.Len(t, notifier.direct, 1)
	assert.Equal(t, []string{"padre-1", "padre-2"}, notifier.direct[0].recipients)
	assert.Equal(t, models.NotifLibretaPublished, notifier.direct[0].typ)

	// Publishing again is a silent no-op: no state change, no new fan-out.
	again, err := svc.Publish(context.Background(), "rep-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportPublicada, again.EstadoDocumento)
	assert.Len(t, notifier.direct, 1)
}

func TestGradeReportPublishSurvivesNotifierFailure(t *testing.T) {
	repo := &mockReportRepo{reports: map[string]models.GradeReport{
		"rep-1": {ID: "rep-1", EstudianteID: "est-1", EstadoDocumento: models.ReportBorrador},
	}}
	svc, _ := newReportService(repo, &fakeNotifier{fail: true}, &fakeDirectory{
		parentsOf: map[string][]models.User{"est-1": {{ID: "padre-1"}}},
	})

	report, err := svc.Publish(context.Background(), "rep-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportPublicada, report.EstadoDocumento)
}

func TestGradeReportGetParentVisibility(t *testing.T) {
	repo := &mockReportRepo{reports: map[string]models.GradeReport{
		"rep-own-draft":     {ID: "rep-own-draft", EstudianteID: "est-1", EstadoDocumento: models.ReportBorrador},
		"rep-own-published": {ID: "rep-own-published", EstudianteID: "est-1", EstadoDocumento: models.ReportPublicada},
		"rep-foreign":       {ID: "rep-foreign", EstudianteID: "est-9", EstadoDocumento: models.ReportPublicada},
	}}
	svc, _ := newReportService(repo, &fakeNotifier{}, nil)
	claims := parentClaims("est-1")

	report, err := svc.Get(context.Background(), claims, "rep-own-published")
	require.NoError(t, err)
	assert.Equal(t, "rep-own-published", report.ID)

	// Another family's document looks like it does not exist at all.
	_, err = svc.Get(context.Background(), claims, "rep-foreign")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	// The parent's own child, but still a draft.
	_, err = svc.Get(context.Background(), claims, "rep-own-draft")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// Admins see drafts.
	draft, err := svc.Get(context.Background(), adminClaims(), "rep-own-draft")
	require.NoError(t, err)
	assert.Equal(t, models.ReportBorrador, draft.EstadoDocumento)
}

func TestGradeReportListScopesParents(t *testing.T) {
	repo := &mockReportRepo{}
	svc, _ := newReportService(repo, &fakeNotifier{}, nil)

	_, _, err := svc.List(context.Background(), parentClaims("est-1"), models.PageRequest{}, models.AcademicFilter{})
	require.NoError(t, err)
	assert.True(t, repo.lastScope.OnlyPublished)
	assert.Equal(t, []string{"est-1"}, repo.lastScope.StudentIDs)

	_, _, err = svc.List(context.Background(), parentClaims(), models.PageRequest{}, models.AcademicFilter{})
	require.NoError(t, err)
	assert.True(t, repo.lastScope.Empty)
}

func TestGradeReportDeleteRemovesFile(t *testing.T) {
	repo := &mockReportRepo{reports: map[string]models.GradeReport{
		"rep-1": {ID: "rep-1", EstudianteID: "est-1", ArchivoURL: "/uploads/libretas/a.pdf"},
	}}
	svc, uploader := newReportService(repo, &fakeNotifier{}, nil)

	require.NoError(t, svc.Delete(context.Background(), "rep-1"))
	assert.Equal(t, []string{"/uploads/libretas/a.pdf"}, uploader.deleted)

	err := svc.Delete(context.Background(), "rep-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
