package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegio-app/colegio-api/internal/models"
	"github.com/colegio-app/colegio-api/pkg/config"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
	"github.com/colegio-app/colegio-api/pkg/storage"
)

type gradeReportRepository interface {
	Get(ctx context.Context, id string) (*models.GradeReport, error)
	Create(ctx context.Context, g *models.GradeReport) error
	UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) (*models.GradeReport, error)
	List(ctx context.Context, req models.PageRequest, f models.AcademicFilter, scope models.RoleScope) ([]models.GradeReport, int, error)
}

type studentLookup interface {
	Get(ctx context.Context, id string) (*models.Student, error)
}

// GradeReportService manages libretas: draft creation by admins, file
// storage, and the one-way publish transition that announces the document
// to the student's parents.
type GradeReportService struct {
	repo      gradeReportRepository
	students  studentLookup
	sections  sectionLookup
	uploader  storage.Uploader
	notifier  Notifier
	parents   recipientDirectory
	uploads   config.UploadsConfig
	validator *validator.Validate
	logger    *zap.Logger
}

func NewGradeReportService(repo gradeReportRepository, students studentLookup, sections sectionLookup, uploader storage.Uploader, notifier Notifier, parents recipientDirectory, uploads config.UploadsConfig, validate *validator.Validate, logger *zap.Logger) *GradeReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeReportService{
		repo: repo, students: students, sections: sections,
		uploader: uploader, notifier: notifier, parents: parents,
		uploads: uploads, validator: validate, logger: logger,
	}
}

// CreateGradeReportRequest describes a new draft report. File bytes come
// from the multipart upload alongside the form fields.
type CreateGradeReportRequest struct {
	EstudianteID string `form:"estudiante_id" validate:"required"`
	Gestion      int    `form:"gestion" validate:"required,gte=2000,lte=2100"`
	Titulo       string `form:"titulo" validate:"required"`
	FileName     string `form:"-"`
	FileMIME     string `form:"-"`
	FileData     []byte `form:"-"`
}

// Create stores the file and registers the draft. The student and section
// names are frozen onto the record at this moment.
func (s *GradeReportService) Create(ctx context.Context, req CreateGradeReportRequest) (*models.GradeReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := checkUpload(s.uploads, req.FileMIME, int64(len(req.FileData))); err != nil {
		return nil, err
	}

	student, err := s.students.Get(ctx, req.EstudianteID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load student")
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "estudiante_id does not reference a known student")
	}

	var cursoNombre *string
	if student.CursoID != nil {
		section, err := s.sections.Get(ctx, *student.CursoID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load section")
		}
		if section != nil {
			name := fmt.Sprintf("%s %s", section.Nombre, section.Paralelo)
			cursoNombre = &name
		}
	}

	url, err := s.uploader.Upload(req.FileData, "libretas", req.FileName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "store report file")
	}

	report := &models.GradeReport{
		EstudianteID:     req.EstudianteID,
		Gestion:          req.Gestion,
		Titulo:           strings.TrimSpace(req.Titulo),
		ArchivoURL:       url,
		EstudianteNombre: student.FullName(),
		CursoNombre:      cursoNombre,
		EstadoDocumento:  models.ReportBorrador,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create report")
	}
	return report, nil
}

// Get loads one report subject to the caller's visibility: a parent sees
// only published documents of their own children. Documents outside the
// caller's family resolve as not found rather than forbidden, drafts of
// their own children as forbidden.
func (s *GradeReportService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.GradeReport, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load report")
	}
	if report == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	if claims != nil && !claims.IsAdmin() {
		if !canReadStudent(claims, report.EstudianteID) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		if report.EstadoDocumento != models.ReportPublicada {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "report is not published")
		}
	}
	return report, nil
}

// UpdateGradeReportRequest carries a partial update of a draft.
type UpdateGradeReportRequest struct {
	Titulo   *string `json:"titulo"`
	Gestion  *int    `json:"gestion" validate:"omitempty,gte=2000,lte=2100"`
	FileName string  `json:"-"`
	FileMIME string  `json:"-"`
	FileData []byte  `json:"-"`
}

// Update edits a report's metadata, optionally replacing the stored file.
func (s *GradeReportService) Update(ctx context.Context, id string, req UpdateGradeReportRequest) (*models.GradeReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load report")
	}
	if current == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}

	patch := map[string]interface{}{}
	if req.Titulo != nil {
		patch["titulo"] = strings.TrimSpace(*req.Titulo)
	}
	if req.Gestion != nil {
		patch["gestion"] = *req.Gestion
	}
	if len(req.FileData) > 0 {
		if err := checkUpload(s.uploads, req.FileMIME, int64(len(req.FileData))); err != nil {
			return nil, err
		}
		url, err := s.uploader.Upload(req.FileData, "libretas", req.FileName)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "store report file")
		}
		if delErr := s.uploader.Delete(current.ArchivoURL); delErr != nil {
			s.logger.Warn("remove replaced report file", zap.String("url", current.ArchivoURL), zap.Error(delErr))
		}
		patch["archivo_url"] = url
	}

	if err := s.repo.UpdateFields(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update report")
	}
	return s.repo.Get(ctx, id)
}

// Publish flips a draft to PUBLICADA and notifies the student's parents.
// Publishing an already-published report changes nothing and sends nothing.
func (s *GradeReportService) Publish(ctx context.Context, id string) (*models.GradeReport, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load report")
	}
	if report == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	if report.EstadoDocumento == models.ReportPublicada {
		return report, nil
	}

	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"estado_documento": models.ReportPublicada,
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "publish report")
	}
	report.EstadoDocumento = models.ReportPublicada

	parents, err := s.parents.FindParentsOfStudent(ctx, report.EstudianteID)
	if err != nil {
		s.logger.Warn("resolve report recipients", zap.String("report_id", id), zap.Error(err))
		return report, nil
	}
	title := "Libreta publicada"
	message := fmt.Sprintf("La libreta %q de %s ya está disponible.", report.Titulo, report.EstudianteNombre)
	if err := s.notifier.NotifyMany(ctx, userIDs(parents), models.NotifLibretaPublished, title, message, &report.ID); err != nil {
		s.logger.Warn("notify report publication", zap.String("report_id", id), zap.Error(err))
	}
	return report, nil
}

// Delete removes the report and its stored file.
func (s *GradeReportService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete report")
	}
	if deleted == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	if err := s.uploader.Delete(deleted.ArchivoURL); err != nil {
		s.logger.Warn("remove report file", zap.String("url", deleted.ArchivoURL), zap.Error(err))
	}
	return nil
}

// List pages reports under the caller's scope. Parents are always pinned to
// published documents of their own children; a parent without linked
// children gets an empty page without any storage round trip.
func (s *GradeReportService) List(ctx context.Context, claims *models.JWTClaims, req models.PageRequest, f models.AcademicFilter) ([]models.GradeReport, models.PageMeta, error) {
	req = req.Normalize()
	scope := scopeFor(claims, true)
	reports, total, err := s.repo.List(ctx, req, f, scope)
	if err != nil {
		return nil, models.PageMeta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list reports")
	}
	return reports, models.NewPageMeta(total, req), nil
}

// checkUpload enforces the configured MIME allowlist and size cap.
func checkUpload(cfg config.UploadsConfig, mime string, size int64) error {
	if size == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if cfg.MaxFileSizeBytes > 0 && size > cfg.MaxFileSizeBytes {
		return appErrors.New("FILE_TOO_LARGE", http.StatusBadRequest,
			fmt.Sprintf("file exceeds the %d byte limit", cfg.MaxFileSizeBytes))
	}
	if len(cfg.AllowedMIMEs) == 0 {
		return nil
	}
	for _, allowed := range cfg.AllowedMIMEs {
		if strings.EqualFold(strings.TrimSpace(mime), allowed) {
			return nil
		}
	}
	return appErrors.New("UNSUPPORTED_FILE_TYPE", http.StatusBadRequest,
		fmt.Sprintf("file type %q is not accepted", mime))
}
