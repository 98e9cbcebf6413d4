package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/colegio-app/colegio-api/internal/models"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type studentRepository interface {
	Get(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, s *models.Student) error
	UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) (*models.Student, error)
	List(ctx context.Context, req models.PageRequest, f models.AcademicFilter) ([]models.Student, int, error)
	ExistsByRude(ctx context.Context, rude int64, excludeID string) (bool, error)
	FindByRude(ctx context.Context, rude int64) (*models.Student, error)
}

type sectionLookup interface {
	Get(ctx context.Context, id string) (*models.CourseSection, error)
}

// StudentService manages the roster.
type StudentService struct {
	repo      studentRepository
	sections  sectionLookup
	validator *validator.Validate
	logger    *zap.Logger
}

func NewStudentService(repo studentRepository, sections sectionLookup, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, sections: sections, validator: validate, logger: logger}
}

// CreateStudentRequest describes the enrolment payload.
type CreateStudentRequest struct {
	Rude      int64   `json:"rude" validate:"required,gt=0"`
	Nombres   string  `json:"nombres" validate:"required"`
	Apellidos string  `json:"apellidos" validate:"required"`
	CursoID   *string `json:"curso_id"`
	Estado    string  `json:"estado" validate:"omitempty,oneof=ACTIVO RETIRADO PROMOVIDO"`
}

// UpdateStudentRequest carries a partial update; nil fields are untouched.
type UpdateStudentRequest struct {
	Rude      *int64  `json:"rude" validate:"omitempty,gt=0"`
	Nombres   *string `json:"nombres"`
	Apellidos *string `json:"apellidos"`
	CursoID   *string `json:"curso_id"`
	Estado    *string `json:"estado" validate:"omitempty,oneof=ACTIVO RETIRADO PROMOVIDO"`
}

func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	taken, err := s.repo.ExistsByRude(ctx, req.Rude, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check rude")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("rude %d is already registered", req.Rude))
	}
	if err := s.checkSection(ctx, req.CursoID); err != nil {
		return nil, err
	}

	student := &models.Student{
		Rude:      req.Rude,
		Nombres:   strings.TrimSpace(req.Nombres),
		Apellidos: strings.TrimSpace(req.Apellidos),
		CursoID:   req.CursoID,
		Estado:    models.StudentStatus(req.Estado),
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create student")
	}
	return student, nil
}

func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load student")
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	patch := map[string]interface{}{}
	if req.Rude != nil {
		taken, err := s.repo.ExistsByRude(ctx, *req.Rude, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check rude")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("rude %d is already registered", *req.Rude))
		}
		patch["rude"] = *req.Rude
	}
	if req.Nombres != nil {
		patch["nombres"] = strings.TrimSpace(*req.Nombres)
	}
	if req.Apellidos != nil {
		patch["apellidos"] = strings.TrimSpace(*req.Apellidos)
	}
	if req.CursoID != nil {
		if err := s.checkSection(ctx, req.CursoID); err != nil {
			return nil, err
		}
		patch["curso_id"] = *req.CursoID
	}
	if req.Estado != nil {
		patch["estado"] = *req.Estado
	}

	if err := s.repo.UpdateFields(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update student")
	}
	return s.Get(ctx, id)
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete student")
	}
	if deleted == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}

func (s *StudentService) List(ctx context.Context, req models.PageRequest, f models.AcademicFilter) ([]models.Student, models.PageMeta, error) {
	req = req.Normalize()
	students, total, err := s.repo.List(ctx, req, f)
	if err != nil {
		return nil, models.PageMeta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list students")
	}
	return students, models.NewPageMeta(total, req), nil
}

// ImportResult summarises a bulk spreadsheet operation.
type ImportResult struct {
	Created int      `json:"created"`
	Deleted int      `json:"deleted"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportXLSX enrols students from a spreadsheet whose first sheet carries
// the columns rude | nombres | apellidos (header row required). Rows with a
// rude already registered are skipped, malformed rows are reported but do
// not abort the rest of the file.
func (s *StudentService) ImportXLSX(ctx context.Context, data []byte) (*ImportResult, error) {
	rows, err := sheetRows(data)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []string{}}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		line := i + 1
		if len(row) < 3 || strings.TrimSpace(row[0]) == "" {
			result.Skipped++
			continue
		}
		rude, convErr := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if convErr != nil || rude <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid rude %q", line, row[0]))
			continue
		}
		nombres := strings.TrimSpace(row[1])
		apellidos := strings.TrimSpace(row[2])
		if nombres == "" || apellidos == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing name fields", line))
			continue
		}

		taken, err := s.repo.ExistsByRude(ctx, rude, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check rude")
		}
		if taken {
			result.Skipped++
			continue
		}

		student := &models.Student{Rude: rude, Nombres: nombres, Apellidos: apellidos}
		if err := s.repo.Create(ctx, student); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		result.Created++
	}

	s.logger.Info("student import finished",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// BulkDeleteXLSX removes students listed by rude in the first column of the
// first sheet. Unknown rude codes count as skipped.
func (s *StudentService) BulkDeleteXLSX(ctx context.Context, data []byte) (*ImportResult, error) {
	rows, err := sheetRows(data)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []string{}}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		line := i + 1
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			result.Skipped++
			continue
		}
		rude, convErr := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if convErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid rude %q", line, row[0]))
			continue
		}
		student, err := s.repo.FindByRude(ctx, rude)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "find student")
		}
		if student == nil {
			result.Skipped++
			continue
		}
		if _, err := s.repo.Delete(ctx, student.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		result.Deleted++
	}
	return result, nil
}

func (s *StudentService) checkSection(ctx context.Context, sectionID *string) error {
	if sectionID == nil || *sectionID == "" {
		return nil
	}
	section, err := s.sections.Get(ctx, *sectionID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load section")
	}
	if section == nil {
		return appErrors.Clone(appErrors.ErrValidation, "curso_id does not reference a known section")
	}
	return nil
}

func sheetRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is not a readable xlsx spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "spreadsheet rows are unreadable")
	}
	return rows, nil
}
