package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegio-app/colegio-api/internal/models"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type courseRepository interface {
	Get(ctx context.Context, id string) (*models.CourseSection, error)
	Create(ctx context.Context, c *models.CourseSection) error
	UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) (*models.CourseSection, error)
	List(ctx context.Context, req models.PageRequest) ([]models.CourseSection, int, error)
}

type curriculumLookup interface {
	Get(ctx context.Context, id string) (*models.Curriculum, error)
}

type rosterLookup interface {
	ListBySection(ctx context.Context, sectionID string) ([]models.Student, error)
}

// CourseService manages course sections.
type CourseService struct {
	repo      courseRepository
	mallas    curriculumLookup
	roster    rosterLookup
	validator *validator.Validate
	logger    *zap.Logger
}

func NewCourseService(repo courseRepository, mallas curriculumLookup, roster rosterLookup, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, mallas: mallas, roster: roster, validator: validate, logger: logger}
}

// CreateCourseRequest describes a new section.
type CreateCourseRequest struct {
	Nombre   string  `json:"nombre" validate:"required"`
	Paralelo string  `json:"paralelo" validate:"required,len=1,alpha"`
	Nivel    string  `json:"nivel" validate:"required,oneof=INICIAL PRIMARIA SECUNDARIA"`
	Turno    string  `json:"turno" validate:"required,oneof=MAÑANA TARDE"`
	MallaID  string  `json:"malla_id" validate:"required"`
	TutorID  *string `json:"tutor_id"`
}

// UpdateCourseRequest carries a partial update.
type UpdateCourseRequest struct {
	Nombre   *string `json:"nombre"`
	Paralelo *string `json:"paralelo" validate:"omitempty,len=1,alpha"`
	Nivel    *string `json:"nivel" validate:"omitempty,oneof=INICIAL PRIMARIA SECUNDARIA"`
	Turno    *string `json:"turno" validate:"omitempty,oneof=MAÑANA TARDE"`
	MallaID  *string `json:"malla_id"`
	TutorID  *string `json:"tutor_id"`
}

func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.CourseSection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if err := s.checkMalla(ctx, req.MallaID); err != nil {
		return nil, err
	}

	course := &models.CourseSection{
		Nombre:   strings.TrimSpace(req.Nombre),
		Paralelo: strings.ToUpper(req.Paralelo),
		Nivel:    models.EducationLevel(req.Nivel),
		Turno:    models.Shift(req.Turno),
		MallaID:  req.MallaID,
		TutorID:  req.TutorID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create section")
	}
	return course, nil
}

func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseSection, error) {
	course, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load section")
	}
	if course == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.CourseSection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	patch := map[string]interface{}{}
	if req.Nombre != nil {
		patch["nombre"] = strings.TrimSpace(*req.Nombre)
	}
	if req.Paralelo != nil {
		patch["paralelo"] = strings.ToUpper(*req.Paralelo)
	}
	if req.Nivel != nil {
		patch["nivel"] = *req.Nivel
	}
	if req.Turno != nil {
		patch["turno"] = *req.Turno
	}
	if req.MallaID != nil {
		if err := s.checkMalla(ctx, *req.MallaID); err != nil {
			return nil, err
		}
		patch["malla_id"] = *req.MallaID
	}
	if req.TutorID != nil {
		patch["tutor_id"] = *req.TutorID
	}

	if err := s.repo.UpdateFields(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update section")
	}
	return s.Get(ctx, id)
}

// Delete refuses to remove a section that still has enrolled students.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	students, err := s.roster.ListBySection(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load roster")
	}
	if len(students) > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "section still has enrolled students")
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete section")
	}
	return nil
}

func (s *CourseService) List(ctx context.Context, req models.PageRequest) ([]models.CourseSection, models.PageMeta, error) {
	req = req.Normalize()
	courses, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, models.PageMeta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list sections")
	}
	return courses, models.NewPageMeta(total, req), nil
}

// Roster returns the full student list of one section, for display and
// export.
func (s *CourseService) Roster(ctx context.Context, id string) (*models.CourseSection, []models.Student, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	students, err := s.roster.ListBySection(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load roster")
	}
	return course, students, nil
}

// ImportXLSX creates sections from a spreadsheet whose first sheet carries
// the columns nombre | paralelo | nivel | turno | malla_id and, optionally,
// tutor_id (header row required). Each row is validated like a single
// create; a bad row is reported and the rest of the file continues.
func (s *CourseService) ImportXLSX(ctx context.Context, data []byte) (*ImportResult, error) {
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
		if len(row) < 5 {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: expected nombre, paralelo, nivel, turno, malla_id", line))
			continue
		}
		req := CreateCourseRequest{
			Nombre:   strings.TrimSpace(row[0]),
			Paralelo: strings.TrimSpace(row[1]),
			Nivel:    strings.ToUpper(strings.TrimSpace(row[2])),
			Turno:    strings.ToUpper(strings.TrimSpace(row[3])),
			MallaID:  strings.TrimSpace(row[4]),
		}
		if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
			tutor := strings.TrimSpace(row[5])
			req.TutorID = &tutor
		}
		if _, err := s.Create(ctx, req); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", line, appErrors.FromError(err).Message))
			continue
		}
		result.Created++
	}

	s.logger.Info("section import finished",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (s *CourseService) checkMalla(ctx context.Context, mallaID string) error {
	malla, err := s.mallas.Get(ctx, mallaID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load curriculum")
	}
	if malla == nil {
		return appErrors.Clone(appErrors.ErrValidation, "malla_id does not reference a known curriculum")
	}
	return nil
}
