package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegio-app/colegio-api/internal/models"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type curriculumRepository interface {
	Get(ctx context.Context, id string) (*models.Curriculum, error)
	Create(ctx context.Context, m *models.Curriculum) error
	UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) (*models.Curriculum, error)
	List(ctx context.Context, req models.PageRequest) ([]models.Curriculum, int, error)
	Exists(ctx context.Context, gestion int, nivel models.EducationLevel, anio int, excludeID string) (bool, error)
	CountSections(ctx context.Context, id string) (int, error)
}

// CurriculumService manages yearly academic plans.
type CurriculumService struct {
	repo      curriculumRepository
	validator *validator.Validate
	logger    *zap.Logger
}

func NewCurriculumService(repo curriculumRepository, validate *validator.Validate, logger *zap.Logger) *CurriculumService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CurriculumService{repo: repo, validator: validate, logger: logger}
}

// CreateCurriculumRequest describes a new plan. The school-year number is
// 1-6 within its level.
type CreateCurriculumRequest struct {
	Gestion         int                 `json:"gestion" validate:"required,gte=2000,lte=2100"`
	Nivel           string              `json:"nivel" validate:"required,oneof=INICIAL PRIMARIA SECUNDARIA"`
	AnioEscolaridad int                 `json:"anio_escolaridad" validate:"required,gte=1,lte=6"`
	Areas           models.SubjectAreas `json:"estructura_areas"`
}

// UpdateCurriculumRequest carries a partial update.
type UpdateCurriculumRequest struct {
	Gestion         *int                 `json:"gestion" validate:"omitempty,gte=2000,lte=2100"`
	Nivel           *string              `json:"nivel" validate:"omitempty,oneof=INICIAL PRIMARIA SECUNDARIA"`
	AnioEscolaridad *int                 `json:"anio_escolaridad" validate:"omitempty,gte=1,lte=6"`
	Areas           *models.SubjectAreas `json:"estructura_areas"`
}

func (s *CurriculumService) Create(ctx context.Context, req CreateCurriculumRequest) (*models.Curriculum, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	nivel := models.EducationLevel(req.Nivel)
	if nivel == models.LevelInicial && req.AnioEscolaridad > 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "inicial has only school years 1 and 2")
	}
	taken, err := s.repo.Exists(ctx, req.Gestion, nivel, req.AnioEscolaridad, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check curriculum")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("a %s year-%d plan for gestion %d already exists", nivel, req.AnioEscolaridad, req.Gestion))
	}

	malla := &models.Curriculum{
		Gestion:         req.Gestion,
		Nivel:           nivel,
		AnioEscolaridad: req.AnioEscolaridad,
		Areas:           req.Areas,
	}
	if err := s.repo.Create(ctx, malla); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create curriculum")
	}
	return malla, nil
}

func (s *CurriculumService) Get(ctx context.Context, id string) (*models.Curriculum, error) {
	malla, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load curriculum")
	}
	if malla == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "curriculum not found")
	}
	return malla, nil
}

func (s *CurriculumService) Update(ctx context.Context, id string, req UpdateCurriculumRequest) (*models.Curriculum, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	gestion := current.Gestion
	nivel := current.Nivel
	anio := current.AnioEscolaridad
	patch := map[string]interface{}{}
	if req.Gestion != nil {
		gestion = *req.Gestion
		patch["gestion"] = gestion
	}
	if req.Nivel != nil {
		nivel = models.EducationLevel(*req.Nivel)
		patch["nivel"] = nivel
	}
	if req.AnioEscolaridad != nil {
		anio = *req.AnioEscolaridad
		patch["anio_escolaridad"] = anio
	}
	if req.Areas != nil {
		patch["areas"] = *req.Areas
	}
	if nivel == models.LevelInicial && anio > 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "inicial has only school years 1 and 2")
	}
	if len(patch) > 0 {
		taken, err := s.repo.Exists(ctx, gestion, nivel, anio, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check curriculum")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("a %s year-%d plan for gestion %d already exists", nivel, anio, gestion))
		}
	}

	if err := s.repo.UpdateFields(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update curriculum")
	}
	return s.Get(ctx, id)
}

// Delete refuses to remove a plan that still backs course sections.
func (s *CurriculumService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.CountSections(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "count plan sections")
	}
	if n > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "curriculum is still referenced by course sections")
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete curriculum")
	}
	return nil
}

func (s *CurriculumService) List(ctx context.Context, req models.PageRequest) ([]models.Curriculum, models.PageMeta, error) {
	req = req.Normalize()
	mallas, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, models.PageMeta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list curricula")
	}
	return mallas, models.NewPageMeta(total, req), nil
}
