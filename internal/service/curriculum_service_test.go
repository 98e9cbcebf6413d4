package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-app/colegio-api/internal/models"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type mockCurriculumRepo struct {
	mallas   map[string]models.Curriculum
	sections map[string]int
}

func (m *mockCurriculumRepo) Get(ctx context.Context, id string) (*models.Curriculum, error) {
	if c, ok := m.mallas[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *mockCurriculumRepo) Create(ctx context.Context, c *models.Curriculum) error {
	if m.mallas == nil {
		m.mallas = make(map[string]models.Curriculum)
	}
	if c.ID == "" {
		c.ID = "malla-new"
	}
	m.mallas[c.ID] = *c
	return nil
}

func (m *mockCurriculumRepo) UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error {
	c := m.mallas[id]
	if v, ok := patch["gestion"]; ok {
		c.Gestion = v.(int)
	}
	if v, ok := patch["nivel"]; ok {
		c.Nivel = v.(models.EducationLevel)
	}
	if v, ok := patch["anio_escolaridad"]; ok {
		c.AnioEscolaridad = v.(int)
	}
	m.mallas[id] = c
	return nil
}

func (m *mockCurriculumRepo) Delete(ctx context.Context, id string) (*models.Curriculum, error) {
	if c, ok := m.mallas[id]; ok {
		delete(m.mallas, id)
		return &c, nil
	}
	return nil, nil
}

func (m *mockCurriculumRepo) List(ctx context.Context, req models.PageRequest) ([]models.Curriculum, int, error) {
	return []models.Curriculum{}, 0, nil
}

func (m *mockCurriculumRepo) Exists(ctx context.Context, gestion int, nivel models.EducationLevel, anio int, excludeID string) (bool, error) {
	for id, c := range m.mallas {
		if id == excludeID {
			continue
		}
		if c.Gestion == gestion && c.Nivel == nivel && c.AnioEscolaridad == anio {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCurriculumRepo) CountSections(ctx context.Context, id string) (int, error) {
	return m.sections[id], nil
}

func TestCurriculumCreateUniquePerYear(t *testing.T) {
	repo := &mockCurriculumRepo{mallas: map[string]models.Curriculum{
		"malla-1": {ID: "malla-1", Gestion: 2026, Nivel: models.LevelPrimaria, AnioEscolaridad: 5},
	}}
	svc := NewCurriculumService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateCurriculumRequest{
		Gestion: 2026, Nivel: "PRIMARIA", AnioEscolaridad: 5,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	malla, err := svc.Create(context.Background(), CreateCurriculumRequest{
		Gestion: 2026, Nivel: "PRIMARIA", AnioEscolaridad: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, malla.AnioEscolaridad)
}

func TestCurriculumInicialLimitedToTwoYears(t *testing.T) {
	svc := NewCurriculumService(&mockCurriculumRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateCurriculumRequest{
		Gestion: 2026, Nivel: "INICIAL", AnioEscolaridad: 3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	malla, err := svc.Create(context.Background(), CreateCurriculumRequest{
		Gestion: 2026, Nivel: "INICIAL", AnioEscolaridad: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LevelInicial, malla.Nivel)
}

func TestCurriculumUpdateCannotCollide(t *testing.T) {
	repo := &mockCurriculumRepo{mallas: map[string]models.Curriculum{
		"malla-1": {ID: "malla-1", Gestion: 2026, Nivel: models.LevelPrimaria, AnioEscolaridad: 5},
		"malla-2": {ID: "malla-2", Gestion: 2026, Nivel: models.LevelPrimaria, AnioEscolaridad: 6},
	}}
	svc := NewCurriculumService(repo, nil, nil)

	anio := 6
	_, err := svc.Update(context.Background(), "malla-1", UpdateCurriculumRequest{AnioEscolaridad: &anio})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCurriculumDeleteGuardedBySections(t *testing.T) {
	repo := &mockCurriculumRepo{
		mallas: map[string]models.Curriculum{
			"malla-1": {ID: "malla-1", Gestion: 2026, Nivel: models.LevelSecundaria, AnioEscolaridad: 1},
		},
		sections: map[string]int{"malla-1": 2},
	}
	svc := NewCurriculumService(repo, nil, nil)

	err := svc.Delete(context.Background(), "malla-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	repo.sections["malla-1"] = 0
	require.NoError(t, svc.Delete(context.Background(), "malla-1"))
	assert.Empty(t, repo.mallas)
}
