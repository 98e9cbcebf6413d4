package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegio-app/colegio-api/internal/models"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type meetingRepository interface {
	Get(ctx context.Context, id string) (*models.Meeting, error)
	Create(ctx context.Context, m *models.Meeting) error
	UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) (*models.Meeting, error)
	List(ctx context.Context, req models.PageRequest) ([]models.Meeting, int, error)
}

// MeetingService manages scheduled parent meetings.
type MeetingService struct {
	repo      meetingRepository
	notifier  eventNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

func NewMeetingService(repo meetingRepository, notifier eventNotifier, validate *validator.Validate, logger *zap.Logger) *MeetingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeetingService{repo: repo, notifier: notifier, validator: validate, logger: logger}
}

// CreateMeetingRequest describes a new meeting. Virtual meetings must carry
// the conference link.
type CreateMeetingRequest struct {
	Titulo      string    `json:"titulo" validate:"required"`
	Descripcion string    `json:"descripcion" validate:"required"`
	Fecha       time.Time `json:"fecha" validate:"required"`
	Modalidad   string    `json:"modalidad" validate:"required,oneof=PRESENCIAL VIRTUAL"`
	Enlace      *string   `json:"enlace"`
}

// Create registers the meeting and announces it to all active parents.
func (s *MeetingService) Create(ctx context.Context, claims *models.JWTClaims, req CreateMeetingRequest) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	modalidad := models.MeetingMode(req.Modalidad)
	if modalidad == models.MeetingVirtual && (req.Enlace == nil || strings.TrimSpace(*req.Enlace) == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "virtual meetings require enlace")
	}

	meeting := &models.Meeting{
		Titulo:      strings.TrimSpace(req.Titulo),
		Descripcion: strings.TrimSpace(req.Descripcion),
		Fecha:       req.Fecha,
		Modalidad:   modalidad,
		Enlace:      req.Enlace,
		CreatedBy:   claims.UserID,
	}
	if err := s.repo.Create(ctx, meeting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create meeting")
	}

	message := fmt.Sprintf("%s — %s (%s)", meeting.Titulo, meeting.Fecha.Format("02/01/2006 15:04"), meeting.Modalidad)
	if err := s.notifier.NotifyAllParents(ctx, models.NotifGeneral, "Nueva reunión", message, &meeting.ID); err != nil {
		s.logger.Warn("notify meeting creation", zap.String("meeting_id", meeting.ID), zap.Error(err))
	}
	return meeting, nil
}

func (s *MeetingService) Get(ctx context.Context, id string) (*models.Meeting, error) {
	meeting, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load meeting")
	}
	if meeting == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
	}
	return meeting, nil
}

// UpdateMeetingRequest carries a partial meeting edit.
type UpdateMeetingRequest struct {
	Titulo      *string    `json:"titulo"`
	Descripcion *string    `json:"descripcion"`
	Fecha       *time.Time `json:"fecha"`
	Modalidad   *string    `json:"modalidad" validate:"omitempty,oneof=PRESENCIAL VIRTUAL"`
	Enlace      *string    `json:"enlace"`
}

func (s *MeetingService) Update(ctx context.Context, id string, req UpdateMeetingRequest) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	modalidad := current.Modalidad
	enlace := current.Enlace
	patch := map[string]interface{}{}
	if req.Titulo != nil {
		patch["titulo"] = strings.TrimSpace(*req.Titulo)
	}
	if req.Descripcion != nil {
		patch["descripcion"] = strings.TrimSpace(*req.Descripcion)
	}
	if req.Fecha != nil {
		patch["fecha"] = *req.Fecha
	}
	if req.Modalidad != nil {
		modalidad = models.MeetingMode(*req.Modalidad)
		patch["modalidad"] = modalidad
	}
	if req.Enlace != nil {
		enlace = req.Enlace
		patch["enlace"] = *req.Enlace
	}
	if modalidad == models.MeetingVirtual && (enlace == nil || strings.TrimSpace(*enlace) == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "virtual meetings require enlace")
	}

	if err := s.repo.UpdateFields(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update meeting")
	}
	return s.Get(ctx, id)
}

func (s *MeetingService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete meeting")
	}
	if deleted == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
	}
	return nil
}

func (s *MeetingService) List(ctx context.Context, req models.PageRequest) ([]models.Meeting, models.PageMeta, error) {
	req = req.Normalize()
	meetings, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, models.PageMeta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list meetings")
	}
	return meetings, models.NewPageMeta(total, req), nil
}
