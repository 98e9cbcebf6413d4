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

type eventRepository interface {
	Get(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, e *models.Event) error
	UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, req models.PageRequest) ([]models.Event, int, error)
}

// eventNotifier extends Notifier with the all-parents fan-out used on
// creation.
type eventNotifier interface {
	Notifier
	NotifyAllParents(ctx context.Context, typ models.NotificationType, title, message string, relatedID *string) error
}

// EventService manages institutional events announced to every parent.
type EventService struct {
	repo      eventRepository
	notifier  eventNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

func NewEventService(repo eventRepository, notifier eventNotifier, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, notifier: notifier, validator: validate, logger: logger}
}

// CreateEventRequest describes a new event.
type CreateEventRequest struct {
	Titulo      string    `json:"titulo" validate:"required"`
	Descripcion string    `json:"descripcion" validate:"required"`
	Fecha       time.Time `json:"fecha" validate:"required"`
	Lugar       *string   `json:"lugar"`
}

// Create registers the event and announces it to all active parents.
func (s *EventService) Create(ctx context.Context, claims *models.JWTClaims, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	event := &models.Event{
		Titulo:      strings.TrimSpace(req.Titulo),
		Descripcion: strings.TrimSpace(req.Descripcion),
		Fecha:       req.Fecha,
		Lugar:       req.Lugar,
		CreatedBy:   claims.UserID,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create event")
	}

	message := fmt.Sprintf("%s — %s", event.Titulo, event.Fecha.Format("02/01/2006"))
	if err := s.notifier.NotifyAllParents(ctx, models.NotifEventCreated, "Nuevo evento", message, &event.ID); err != nil {
		s.logger.Warn("notify event creation", zap.String("event_id", event.ID), zap.Error(err))
	}
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load event")
	}
	if event == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return event, nil
}

// UpdateEventRequest carries a partial event edit. Edits do not re-notify.
type UpdateEventRequest struct {
	Titulo      *string    `json:"titulo"`
	Descripcion *string    `json:"descripcion"`
	Fecha       *time.Time `json:"fecha"`
	Lugar       *string    `json:"lugar"`
}

func (s *EventService) Update(ctx context.Context, id string, req UpdateEventRequest) (*models.Event, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
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
	if req.Lugar != nil {
		patch["lugar"] = *req.Lugar
	}
	if err := s.repo.UpdateFields(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update event")
	}
	return s.Get(ctx, id)
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete event")
	}
	if deleted == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return nil
}

func (s *EventService) List(ctx context.Context, req models.PageRequest) ([]models.Event, models.PageMeta, error) {
	req = req.Normalize()
	events, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, models.PageMeta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list events")
	}
	return events, models.NewPageMeta(total, req), nil
}
