package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/colegio-app/colegio-api/internal/models"
	"github.com/colegio-app/colegio-api/pkg/config"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
	"github.com/colegio-app/colegio-api/pkg/storage"
)

type leaveRequestRepository interface {
	Get(ctx context.Context, id string) (*models.LeaveRequest, error)
	Create(ctx context.Context, l *models.LeaveRequest) error
	UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) (*models.LeaveRequest, error)
	List(ctx context.Context, req models.PageRequest, f models.AcademicFilter, scope models.RoleScope) ([]models.LeaveRequest, int, error)
}

// LeaveRequestService manages licencias: parent-submitted absence requests
// reviewed by admins.
type LeaveRequestService struct {
	repo      leaveRequestRepository
	students  studentLookup
	uploader  storage.Uploader
	notifier  leaveNotifier
	uploads   config.UploadsConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// leaveNotifier extends Notifier with the admin fan-out used on submission.
type leaveNotifier interface {
	Notifier
	NotifyAdmins(ctx context.Context, typ models.NotificationType, title, message string, relatedID *string) error
}

func NewLeaveRequestService(repo leaveRequestRepository, students studentLookup, uploader storage.Uploader, notifier leaveNotifier, uploads config.UploadsConfig, validate *validator.Validate, logger *zap.Logger) *LeaveRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveRequestService{
		repo: repo, students: students, uploader: uploader, notifier: notifier,
		uploads: uploads, validator: validate, logger: logger,
	}
}

// CreateLeaveRequest describes the parent submission. The attachment bytes
// come from the multipart upload and are mandatory for medical and family
// leaves.
type CreateLeaveRequest struct {
	EstudianteID string    `form:"estudiante_id" validate:"required"`
	FechaInicio  time.Time `form:"fecha_inicio" validate:"required"`
	FechaFin     time.Time `form:"fecha_fin" validate:"required"`
	Tipo         string    `form:"tipo" validate:"required,oneof=PERSONAL MEDICA FAMILIAR"`
	Motivo       string    `form:"motivo"`
	FileName     string    `form:"-"`
	FileMIME     string    `form:"-"`
	FileData     []byte    `form:"-"`
}

// Create registers a pending request on behalf of the calling parent and
// alerts the admin team.
func (s *LeaveRequestService) Create(ctx context.Context, claims *models.JWTClaims, req CreateLeaveRequest) (*models.LeaveRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if req.FechaFin.Before(req.FechaInicio) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fecha_fin must not precede fecha_inicio")
	}
	if !canReadStudent(claims, req.EstudianteID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not linked to this account")
	}

	tipo := models.LeaveType(req.Tipo)
	motivo := strings.TrimSpace(req.Motivo)
	if tipo == models.LeaveMedica || tipo == models.LeaveFamiliar {
		if motivo == "" || len(req.FileData) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("%s leaves require motivo and an attachment", strings.ToLower(req.Tipo)))
		}
	}

	student, err := s.students.Get(ctx, req.EstudianteID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load student")
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "estudiante_id does not reference a known student")
	}

	var adjunto *string
	if len(req.FileData) > 0 {
		if err := checkUpload(s.uploads, req.FileMIME, int64(len(req.FileData))); err != nil {
			return nil, err
		}
		url, err := s.uploader.Upload(req.FileData, "licencias", req.FileName)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "store attachment")
		}
		adjunto = &url
	}

	leave := &models.LeaveRequest{
		PadreID:      claims.UserID,
		EstudianteID: req.EstudianteID,
		FechaInicio:  req.FechaInicio,
		FechaFin:     req.FechaFin,
		Tipo:         tipo,
		Estado:       models.LeavePendiente,
	}
	if motivo != "" {
		leave.Motivo = &motivo
	}
	leave.Adjunto = adjunto

	if err := s.repo.Create(ctx, leave); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create leave request")
	}

	title := "Nueva solicitud de licencia"
	message := fmt.Sprintf("Se registró una solicitud de licencia para %s.", student.FullName())
	if err := s.notifier.NotifyAdmins(ctx, models.NotifLicenseRequest, title, message, &leave.ID); err != nil {
		s.logger.Warn("notify leave submission", zap.String("leave_id", leave.ID), zap.Error(err))
	}
	return leave, nil
}

// Get loads one request. Admins see everything; a parent reading another
// family's request gets forbidden, never a silent not-found.
func (s *LeaveRequestService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.LeaveRequest, error) {
	leave, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load leave request")
	}
	if leave == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
	}
	if claims != nil && !claims.IsAdmin() && leave.PadreID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "leave request belongs to another account")
	}
	return leave, nil
}

// UpdateLeaveRequest carries a parent edit of a still-pending request.
type UpdateLeaveRequest struct {
	FechaInicio *time.Time `form:"fecha_inicio"`
	FechaFin    *time.Time `form:"fecha_fin"`
	Tipo        *string    `form:"tipo" validate:"omitempty,oneof=PERSONAL MEDICA FAMILIAR"`
	Motivo      *string    `form:"motivo"`
	FileName    string     `form:"-"`
	FileMIME    string     `form:"-"`
	FileData    []byte     `form:"-"`
}

// Update amends a request. The requesting parent may only edit while it is
// still pending; admins may edit resolved requests too.
func (s *LeaveRequestService) Update(ctx context.Context, claims *models.JWTClaims, id string, req UpdateLeaveRequest) (*models.LeaveRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	leave, err := s.Get(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	if claims != nil && !claims.IsAdmin() && leave.Estado != models.LeavePendiente {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only pending requests can be edited")
	}

	inicio := leave.FechaInicio
	fin := leave.FechaFin
	tipo := leave.Tipo
	motivo := ""
	if leave.Motivo != nil {
		motivo = *leave.Motivo
	}
	patch := map[string]interface{}{}
	if req.FechaInicio != nil {
		inicio = *req.FechaInicio
		patch["fecha_inicio"] = inicio
	}
	if req.FechaFin != nil {
		fin = *req.FechaFin
		patch["fecha_fin"] = fin
	}
	if fin.Before(inicio) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fecha_fin must not precede fecha_inicio")
	}
	if req.Tipo != nil {
		tipo = models.LeaveType(*req.Tipo)
		patch["tipo"] = tipo
	}
	if req.Motivo != nil {
		motivo = strings.TrimSpace(*req.Motivo)
		patch["motivo"] = motivo
	}
	// Switching an existing request to a medical or family leave must not
	// sidestep the evidence the creation path demands.
	if tipo == models.LeaveMedica || tipo == models.LeaveFamiliar {
		if motivo == "" || (leave.Adjunto == nil && len(req.FileData) == 0) {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("%s leaves require motivo and an attachment", strings.ToLower(string(tipo))))
		}
	}
	if len(req.FileData) > 0 {
		if err := checkUpload(s.uploads, req.FileMIME, int64(len(req.FileData))); err != nil {
			return nil, err
		}
		url, err := s.uploader.Upload(req.FileData, "licencias", req.FileName)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "store attachment")
		}
		if leave.Adjunto != nil {
			if delErr := s.uploader.Delete(*leave.Adjunto); delErr != nil {
				s.logger.Warn("remove replaced attachment", zap.Error(delErr))
			}
		}
		patch["adjunto"] = url
	}

	if err := s.repo.UpdateFields(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update leave request")
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a request: the owning parent may withdraw a pending one,
// admins may remove any.
func (s *LeaveRequestService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	leave, err := s.Get(ctx, claims, id)
	if err != nil {
		return err
	}
	if claims != nil && !claims.IsAdmin() && leave.Estado != models.LeavePendiente {
		return appErrors.Clone(appErrors.ErrConflict, "only pending requests can be withdrawn")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete leave request")
	}
	if deleted != nil && deleted.Adjunto != nil {
		if delErr := s.uploader.Delete(*deleted.Adjunto); delErr != nil {
			s.logger.Warn("remove attachment", zap.Error(delErr))
		}
	}
	return nil
}

// Resolve moves a pending request to APROBADA or RECHAZADA and notifies
// the requesting parent. Resolving again with the same outcome is a no-op;
// flipping an already-resolved request is a conflict.
func (s *LeaveRequestService) Resolve(ctx context.Context, id string, estado models.LeaveState, respuesta string) (*models.LeaveRequest, error) {
	if estado != models.LeaveAprobada && estado != models.LeaveRechazada {
		return nil, appErrors.Clone(appErrors.ErrValidation, "estado must be APROBADA or RECHAZADA")
	}
	leave, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load leave request")
	}
	if leave == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
	}
	if leave.Estado == estado {
		return leave, nil
	}
	if leave.Estado != models.LeavePendiente {
		return nil, appErrors.Clone(appErrors.ErrConflict, "leave request is already resolved")
	}

	patch := map[string]interface{}{"estado": estado}
	respuesta = strings.TrimSpace(respuesta)
	if respuesta != "" {
		patch["respuesta_admin"] = respuesta
	}
	if err := s.repo.UpdateFields(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "resolve leave request")
	}
	leave.Estado = estado
	if respuesta != "" {
		leave.RespuestaAdmin = &respuesta
	}

	typ := models.NotifLicenseApproved
	title := "Licencia aprobada"
	if estado == models.LeaveRechazada {
		typ = models.NotifLicenseRejected
		title = "Licencia rechazada"
	}
	message := fmt.Sprintf("Su solicitud de licencia del %s fue %s.",
		leave.FechaInicio.Format("02/01/2006"), strings.ToLower(string(estado)))
	if err := s.notifier.NotifyMany(ctx, []string{leave.PadreID}, typ, title, message, &leave.ID); err != nil {
		s.logger.Warn("notify leave resolution", zap.String("leave_id", id), zap.Error(err))
	}
	return leave, nil
}

// Comment attaches an admin remark without changing the request state and
// pings the requesting parent.
func (s *LeaveRequestService) Comment(ctx context.Context, id, respuesta string) (*models.LeaveRequest, error) {
	respuesta = strings.TrimSpace(respuesta)
	if respuesta == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "respuesta_admin is required")
	}
	leave, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load leave request")
	}
	if leave == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
	}

	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"respuesta_admin": respuesta}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "comment leave request")
	}
	leave.RespuestaAdmin = &respuesta

	title := "Comentario sobre su licencia"
	if err := s.notifier.NotifyMany(ctx, []string{leave.PadreID}, models.NotifLicenseCommented, title, respuesta, &leave.ID); err != nil {
		s.logger.Warn("notify leave comment", zap.String("leave_id", id), zap.Error(err))
	}
	return leave, nil
}

// List pages requests under the caller's scope: admins see everything,
// parents only their own submissions. A parent without linked children gets
// an empty page without touching storage.
func (s *LeaveRequestService) List(ctx context.Context, claims *models.JWTClaims, req models.PageRequest, f models.AcademicFilter) ([]models.LeaveRequest, models.PageMeta, error) {
	req = req.Normalize()
	scope := scopeFor(claims, false)
	leaves, total, err := s.repo.List(ctx, req, f, scope)
	if err != nil {
		return nil, models.PageMeta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list leave requests")
	}
	return leaves, models.NewPageMeta(total, req), nil
}
