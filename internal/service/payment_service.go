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

type paymentRepository interface {
	Get(ctx context.Context, id string) (*models.Payment, error)
	Create(ctx context.Context, p *models.Payment) error
	UpdateFields(ctx context.Context, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, id string) (*models.Payment, error)
	List(ctx context.Context, req models.PageRequest, f models.AcademicFilter, scope models.RoleScope) ([]models.Payment, int, error)
}

type accountLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// PaymentService manages pagos: admin-issued obligations, parent proof
// submission and admin validation.
type PaymentService struct {
	repo      paymentRepository
	accounts  accountLookup
	students  studentLookup
	uploader  storage.Uploader
	notifier  leaveNotifier
	uploads   config.UploadsConfig
	validator *validator.Validate
	logger    *zap.Logger
}

func NewPaymentService(repo paymentRepository, accounts accountLookup, students studentLookup, uploader storage.Uploader, notifier leaveNotifier, uploads config.UploadsConfig, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		repo: repo, accounts: accounts, students: students, uploader: uploader,
		notifier: notifier, uploads: uploads, validator: validate, logger: logger,
	}
}

// CreatePaymentRequest describes an admin-issued obligation.
type CreatePaymentRequest struct {
	PadreID          string    `json:"padre_id" validate:"required"`
	EstudianteID     string    `json:"estudiante_id" validate:"required"`
	Concepto         string    `json:"concepto" validate:"required"`
	Monto            float64   `json:"monto" validate:"required,gt=0"`
	FechaVencimiento time.Time `json:"fecha_vencimiento" validate:"required"`
}

func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	parent, err := s.accounts.Get(ctx, req.PadreID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load parent")
	}
	if parent == nil || parent.Role != models.RoleParent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "padre_id does not reference a parent account")
	}
	student, err := s.students.Get(ctx, req.EstudianteID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load student")
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "estudiante_id does not reference a known student")
	}

	payment := &models.Payment{
		PadreID:          req.PadreID,
		EstudianteID:     req.EstudianteID,
		Concepto:         strings.TrimSpace(req.Concepto),
		Monto:            req.Monto,
		FechaVencimiento: req.FechaVencimiento,
		Estado:           models.PaymentPendiente,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create payment")
	}
	return payment, nil
}

// Get loads one payment. A parent reading another family's payment gets
// forbidden.
func (s *PaymentService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Payment, error) {
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load payment")
	}
	if payment == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}
	if claims != nil && !claims.IsAdmin() && payment.PadreID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "payment belongs to another account")
	}
	return payment, nil
}

// UpdatePaymentRequest carries an admin edit of an unvalidated payment.
type UpdatePaymentRequest struct {
	Concepto         *string    `json:"concepto"`
	Monto            *float64   `json:"monto" validate:"omitempty,gt=0"`
	FechaVencimiento *time.Time `json:"fecha_vencimiento"`
}

func (s *PaymentService) Update(ctx context.Context, id string, req UpdatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load payment")
	}
	if payment == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}
	if payment.Estado == models.PaymentPagado {
		return nil, appErrors.Clone(appErrors.ErrConflict, "validated payments are immutable")
	}

	patch := map[string]interface{}{}
	if req.Concepto != nil {
		patch["concepto"] = strings.TrimSpace(*req.Concepto)
	}
	if req.Monto != nil {
		patch["monto"] = *req.Monto
	}
	if req.FechaVencimiento != nil {
		patch["fecha_vencimiento"] = *req.FechaVencimiento
	}
	if err := s.repo.UpdateFields(ctx, id, patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update payment")
	}
	return s.repo.Get(ctx, id)
}

func (s *PaymentService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete payment")
	}
	if deleted == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}
	if deleted.Comprobante != nil && deleted.Comprobante.URLFoto != "" {
		if delErr := s.uploader.Delete(deleted.Comprobante.URLFoto); delErr != nil {
			s.logger.Warn("remove payment proof", zap.Error(delErr))
		}
	}
	return nil
}

// SubmitProof attaches the parent's proof photo and moves the payment to
// REVISION for admin validation. Allowed from PENDIENTE and from RECHAZADO
// (a rejected proof may be re-submitted); an already validated or
// in-review payment refuses a new proof.
func (s *PaymentService) SubmitProof(ctx context.Context, claims *models.JWTClaims, id, fileName, fileMIME string, fileData []byte) (*models.Payment, error) {
	payment, err := s.Get(ctx, claims, id)
	if err != nil {
		return nil, err
	}
	if payment.Estado != models.PaymentPendiente && payment.Estado != models.PaymentRechazado {
		return nil, appErrors.Clone(appErrors.ErrConflict, "payment does not accept a proof in its current state")
	}
	if err := checkUpload(s.uploads, fileMIME, int64(len(fileData))); err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(fileData, "comprobantes", fileName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "store proof")
	}
	if payment.Comprobante != nil && payment.Comprobante.URLFoto != "" {
		if delErr := s.uploader.Delete(payment.Comprobante.URLFoto); delErr != nil {
			s.logger.Warn("remove replaced proof", zap.Error(delErr))
		}
	}

	proof := &models.PaymentProof{URLFoto: url, FechaSubida: time.Now().UTC()}
	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"estado":      models.PaymentRevision,
		"comprobante": proof,
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "submit proof")
	}
	payment.Estado = models.PaymentRevision
	payment.Comprobante = proof

	title := "Comprobante recibido"
	message := fmt.Sprintf("Se recibió un comprobante para %q.", payment.Concepto)
	if err := s.notifier.NotifyAdmins(ctx, models.NotifPaymentSubmitted, title, message, &payment.ID); err != nil {
		s.logger.Warn("notify proof submission", zap.String("payment_id", id), zap.Error(err))
	}
	return payment, nil
}

// Resolve settles a payment from PENDIENTE or REVISION: PAGADO accepts it,
// RECHAZADO sends it back to the parent. When a proof has been submitted the
// resolution timestamp is stamped onto it; an admin may also settle a
// payment that never received one (cash at the office, say). Re-resolving
// with the same outcome is a no-op.
func (s *PaymentService) Resolve(ctx context.Context, id string, estado models.PaymentState) (*models.Payment, error) {
	if estado != models.PaymentPagado && estado != models.PaymentRechazado {
		return nil, appErrors.Clone(appErrors.ErrValidation, "estado must be PAGADO or RECHAZADO")
	}
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load payment")
	}
	if payment == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}
	if payment.Estado == estado {
		return payment, nil
	}
	if payment.Estado != models.PaymentRevision && payment.Estado != models.PaymentPendiente {
		return nil, appErrors.Clone(appErrors.ErrConflict, "payment is already resolved")
	}

	now := time.Now().UTC()
	proof := payment.Comprobante
	if proof != nil {
		proof.FechaResolucion = &now
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"estado":      estado,
		"comprobante": proof,
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "resolve payment")
	}
	payment.Estado = estado

	typ := models.NotifPaymentApproved
	title := "Pago validado"
	message := fmt.Sprintf("Su pago %q fue validado.", payment.Concepto)
	if estado == models.PaymentRechazado {
		typ = models.NotifPaymentRejected
		title = "Comprobante rechazado"
		message = fmt.Sprintf("El comprobante de %q fue rechazado; puede subir uno nuevo.", payment.Concepto)
	}
	if err := s.notifier.NotifyMany(ctx, []string{payment.PadreID}, typ, title, message, &payment.ID); err != nil {
		s.logger.Warn("notify payment resolution", zap.String("payment_id", id), zap.Error(err))
	}
	return payment, nil
}

// List pages payments under the caller's scope.
func (s *PaymentService) List(ctx context.Context, claims *models.JWTClaims, req models.PageRequest, f models.AcademicFilter) ([]models.Payment, models.PageMeta, error) {
	req = req.Normalize()
	scope := scopeFor(claims, false)
	payments, total, err := s.repo.List(ctx, req, f, scope)
	if err != nil {
		return nil, models.PageMeta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list payments")
	}
	return payments, models.NewPageMeta(total, req), nil
}
