package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegio-app/colegio-api/internal/models"
	"github.com/colegio-app/colegio-api/internal/service"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
	"github.com/colegio-app/colegio-api/pkg/response"
)

// PaymentHandler exposes pago endpoints.
type PaymentHandler struct {
	service *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

// List godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param nivel query string false "Education level"
// @Param grado query string false "Grade label"
// @Param turno query string false "Shift"
// @Param paralelo query string false "Parallel letter"
// @Param q query string false "Free text"
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Page
// @Router /pagos [get]
func (h *PaymentHandler) List(c *gin.Context) {
	payments, meta, err := h.service.List(c.Request.Context(), claimsFromContext(c), parsePageRequest(c), parseAcademicFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, payments, meta)
}

// Get godoc
// @Summary Get one payment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /pagos/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment)
}

// Create godoc
// @Summary Issue a payment obligation
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreatePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /pagos [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// Update godoc
// @Summary Edit an unvalidated payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Param payload body service.UpdatePaymentRequest true "Partial payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /pagos/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	var req service.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment)
}

// Delete godoc
// @Summary Remove a payment
// @Tags Payments
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 204
// @Router /pagos/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SubmitProof godoc
// @Summary Upload a proof of payment
// @Tags Payments
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Param comprobante formData file true "Proof photo"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /pagos/{id}/comprobante [post]
func (h *PaymentHandler) SubmitProof(c *gin.Context) {
	data, name, mime, err := readUpload(c, "comprobante")
	if err != nil {
		response.Error(c, err)
		return
	}
	payment, err := h.service.SubmitProof(c.Request.Context(), claimsFromContext(c), c.Param("id"), name, mime, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment)
}

type resolvePaymentPayload struct {
	Estado string `json:"estado" binding:"required"`
}

// Resolve godoc
// @Summary Validate or reject a proof under review
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Param payload body resolvePaymentPayload true "Resolution"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /pagos/{id}/resolver [post]
func (h *PaymentHandler) Resolve(c *gin.Context) {
	var payload resolvePaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.service.Resolve(c.Request.Context(), c.Param("id"), models.PaymentState(payload.Estado))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment)
}
