package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/colegio-app/colegio-api/internal/models"
	"github.com/colegio-app/colegio-api/internal/service"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
	"github.com/colegio-app/colegio-api/pkg/response"
)

// LeaveRequestHandler exposes licencia endpoints.
type LeaveRequestHandler struct {
	service *service.LeaveRequestService
}

func NewLeaveRequestHandler(svc *service.LeaveRequestService) *LeaveRequestHandler {
	return &LeaveRequestHandler{service: svc}
}

// List godoc
// @Summary List leave requests
// @Tags Leaves
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
// @Router /licencias [get]
func (h *LeaveRequestHandler) List(c *gin.Context) {
	leaves, meta, err := h.service.List(c.Request.Context(), claimsFromContext(c), parsePageRequest(c), parseAcademicFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, leaves, meta)
}

// Get godoc
// @Summary Get one leave request
// @Tags Leaves
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /licencias/{id} [get]
func (h *LeaveRequestHandler) Get(c *gin.Context) {
	leave, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leave)
}

// Create godoc
// @Summary Submit a leave request
// @Tags Leaves
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param estudiante_id formData string true "Student ID"
// @Param fecha_inicio formData string true "Start date (RFC 3339)"
// @Param fecha_fin formData string true "End date (RFC 3339)"
// @Param tipo formData string true "PERSONAL, MEDICA or FAMILIAR"
// @Param motivo formData string false "Reason"
// @Param adjunto formData file false "Attachment"
// @Success 201 {object} response.Envelope
// @Router /licencias [post]
func (h *LeaveRequestHandler) Create(c *gin.Context) {
	req := service.CreateLeaveRequest{
		EstudianteID: c.PostForm("estudiante_id"),
		Tipo:         c.PostForm("tipo"),
		Motivo:       c.PostForm("motivo"),
	}
	var err error
	if req.FechaInicio, err = parseDate(c.PostForm("fecha_inicio")); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "fecha_inicio is not a valid date"))
		return
	}
	if req.FechaFin, err = parseDate(c.PostForm("fecha_fin")); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "fecha_fin is not a valid date"))
		return
	}
	data, name, mime, err := readUpload(c, "adjunto")
	if err != nil {
		response.Error(c, err)
		return
	}
	req.FileData = data
	req.FileName = name
	req.FileMIME = mime

	leave, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, leave)
}

// Update godoc
// @Summary Amend a pending leave request
// @Tags Leaves
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /licencias/{id} [put]
func (h *LeaveRequestHandler) Update(c *gin.Context) {
	var req service.UpdateLeaveRequest
	if raw, ok := c.GetPostForm("fecha_inicio"); ok {
		t, err := parseDate(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "fecha_inicio is not a valid date"))
			return
		}
		req.FechaInicio = &t
	}
	if raw, ok := c.GetPostForm("fecha_fin"); ok {
		t, err := parseDate(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "fecha_fin is not a valid date"))
			return
		}
		req.FechaFin = &t
	}
	if tipo, ok := c.GetPostForm("tipo"); ok {
		req.Tipo = &tipo
	}
	if motivo, ok := c.GetPostForm("motivo"); ok {
		req.Motivo = &motivo
	}
	data, name, mime, err := readUpload(c, "adjunto")
	if err != nil {
		response.Error(c, err)
		return
	}
	req.FileData = data
	req.FileName = name
	req.FileMIME = mime

	leave, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leave)
}

// Delete godoc
// @Summary Withdraw or remove a leave request
// @Tags Leaves
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Success 204
// @Router /licencias/{id} [delete]
func (h *LeaveRequestHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

type resolveLeavePayload struct {
	Estado         string `json:"estado" binding:"required"`
	RespuestaAdmin string `json:"respuesta_admin"`
}

// Resolve godoc
// @Summary Approve or reject a pending leave request
// @Tags Leaves
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Param payload body resolveLeavePayload true "Resolution"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /licencias/{id}/resolver [post]
func (h *LeaveRequestHandler) Resolve(c *gin.Context) {
	var payload resolveLeavePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	leave, err := h.service.Resolve(c.Request.Context(), c.Param("id"), models.LeaveState(payload.Estado), payload.RespuestaAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leave)
}

type commentLeavePayload struct {
	RespuestaAdmin string `json:"respuesta_admin" binding:"required"`
}

// Comment godoc
// @Summary Attach an admin remark to a leave request
// @Tags Leaves
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Param payload body commentLeavePayload true "Remark"
// @Success 200 {object} response.Envelope
// @Router /licencias/{id}/comentar [post]
func (h *LeaveRequestHandler) Comment(c *gin.Context) {
	var payload commentLeavePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	leave, err := h.service.Comment(c.Request.Context(), c.Param("id"), payload.RespuestaAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leave)
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
