package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/colegio-app/colegio-api/internal/service"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
	"github.com/colegio-app/colegio-api/pkg/response"
)

// GradeReportHandler exposes libreta endpoints.
type GradeReportHandler struct {
	service *service.GradeReportService
}

func NewGradeReportHandler(svc *service.GradeReportService) *GradeReportHandler {
	return &GradeReportHandler{service: svc}
}

// List godoc
// @Summary List grade reports
// @Tags GradeReports
// @Produce json
// @Security BearerAuth
// @Param nivel query string false "Education level"
// @Param grado query string false "Grade label"
// @Param turno query string false "Shift"
// @Param paralelo query string false "Parallel letter"
// @Param q query string false "Free text (title or student name)"
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Page
// @Router /libretas [get]
func (h *GradeReportHandler) List(c *gin.Context) {
	reports, meta, err := h.service.List(c.Request.Context(), claimsFromContext(c), parsePageRequest(c), parseAcademicFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, reports, meta)
}

// Get godoc
// @Summary Get one grade report
// @Tags GradeReports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /libretas/{id} [get]
func (h *GradeReportHandler) Get(c *gin.Context) {
	report, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Create godoc
// @Summary Register a draft report with its file
// @Tags GradeReports
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param estudiante_id formData string true "Student ID"
// @Param gestion formData int true "School year"
// @Param titulo formData string true "Document title"
// @Param file formData file true "Report document"
// @Success 201 {object} response.Envelope
// @Router /libretas [post]
func (h *GradeReportHandler) Create(c *gin.Context) {
	gestion, _ := strconv.Atoi(c.PostForm("gestion"))
	req := service.CreateGradeReportRequest{
		EstudianteID: c.PostForm("estudiante_id"),
		Gestion:      gestion,
		Titulo:       c.PostForm("titulo"),
	}
	data, name, mime, err := readUpload(c, "file")
	if err != nil {
		response.Error(c, err)
		return
	}
	req.FileData = data
	req.FileName = name
	req.FileMIME = mime

	report, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// Update godoc
// @Summary Update a report, optionally replacing the file
// @Tags GradeReports
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /libretas/{id} [put]
func (h *GradeReportHandler) Update(c *gin.Context) {
	var req service.UpdateGradeReportRequest
	if titulo, ok := c.GetPostForm("titulo"); ok {
		req.Titulo = &titulo
	}
	if raw, ok := c.GetPostForm("gestion"); ok {
		if gestion, err := strconv.Atoi(raw); err == nil {
			req.Gestion = &gestion
		} else {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "gestion must be a number"))
			return
		}
	}
	data, name, mime, err := readUpload(c, "file")
	if err != nil {
		response.Error(c, err)
		return
	}
	req.FileData = data
	req.FileName = name
	req.FileMIME = mime

	report, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Publish godoc
// @Summary Publish a draft report
// @Tags GradeReports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /libretas/{id}/publicar [post]
func (h *GradeReportHandler) Publish(c *gin.Context) {
	report, err := h.service.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Delete godoc
// @Summary Remove a report and its file
// @Tags GradeReports
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 204
// @Router /libretas/{id} [delete]
func (h *GradeReportHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
