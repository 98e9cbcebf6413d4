package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colegio-app/colegio-api/internal/service"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
	"github.com/colegio-app/colegio-api/pkg/response"
)

// CourseHandler exposes course-section endpoints.
type CourseHandler struct {
	service *service.CourseService
	export  *service.ExportService
}

func NewCourseHandler(svc *service.CourseService, export *service.ExportService) *CourseHandler {
	return &CourseHandler{service: svc, export: export}
}

// List godoc
// @Summary List course sections
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param q query string false "Free text"
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} response.Page
// @Router /cursos [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, meta, err := h.service.List(c.Request.Context(), parsePageRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, courses, meta)
}

// Get godoc
// @Summary Get one section
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /cursos/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Create godoc
// @Summary Create a section
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateCourseRequest true "Section payload"
// @Success 201 {object} response.Envelope
// @Router /cursos [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update a section
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Param payload body service.UpdateCourseRequest true "Partial payload"
// @Success 200 {object} response.Envelope
// @Router /cursos/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Remove an empty section
// @Tags Courses
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /cursos/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Bulk-create sections from a spreadsheet
// @Tags Courses
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "xlsx with nombre | paralelo | nivel | turno | malla_id | tutor_id?"
// @Success 200 {object} response.Envelope
// @Router /cursos/import [post]
func (h *CourseHandler) Import(c *gin.Context) {
	data, _, _, err := readUpload(c, "file")
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(data) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	result, err := h.service.ImportXLSX(c.Request.Context(), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Roster godoc
// @Summary Section roster
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /cursos/{id}/estudiantes [get]
func (h *CourseHandler) Roster(c *gin.Context) {
	course, students, err := h.service.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"curso": course, "estudiantes": students})
}

// ExportRoster godoc
// @Summary Download a section roster as CSV or PDF
// @Tags Courses
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /cursos/{id}/export [get]
func (h *CourseHandler) ExportRoster(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	result, err := h.export.Roster(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
