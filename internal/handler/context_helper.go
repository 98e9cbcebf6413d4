package handler

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/colegio-app/colegio-api/internal/middleware"
	"github.com/colegio-app/colegio-api/internal/models"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// parsePageRequest reads page, per_page and q from the query string.
func parsePageRequest(c *gin.Context) models.PageRequest {
	req := models.PageRequest{Query: strings.TrimSpace(c.Query("q"))}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "10")); err == nil {
		req.PerPage = perPage
	}
	return req.Normalize()
}

// parseAcademicFilter reads the structured curriculum filters.
func parseAcademicFilter(c *gin.Context) models.AcademicFilter {
	return models.AcademicFilter{
		Nivel:    models.EducationLevel(strings.ToUpper(c.Query("nivel"))),
		Grado:    models.Grade(strings.ToUpper(c.Query("grado"))),
		Turno:    models.Shift(strings.ToUpper(c.Query("turno"))),
		Paralelo: strings.ToUpper(strings.TrimSpace(c.Query("paralelo"))),
	}
}

// readUpload pulls one multipart file field into memory. A missing field
// yields empty bytes, not an error; callers decide whether the file is
// mandatory.
func readUpload(c *gin.Context, field string) (data []byte, name, mime string, err error) {
	header, formErr := c.FormFile(field)
	if formErr != nil {
		return nil, "", "", nil
	}
	return readFileHeader(header)
}

func readFileHeader(header *multipart.FileHeader) (data []byte, name, mime string, err error) {
	f, err := header.Open()
	if err != nil {
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "uploaded file is unreadable")
	}
	defer f.Close()
	data, err = io.ReadAll(f)
	if err != nil {
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "uploaded file is unreadable")
	}
	return data, header.Filename, header.Header.Get("Content-Type"), nil
}
