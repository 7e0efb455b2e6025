package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
	"github.com/noah-isme/rvnp-attendance-api/pkg/response"
)

const defaultMaxUploadBytes = 5 << 20

type entityService interface {
	Add(ctx context.Context, session *models.Session, kind models.EntityKind, req models.CreateEntityRequest) (*models.EntityResult, error)
	List(ctx context.Context, session *models.Session, kind models.EntityKind, department string) ([]models.Entity, error)
	Delete(ctx context.Context, session *models.Session, kind models.EntityKind, id int64) error
}

type entityImporter interface {
	Import(ctx context.Context, session *models.Session, kind models.EntityKind, filename string, src io.Reader) (*models.ImportResult, error)
}

// EntityHandler manages trainers, classes and units.
type EntityHandler struct {
	entities       entityService
	importer       entityImporter
	maxUploadBytes int64
}

// NewEntityHandler constructs an EntityHandler. maxUploadBytes bounds import files.
func NewEntityHandler(entities entityService, importer entityImporter, maxUploadBytes int64) *EntityHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &EntityHandler{entities: entities, importer: importer, maxUploadBytes: maxUploadBytes}
}

// List godoc
// @Summary List trainers, classes or units
// @Tags Entities
// @Produce json
// @Security BearerAuth
// @Param kind path string true "trainers, classes or units"
// @Param department query string false "Department code or ALL"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /entities/{kind} [get]
func (h *EntityHandler) List(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	kind, err := parseKindParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	entities, err := h.entities.List(c.Request.Context(), session, kind, c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	for i := range entities {
		entities[i].Kind = kind
	}
	response.JSON(c, http.StatusOK, entities, nil)
}

// Create godoc
// @Summary Add a trainer, class or unit
// @Description An existing name in the department is reported with outcome already_exists
// @Tags Entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "trainers, classes or units"
// @Param payload body models.CreateEntityRequest true "Entity payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /entities/{kind} [post]
func (h *EntityHandler) Create(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	kind, err := parseKindParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.entities.Add(c.Request.Context(), session, kind, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	result.Entity.Kind = kind
	if result.Outcome == models.OutcomeCreated {
		response.Created(c, result)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete a trainer, class or unit
// @Tags Entities
// @Security BearerAuth
// @Param kind path string true "trainers, classes or units"
// @Param id path int true "Entity ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /entities/{kind}/{id} [delete]
func (h *EntityHandler) Delete(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	kind, err := parseKindParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.entities.Delete(c.Request.Context(), session, kind, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Bulk import trainers, classes or units
// @Description Upload a CSV or XLSX file with Name and Department columns
// @Tags Entities
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param kind path string true "trainers, classes or units"
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /entities/{kind}/import [post]
func (h *EntityHandler) Import(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	kind, err := parseKindParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.New("FILE_TOO_LARGE", http.StatusRequestEntityTooLarge, "upload exceeds the size limit"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "could not open upload"))
		return
	}
	defer file.Close()

	result, err := h.importer.Import(c.Request.Context(), session, kind, header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
