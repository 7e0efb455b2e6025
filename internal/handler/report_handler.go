package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	"github.com/noah-isme/rvnp-attendance-api/internal/service"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
	"github.com/noah-isme/rvnp-attendance-api/pkg/response"
)

type reportService interface {
	Submit(ctx context.Context, session *models.Session, req models.SubmitReportRequest) (*models.LessonAttendanceRecord, error)
	List(ctx context.Context, session *models.Session, query service.ReportListQuery) ([]models.LessonAttendanceRecord, *models.Pagination, error)
	DeleteMany(ctx context.Context, session *models.Session, ids []int64) (int, error)
	Options(ctx context.Context, session *models.Session, department string) (*models.ReportOptions, error)
}

// ReportHandler exposes lesson attendance reporting.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// List godoc
// @Summary List recent lesson reports
// @Description Newest first. Class reps see only their own submissions.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department code or ALL"
// @Param from query string false "Lesson date from (YYYY-MM-DD)"
// @Param to query string false "Lesson date to (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	query := service.ReportListQuery{Department: c.Query("department")}
	if query.From, err = parseDateQuery(c, "from"); err != nil {
		response.Error(c, err)
		return
	}
	if query.To, err = parseDateQuery(c, "to"); err != nil {
		response.Error(c, err)
		return
	}
	if query.Page, err = parseIntQuery(c, "page"); err != nil {
		response.Error(c, err)
		return
	}
	if query.PageSize, err = parseIntQuery(c, "page_size"); err != nil {
		response.Error(c, err)
		return
	}

	records, pagination, err := h.reports.List(c.Request.Context(), session, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Submit godoc
// @Summary Report a lesson
// @Description Records whether a lesson slot was taught. A slot already reported is rejected with 409.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.SubmitReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Submit(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}
	record, err := h.reports.Submit(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Delete godoc
// @Summary Delete lesson reports
// @Description Deletes every listed report or none of them
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.DeleteReportsRequest true "Report IDs"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/delete [post]
func (h *ReportHandler) Delete(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.DeleteReportsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid delete payload"))
		return
	}
	deleted, err := h.reports.DeleteMany(c.Request.Context(), session, req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}

// Options godoc
// @Summary Reporting form choices
// @Description Classes, units and trainers of the department plus the fixed time slots, statuses and reasons
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department code"
// @Success 200 {object} response.Envelope
// @Router /reports/options [get]
func (h *ReportHandler) Options(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	options, err := h.reports.Options(c.Request.Context(), session, c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}
