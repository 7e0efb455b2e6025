package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rvnp-attendance-api/internal/middleware"
	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	"github.com/noah-isme/rvnp-attendance-api/internal/service"
	"github.com/noah-isme/rvnp-attendance-api/pkg/response"
)

type attendanceAnalytics interface {
	Query(ctx context.Context, session *models.Session, query models.AttendanceQuery) (*models.AggregateResult, bool, error)
}

type attendanceExporter interface {
	Export(ctx context.Context, session *models.Session, query models.AttendanceQuery, dataset, format string) (*service.ExportFile, error)
}

// AnalyticsHandler exposes dashboard-ready attendance analytics.
type AnalyticsHandler struct {
	analytics attendanceAnalytics
	exporter  attendanceExporter
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics attendanceAnalytics, exporter attendanceExporter) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, exporter: exporter}
}

// Attendance godoc
// @Summary Attendance analytics
// @Description Totals, time buckets, missed reasons and trainer, class and unit rankings for a period
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department code or ALL"
// @Param period query string false "all, today, this_week, this_month, this_year, term1, term2, term3 or custom"
// @Param year query int false "Year for term periods"
// @Param from query string false "Custom period start (YYYY-MM-DD)"
// @Param to query string false "Custom period end (YYYY-MM-DD)"
// @Param granularity query string false "daily, weekly or monthly"
// @Param trainers query string false "Comma separated trainer names"
// @Param units query string false "Comma separated unit names"
// @Param classes query string false "Comma separated class names"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /analytics/attendance [get]
func (h *AnalyticsHandler) Attendance(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	query, err := parseAttendanceQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, cacheHit, err := h.analytics.Query(c.Request.Context(), session, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, result, nil, middleware.ResponseMeta(c))
}

// Export godoc
// @Summary Export attendance analytics
// @Description Renders one dataset of the analytics query as CSV or PDF
// @Tags Analytics
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param dataset query string false "records, trainers, buckets, reasons or summary"
// @Param format query string false "csv or pdf"
// @Param department query string false "Department code or ALL"
// @Param period query string false "Period name"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /analytics/attendance/export [get]
func (h *AnalyticsHandler) Export(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	query, err := parseAttendanceQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.exporter.Export(c.Request.Context(), session, query, c.Query("dataset"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}

func parseAttendanceQuery(c *gin.Context) (models.AttendanceQuery, error) {
	query := models.AttendanceQuery{
		Department:  c.Query("department"),
		Period:      models.PeriodKind(strings.ToLower(strings.TrimSpace(c.Query("period")))),
		Granularity: models.Granularity(strings.ToLower(strings.TrimSpace(c.Query("granularity")))),
		Trainers:    parseListQuery(c, "trainers"),
		Units:       parseListQuery(c, "units"),
		Classes:     parseListQuery(c, "classes"),
	}
	var err error
	if query.Year, err = parseIntQuery(c, "year"); err != nil {
		return query, err
	}
	if query.From, err = parseDateQuery(c, "from"); err != nil {
		return query, err
	}
	if query.To, err = parseDateQuery(c, "to"); err != nil {
		return query, err
	}
	return query, nil
}
