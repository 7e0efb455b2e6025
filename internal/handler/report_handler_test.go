package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	"github.com/noah-isme/rvnp-attendance-api/internal/service"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

type reportServiceStub struct {
	record     *models.LessonAttendanceRecord
	records    []models.LessonAttendanceRecord
	pagination *models.Pagination
	options    *models.ReportOptions
	deleted    int
	err        error
	gotQuery   service.ReportListQuery
	gotIDs     []int64
	gotSubmit  models.SubmitReportRequest
}

func (s *reportServiceStub) Submit(ctx context.Context, session *models.Session, req models.SubmitReportRequest) (*models.LessonAttendanceRecord, error) {
	s.gotSubmit = req
	return s.record, s.err
}

func (s *reportServiceStub) List(ctx context.Context, session *models.Session, query service.ReportListQuery) ([]models.LessonAttendanceRecord, *models.Pagination, error) {
	s.gotQuery = query
	return s.records, s.pagination, s.err
}

func (s *reportServiceStub) DeleteMany(ctx context.Context, session *models.Session, ids []int64) (int, error) {
	s.gotIDs = ids
	return s.deleted, s.err
}

func (s *reportServiceStub) Options(ctx context.Context, session *models.Session, department string) (*models.ReportOptions, error) {
	return s.options, s.err
}

func TestReportHandlerSubmit(t *testing.T) {
	stub := &reportServiceStub{record: &models.LessonAttendanceRecord{ID: 1, ClassName: "ICT-1A", Status: models.LessonTaught}}
	h := NewReportHandler(stub)

	req := models.SubmitReportRequest{Date: "2024-03-01", ClassName: "ICT-1A", UnitName: "NETWORKING", TrainerName: "JOHN", TimeSlot: "7.30-9.00", Status: "Taught"}
	c, w := newGinContext(http.MethodPost, "/reports", mustJSON(t, req))
	withSession(c, repSession)
	h.Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2024-03-01", stub.gotSubmit.Date)
}

func TestReportHandlerSubmitDuplicate(t *testing.T) {
	stub := &reportServiceStub{err: appErrors.Clone(appErrors.ErrDuplicate, "this lesson slot has already been reported")}
	h := NewReportHandler(stub)

	c, w := newGinContext(http.MethodPost, "/reports", mustJSON(t, models.SubmitReportRequest{Date: "2024-03-01"}))
	withSession(c, repSession)
	h.Submit(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "DUPLICATE", env.Error.Code)
	assert.Equal(t, "this lesson slot has already been reported", env.Error.Message)
}

func TestReportHandlerListParsesFilters(t *testing.T) {
	stub := &reportServiceStub{
		records:    []models.LessonAttendanceRecord{{ID: 2}},
		pagination: &models.Pagination{Page: 2, PageSize: 10, TotalCount: 11},
	}
	h := NewReportHandler(stub)

	c, w := newGinContext(http.MethodGet, "/reports?department=ICT&from=2024-01-01&to=2024-03-31&page=2&page_size=10", nil)
	withSession(c, hodSession)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ICT", stub.gotQuery.Department)
	require.NotNil(t, stub.gotQuery.From)
	assert.Equal(t, "2024-01-01", stub.gotQuery.From.Format(models.DateLayout))
	assert.Equal(t, 2, stub.gotQuery.Page)
	assert.Equal(t, 10, stub.gotQuery.PageSize)
	assert.Equal(t, 11, decodeEnvelope(t, w).Pagination.TotalCount)

	c, w = newGinContext(http.MethodGet, "/reports?from=March", nil)
	withSession(c, hodSession)
	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerDelete(t *testing.T) {
	stub := &reportServiceStub{deleted: 2}
	h := NewReportHandler(stub)

	c, w := newGinContext(http.MethodPost, "/reports/delete", mustJSON(t, models.DeleteReportsRequest{IDs: []int64{4, 5}}))
	withSession(c, hodSession)
	h.Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{4, 5}, stub.gotIDs)
	var data map[string]int
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &data))
	assert.Equal(t, 2, data["deleted"])
}

func TestReportHandlerOptions(t *testing.T) {
	stub := &reportServiceStub{options: &models.ReportOptions{Department: "ICT", Classes: []string{"ICT-1A"}, TimeSlots: models.TimeSlots}}
	h := NewReportHandler(stub)

	c, w := newGinContext(http.MethodGet, "/reports/options", nil)
	withSession(c, repSession)
	h.Options(c)

	require.Equal(t, http.StatusOK, w.Code)
	var options models.ReportOptions
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &options))
	assert.Equal(t, []string{"ICT-1A"}, options.Classes)
}
