package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
	"github.com/noah-isme/rvnp-attendance-api/pkg/response"
)

type assignmentService interface {
	Assign(ctx context.Context, session *models.Session, req models.AssignClassRepRequest) (*models.AssignmentResult, error)
	List(ctx context.Context, session *models.Session, department string) ([]models.ClassRepAssignment, error)
	Delete(ctx context.Context, session *models.Session, id int64) error
	Reps(ctx context.Context, session *models.Session) ([]string, error)
}

// AssignmentHandler links class representatives to classes.
type AssignmentHandler struct {
	assignments assignmentService
}

// NewAssignmentHandler constructs an AssignmentHandler.
func NewAssignmentHandler(assignments assignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// List godoc
// @Summary List class rep assignments
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department code or ALL"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	assignments, err := h.assignments.List(c.Request.Context(), session, c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Assign godoc
// @Summary Assign a class rep to a class
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.AssignClassRepRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.AssignClassRepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	result, err := h.assignments.Assign(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Outcome == models.OutcomeCreated {
		response.Created(c, result)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Remove a class rep assignment
// @Tags Assignments
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.assignments.Delete(c.Request.Context(), session, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reps godoc
// @Summary List assignable class reps
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /assignments/reps [get]
func (h *AssignmentHandler) Reps(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	reps, err := h.assignments.Reps(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reps, nil)
}
