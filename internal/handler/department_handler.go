package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	"github.com/noah-isme/rvnp-attendance-api/pkg/response"
)

type departmentLister interface {
	Departments(ctx context.Context) ([]models.Department, error)
}

// DepartmentHandler serves the department reference set.
type DepartmentHandler struct {
	departments departmentLister
}

// NewDepartmentHandler constructs a DepartmentHandler.
func NewDepartmentHandler(departments departmentLister) *DepartmentHandler {
	return &DepartmentHandler{departments: departments}
}

// List godoc
// @Summary List departments
// @Tags Departments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *DepartmentHandler) List(c *gin.Context) {
	departments, err := h.departments.Departments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}
