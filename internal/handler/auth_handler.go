package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	"github.com/noah-isme/rvnp-attendance-api/internal/service"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
	"github.com/noah-isme/rvnp-attendance-api/pkg/response"
)

type authService interface {
	Authenticate(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, session *models.Session) error
}

type scopeResolver interface {
	ResolveScope(ctx context.Context, session *models.Session) (*service.Scope, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	access  scopeResolver
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, access scopeResolver) *AuthHandler {
	return &AuthHandler{service: svc, access: access}
}

// SessionView describes the current session and the scope it grants.
type SessionView struct {
	SessionID  string          `json:"session_id"`
	UserID     int64           `json:"user_id"`
	Username   string          `json:"username"`
	Role       models.UserRole `json:"role"`
	Department string          `json:"department"`
	Classes    []string        `json:"classes"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate by username and password and open a session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Authenticate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Logout current session
// @Description Revoke the session bound to the access token
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Logout(c.Request.Context(), session); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Current session
// @Description Returns the session with its resolved department and class scope
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	scope, err := h.access.ResolveScope(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}

	classes := scope.Classes
	if classes == nil {
		classes = []string{}
	}
	response.JSON(c, http.StatusOK, SessionView{
		SessionID:  session.ID,
		UserID:     session.UserID,
		Username:   session.Username,
		Role:       session.Role,
		Department: scope.Label(),
		Classes:    classes,
		ExpiresAt:  session.ExpiresAt,
	}, nil)
}
