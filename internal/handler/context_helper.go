package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rvnp-attendance-api/internal/middleware"
	"github.com/noah-isme/rvnp-attendance-api/internal/models"
	appErrors "github.com/noah-isme/rvnp-attendance-api/pkg/errors"
)

func sessionFromContext(c *gin.Context) (*models.Session, error) {
	session := middleware.SessionFromContext(c)
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing session")
	}
	return session, nil
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return id, nil
}

func parseKindParam(c *gin.Context) (models.EntityKind, error) {
	kind, ok := models.ParseEntityKind(c.Param("kind"))
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "kind must be trainers, classes or units")
	}
	return kind, nil
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter, expected YYYY-MM-DD")
	}
	return &parsed, nil
}

func parseIntQuery(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" parameter")
	}
	return value, nil
}

// parseListQuery accepts both repeated and comma separated values.
func parseListQuery(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
