package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rvnp-attendance-api/internal/middleware"
	"github.com/noah-isme/rvnp-attendance-api/internal/models"
)

var (
	adminSession = &models.Session{ID: "s-admin", UserID: 1, Username: "admin", Role: models.RoleSuperAdmin, Department: models.DepartmentAll}
	hodSession   = &models.Session{ID: "s-hod", UserID: 2, Username: "h1", Role: models.RoleHOD, Department: "ICT"}
	repSession   = &models.Session{ID: "s-rep", UserID: 3, Username: "r1", Role: models.RoleClassRep, Department: "ICT"}
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	return newGinContextWithReader(method, path, bytes.NewReader(body), "application/json")
}

func newGinContextWithReader(method, path string, body io.Reader, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	return c, w
}

func withSession(c *gin.Context, session *models.Session) {
	c.Set(middleware.ContextSessionKey, session)
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *envelopeError         `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
