package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unischedule-api/internal/models"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newAuthRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		if claims := Claims(c); claims != nil {
			c.String(http.StatusOK, claims.UserID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/", handlers...)
	return r
}

func doGet(r http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var tokens = stubValidator{
	"student-token": {UserID: "STUDENT1", Role: models.RoleStudent, Faculty: "fcs", Group: "ПГС-101"},
	"teacher-token": {UserID: "TEACHER1", Role: models.RoleTeacher},
}

func TestJWT(t *testing.T) {
	r := newAuthRouter(JWT(tokens))

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid", header: "Bearer student-token", status: http.StatusOK, body: "STUDENT1"},
		{name: "case insensitive scheme", header: "bearer teacher-token", status: http.StatusOK, body: "TEACHER1"},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic student-token", status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer   ", status: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer forged", status: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(r, tc.header)
			require.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	r := newAuthRouter(JWT(tokens), RequireRoles(models.RoleTeacher, models.RoleAdmin))

	assert.Equal(t, http.StatusOK, doGet(r, "Bearer teacher-token").Code)

	w := doGet(r, "Bearer student-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	r := newAuthRouter(RequireRoles(models.RoleStudent))
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
}
