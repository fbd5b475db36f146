package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/student-complaints/internal/service"
	"github.com/noah-isme/student-complaints/internal/session"
	"github.com/noah-isme/student-complaints/internal/web"
	"github.com/noah-isme/student-complaints/pkg/config"
)

type flakyInit struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyInit) Ensure(ctx context.Context) error {
	if f.calls.Add(1) <= f.failures {
		return errors.New("dial tcp: connection refused")
	}
	return nil
}

func newEngine(t *testing.T) *gin.Engine {
	return newEngineWithLogger(t, nil)
}

func newEngineWithLogger(t *testing.T, logger *zap.Logger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	r := gin.New()
	r.HTMLRender = renderer
	r.Use(session.Middleware(config.SessionConfig{Secret: "test", Name: "complaint_session", MaxAge: time.Hour}, false, logger))
	return r
}

func TestBootstrapGateRetriesUntilSuccess(t *testing.T) {
	gate := &flakyInit{failures: 1}
	r := newEngine(t)
	r.Use(Bootstrap(gate))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "database initialization failed")
	assert.NotContains(t, rec.Body.String(), "connection refused")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestRequireAdminRejectsStudentSession(t *testing.T) {
	r := newEngine(t)
	r.GET("/as-student", session.Wrap(func(c *gin.Context, st *session.State) {
		_ = st.SetUser("asha")
		c.Status(http.StatusNoContent)
	}))
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.String(http.StatusOK, "dashboard") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/as-student", nil))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin_login", rec.Header().Get("Location"))
}

func TestRequireStudentLogsSessionSaveFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := newEngineWithLogger(t, zap.New(core))
	// A flash this large cannot fit in the session cookie.
	r.GET("/submit", RequireStudent(strings.Repeat("x", 8192)), func(c *gin.Context) { c.String(http.StatusOK, "form") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submit", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	require.Equal(t, 1, logs.FilterMessage("save session").Len())
}

func TestRequireStudentRejectsAdminSession(t *testing.T) {
	r := newEngine(t)
	r.GET("/as-admin", session.Wrap(func(c *gin.Context, st *session.State) {
		_ = st.SetAdmin()
		c.Status(http.StatusNoContent)
	}))
	r.GET("/submit", RequireStudent("Please log in to submit a complaint."), func(c *gin.Context) { c.String(http.StatusOK, "form") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/as-admin", nil))

	req := httptest.NewRequest(http.MethodGet, "/submit", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	metrics := service.NewMetricsService()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/my_complaint", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/my_complaint?email=a@x.com", nil))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	count, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAuditRecordsActionWithoutPassword(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newEngine(t)
	r.POST("/admin_login", Audit(zap.New(core), AuditActionAdminLogin, "admin_id"), func(c *gin.Context) {
		c.Status(http.StatusFound)
	})

	req := httptest.NewRequest(http.MethodPost, "/admin_login", strings.NewReader("admin_id=root&password=secret"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterLoggerName("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, AuditActionAdminLogin, fields["action"])
	assert.Equal(t, "root", fields["admin_id"])
	assert.NotContains(t, fields, "password")
	assert.Equal(t, int64(http.StatusFound), fields["status"])
}
