package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupRouter(log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(log))
	r.Use(GinMiddleware(log))
	return r
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs successful request at info", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		r := setupRouter(zap.New(core))
		r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ok?limit=5", nil)
		r.ServeHTTP(w, req)

		require.Len(t, recorded.All(), 1)
		entry := recorded.All()[0]
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		assert.Equal(t, "HTTP Request", entry.Message)

		fields := entry.ContextMap()
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/ok", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "limit=5", fields["query"])
	})

	t.Run("logs client error at warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		r := setupRouter(zap.New(core))
		r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		require.Len(t, recorded.All(), 1)
		assert.Equal(t, zapcore.WarnLevel, recorded.All()[0].Level)
	})

	t.Run("logs server error at error", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		r := setupRouter(zap.New(core))
		r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		require.Len(t, recorded.All(), 1)
		assert.Equal(t, zapcore.ErrorLevel, recorded.All()[0].Level)
	})
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "Panic recovered", recorded.All()[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns logger set by middleware", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		log := zap.NewExample()
		c.Set("logger", log)

		assert.Same(t, log, GetGinLogger(c))
	})

	t.Run("returns noop when absent", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		assert.NotPanics(t, func() {
			GetGinLogger(c).Info("ignored")
		})
	})
}
