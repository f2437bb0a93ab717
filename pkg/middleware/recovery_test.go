package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/code-100-precent/LingMeme/pkg/utils/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRecoveryRouter(lg *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), RecoveryMiddleware(lg))
	r.GET("/api/editor/samples", func(c *gin.Context) {
		response.Success(c, "ok", []string{"image.png"})
	})
	r.POST("/api/editor/sessions/:id/publish", func(c *gin.Context) {
		panic(errors.New("blob store exploded"))
	})
	r.GET("/api/memes/:id/image", func(c *gin.Context) {
		panic("nil frame")
	})
	return r
}

func TestRecoveryMiddleware_NoPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := newRecoveryRouter(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/editor/samples", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, logs.Len())
}

func TestRecoveryMiddleware_HandlerPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := newRecoveryRouter(zap.New(core))

	req := httptest.NewRequest(http.MethodPost, "/api/editor/sessions/abc/publish", nil)
	req.Header.Set("X-Request-ID", "req-publish-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, body.Code)
	assert.Equal(t, "Internal server error", body.Msg)
	assert.Equal(t, "blob store exploded", body.Data)
	assert.Equal(t, "req-publish-1", w.Header().Get("X-Request-ID"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/api/editor/sessions/abc/publish", fields["path"])
	assert.Equal(t, http.MethodPost, fields["method"])
	assert.Equal(t, "req-publish-1", fields["request_id"])
	assert.NotEmpty(t, fields["stack"])
}

func TestRecoveryMiddleware_PanicValueTypes(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := newRecoveryRouter(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/memes/42/image", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "nil frame")
	assert.Equal(t, 1, logs.Len())

	// 之后的请求不受影响
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/editor/samples", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
