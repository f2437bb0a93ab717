package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIsStable(t *testing.T) {
	assert.Same(t, Registry(), Registry())
}

func TestInputEventsCounter(t *testing.T) {
	before := testutil.ToFloat64(InputEvents.WithLabelValues("press", "touch"))
	InputEvents.WithLabelValues("press", "touch").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(InputEvents.WithLabelValues("press", "touch")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ObserveRender(time.Now())
	ActiveSessions.Set(3)

	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "lingmeme_editor_render_duration_seconds")
	assert.Contains(t, body, "lingmeme_editor_active_sessions 3")
}
