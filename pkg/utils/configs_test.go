package utils

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("LM_TEST_STR", "hello")
	t.Setenv("LM_TEST_BOOL", "true")
	t.Setenv("LM_TEST_INT", "42")
	t.Setenv("LM_TEST_FLOAT", "2.5")

	assert.Equal(t, "hello", GetEnv("LM_TEST_STR"))
	assert.Equal(t, "hello", GetEnv("lm_test_str"))
	assert.True(t, GetBoolEnv("LM_TEST_BOOL"))
	assert.Equal(t, int64(42), GetIntEnv("LM_TEST_INT"))
	assert.Equal(t, 2.5, GetFloatEnv("LM_TEST_FLOAT"))
	assert.Equal(t, int64(0), GetIntEnv("LM_TEST_MISSING_INT"))
}

func TestGetDurationEnv(t *testing.T) {
	t.Setenv("LM_TEST_DUR", "30m")
	t.Setenv("LM_TEST_SECS", "90")
	t.Setenv("LM_TEST_BAD_DUR", "soon")

	assert.Equal(t, 30*time.Minute, GetDurationEnv("LM_TEST_DUR", time.Second))
	assert.Equal(t, 90*time.Second, GetDurationEnv("LM_TEST_SECS", time.Second))
	assert.Equal(t, time.Second, GetDurationEnv("LM_TEST_BAD_DUR", time.Second))
	assert.Equal(t, time.Minute, GetDurationEnv("LM_TEST_DUR_MISSING", time.Minute))
}

func TestError(t *testing.T) {
	err := NewError(http.StatusBadRequest, "bad slot")
	assert.Equal(t, "[400] bad slot", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode())
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	assert.Equal(t, http.StatusNotFound, StatusOf(ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(assert.AnError))
}

func TestRandText(t *testing.T) {
	a := RandText(16)
	b := RandText(16)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
