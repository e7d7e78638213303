package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordPickAndSkip(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordPick("OVER")
		RecordPick("UNDER")
		RecordSkip("player_not_found")
		RecordSkip("insufficient_history")
	})
}

func TestRecordPipelineRun(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordPipelineRun(12.5, 8)
		RecordCacheRefresh(3)
		SetDegradedMode(true)
		SetDegradedMode(false)
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordPick("OVER")

	server := httptest.NewServer(Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
