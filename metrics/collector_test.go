package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leeforge/picture/json"
)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector()
	c.IncCounter("hits", map[string]string{"b": "2", "a": "1"})
	c.IncCounter("hits", map[string]string{"a": "1", "b": "2"})
	c.AddCounter("hits", 3, map[string]string{"a": "1", "b": "2"})

	m, ok := c.GetMetric("hits", map[string]string{"a": "1", "b": "2"})
	require.True(t, ok)
	assert.Equal(t, "counter", m.Type)
	assert.Equal(t, 5.0, m.Value)
	assert.Contains(t, c.GetMetrics(), "hits:a=1:b=2")
}

func TestCollectorHistogramKeepsRecentValues(t *testing.T) {
	c := NewCollector()
	for i := 0; i < historySize+10; i++ {
		c.ObserveHistogram("latency", float64(i), nil)
	}

	m, ok := c.GetMetric("latency", nil)
	require.True(t, ok)
	assert.Len(t, m.History, historySize)
	assert.Equal(t, 10.0, m.History[0])
	assert.Equal(t, float64(historySize+9), m.Value)
}

func TestRecordResize(t *testing.T) {
	c := NewCollector()
	c.RecordResize("local", 10*time.Millisecond, nil)
	c.RecordResize("local", 10*time.Millisecond, errors.New("boom"))
	c.RecordCacheHit(true)

	ok, _ := c.GetMetric("picture_resize_total", map[string]string{"provider": "local", "result": "ok"})
	failed, _ := c.GetMetric("picture_resize_total", map[string]string{"provider": "local", "result": "error"})
	hits, _ := c.GetMetric("picture_cache_requests_total", map[string]string{"result": "hit"})
	assert.Equal(t, 1.0, ok.Value)
	assert.Equal(t, 1.0, failed.Value)
	assert.Equal(t, 1.0, hits.Value)
}

func TestPrometheusFormat(t *testing.T) {
	c := NewCollector()
	c.IncCounter("picture_generate_total", map[string]string{"picture": "hero"})
	c.ObserveHistogram("picture_generate_duration_seconds", 1, nil)
	c.ObserveHistogram("picture_generate_duration_seconds", 3, nil)

	assert.Equal(t,
		"picture_generate_duration_seconds_avg 2\n"+
			"picture_generate_duration_seconds_count 2\n"+
			"picture_generate_total{picture=\"hero\"} 1\n",
		c.PrometheusFormat())
}

func TestHandlerAndMiddleware(t *testing.T) {
	c := NewCollector()
	handler := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]Metric
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1.0, got["http_requests_total:method=GET:status=418"].Value)

	rec = httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics?format=prometheus", nil))
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",status="418"} 1`)
}
