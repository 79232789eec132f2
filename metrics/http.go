package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/leeforge/picture/json"
)

// Middleware records count and duration of every HTTP request.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		labels := map[string]string{
			"method": r.Method,
			"status": strconv.Itoa(ww.statusCode),
		}
		c.IncCounter("http_requests_total", labels)
		c.ObserveHistogram("http_request_duration_seconds", time.Since(start).Seconds(), labels)
	})
}

// responseWriter 包装器
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Handler serves the metrics as JSON, or in Prometheus text format when
// the request asks for ?format=prometheus.
func (c *Collector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") == "prometheus" {
			w.Header().Set("Content-Type", "text/plain; version=0.0.4")
			_, _ = w.Write([]byte(c.PrometheusFormat()))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c.GetMetrics())
	})
}

// PrometheusFormat renders counters and gauges as-is and histograms as
// _avg and _count series.
func (c *Collector) PrometheusFormat() string {
	metrics := c.GetMetrics()
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		metric := metrics[key]
		labels := promLabels(metric.Labels)

		switch metric.Type {
		case "counter", "gauge":
			fmt.Fprintf(&sb, "%s%s %g\n", metric.Name, labels, metric.Value)
		case "histogram":
			if len(metric.History) == 0 {
				continue
			}
			var sum float64
			for _, v := range metric.History {
				sum += v
			}
			fmt.Fprintf(&sb, "%s_avg%s %g\n", metric.Name, labels, sum/float64(len(metric.History)))
			fmt.Fprintf(&sb, "%s_count%s %d\n", metric.Name, labels, len(metric.History))
		}
	}
	return sb.String()
}

func promLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+strconv.Quote(labels[k]))
	}
	return "{" + strings.Join(pairs, ",") + "}"
}
