package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Collector 指标收集器
type Collector struct {
	metrics map[string]*Metric
	mu      sync.RWMutex
}

// Metric 指标
type Metric struct {
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	History   []float64         `json:"history,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

const historySize = 100

// NewCollector 创建指标收集器
func NewCollector() *Collector {
	return &Collector{
		metrics: make(map[string]*Metric),
	}
}

// IncCounter 增加计数器
func (c *Collector) IncCounter(name string, labels map[string]string) {
	c.AddCounter(name, 1, labels)
}

// AddCounter 增加计数器值
func (c *Collector) AddCounter(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	metric := c.metric(name, "counter", labels)
	metric.Value += value
}

// SetGauge 设置仪表值
func (c *Collector) SetGauge(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metric(name, "gauge", labels).Value = value
}

// ObserveHistogram keeps the last observations; Value holds the latest one.
func (c *Collector) ObserveHistogram(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	metric := c.metric(name, "histogram", labels)
	metric.Value = value
	metric.History = append(metric.History, value)
	if len(metric.History) > historySize {
		metric.History = metric.History[1:]
	}
}

// metric returns the metric for name and labels, creating it when missing.
// Callers hold the write lock.
func (c *Collector) metric(name, typ string, labels map[string]string) *Metric {
	key := buildKey(name, labels)
	metric, exists := c.metrics[key]
	if !exists {
		metric = &Metric{Name: name, Type: typ, Labels: copyLabels(labels)}
		c.metrics[key] = metric
	}
	metric.Timestamp = time.Now().Unix()
	return metric
}

// RecordResize 记录一次缩放
func (c *Collector) RecordResize(provider string, duration time.Duration, err error) {
	labels := map[string]string{"provider": provider, "result": "ok"}
	if err != nil {
		labels["result"] = "error"
	}
	c.IncCounter("picture_resize_total", labels)
	c.ObserveHistogram("picture_resize_duration_seconds", duration.Seconds(), map[string]string{"provider": provider})
}

// RecordCacheHit 记录缓存命中
func (c *Collector) RecordCacheHit(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.IncCounter("picture_cache_requests_total", map[string]string{"result": result})
}

// RecordGenerate 记录一次图片生成
func (c *Collector) RecordGenerate(name string, duration time.Duration, err error) {
	labels := map[string]string{"picture": name, "result": "ok"}
	if err != nil {
		labels["result"] = "error"
	}
	c.IncCounter("picture_generate_total", labels)
	c.ObserveHistogram("picture_generate_duration_seconds", duration.Seconds(), map[string]string{"picture": name})
}

// buildKey joins name and labels, labels sorted by name.
func buildKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range keys {
		sb.WriteString(":" + k + "=" + labels[k])
	}
	return sb.String()
}

func copyLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

// GetMetrics returns a copy of all metrics keyed by name and labels.
func (c *Collector) GetMetrics() map[string]Metric {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]Metric, len(c.metrics))
	for k, v := range c.metrics {
		m := *v
		m.History = append([]float64(nil), v.History...)
		m.Labels = copyLabels(v.Labels)
		result[k] = m
	}
	return result
}

// GetMetric 获取单个指标
func (c *Collector) GetMetric(name string, labels map[string]string) (Metric, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	metric, ok := c.metrics[buildKey(name, labels)]
	if !ok {
		return Metric{}, false
	}
	return *metric, true
}

// Reset 重置指标
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = make(map[string]*Metric)
}
