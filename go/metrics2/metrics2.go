// Package metrics2 is a thin layer over Prometheus that lets code create and
// update metrics by name and tags without registering collectors up front.
package metrics2

import (
	"time"
)

// Int64Metric is a gauge holding an int64.
type Int64Metric interface {
	Get() int64
	Update(v int64)
}

// Counter is an Int64Metric that is only ever moved by relative amounts.
type Counter interface {
	Get() int64
	Inc(i int64)
	Reset()
}

// Float64SummaryMetric accumulates observations into quantiles.
type Float64SummaryMetric interface {
	Observe(v float64)
}

// Timer measures the time between its creation and Stop.
type Timer interface {
	// Stop records the elapsed time and returns it.
	Stop() time.Duration
}

// Client creates metrics. Metrics with the same name and tags are shared.
type Client interface {
	GetInt64Metric(name string, tags ...map[string]string) Int64Metric
	GetCounter(name string, tags ...map[string]string) Counter
	GetFloat64SummaryMetric(name string, tags ...map[string]string) Float64SummaryMetric
	NewTimer(name string, tags ...map[string]string) Timer
}

var defaultClient Client = newPromClient()

// GetInt64Metric returns a gauge from the default client.
func GetInt64Metric(name string, tags ...map[string]string) Int64Metric {
	return defaultClient.GetInt64Metric(name, tags...)
}

// GetCounter returns a counter from the default client.
func GetCounter(name string, tags ...map[string]string) Counter {
	return defaultClient.GetCounter(name, tags...)
}

// GetFloat64SummaryMetric returns a summary from the default client.
func GetFloat64SummaryMetric(name string, tags ...map[string]string) Float64SummaryMetric {
	return defaultClient.GetFloat64SummaryMetric(name, tags...)
}

// NewTimer starts a timer on the default client. The standard way to use it
// is at the top of the func you want to measure:
//
//	defer metrics2.NewTimer("imgdiff_run").Stop()
func NewTimer(name string, tags ...map[string]string) Timer {
	return defaultClient.NewTimer(name, tags...)
}
