package telemetry

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
)

// Metrics wraps the dogstatsd client so the rest of the module does not import datadog directly.
// Emission errors are ignored.
type Metrics struct {
	client ddstatsd.ClientInterface
}

// NewMetrics connects to the agent at address. An empty address yields a no-op client.
func NewMetrics(address, namespace string, tags []string) (*Metrics, error) {
	if address == "" {
		return NewNopMetrics(), nil
	}

	opts := []ddstatsd.Option{ddstatsd.WithNamespace(namespace)}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	client, err := ddstatsd.New(address, opts...)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to create statsd client for %s", address)
	}
	return &Metrics{client: client}, nil
}

// NewNopMetrics returns metrics that are discarded.
func NewNopMetrics() *Metrics {
	return &Metrics{client: &ddstatsd.NoOpClient{}}
}

// NewMetricsWithClient is used by tests to observe emitted metrics.
func NewMetricsWithClient(client ddstatsd.ClientInterface) *Metrics {
	return &Metrics{client: client}
}

// Since records the time elapsed since start under name.
func (m *Metrics) Since(name string, start time.Time, tags ...string) {
	_ = m.client.Timing(name, time.Since(start), tags, 1)
}

// Gauge records the current value of name.
func (m *Metrics) Gauge(name string, value float64, tags ...string) {
	_ = m.client.Gauge(name, value, tags, 1)
}

// Count adds value to the counter name.
func (m *Metrics) Count(name string, value int64, tags ...string) {
	if value == 0 {
		return
	}
	_ = m.client.Count(name, value, tags, 1)
}

// Close flushes and closes the client.
func (m *Metrics) Close() error {
	return m.client.Close()
}
