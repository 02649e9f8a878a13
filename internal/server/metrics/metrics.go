// Package metrics counts account operations with OpenTelemetry instruments
// and exposes the collected values for the ops endpoint.
package metrics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const (
	meterName          = "github.com/dmitrijs2005/gophauth"
	operationsInstName = "gophauth_account_operations_total"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder counts account operations by name and outcome.
type Recorder struct {
	operations metric.Int64Counter
}

func NewRecorder(meter metric.Meter) (*Recorder, error) {
	if meter == nil {
		return nil, fmt.Errorf("nil meter")
	}
	c, err := meter.Int64Counter(operationsInstName,
		metric.WithDescription("Account lifecycle operations by outcome."))
	if err != nil {
		return nil, fmt.Errorf("create counter %s: %w", operationsInstName, err)
	}
	return &Recorder{operations: c}, nil
}

// Record adds one to the counter for op. A nil Recorder is a no-op.
func (r *Recorder) Record(ctx context.Context, op string, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	r.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}

// Provider owns an SDK meter provider read on demand.
type Provider struct {
	provider *sdkmetric.MeterProvider
	reader   *sdkmetric.ManualReader
}

func NewProvider() *Provider {
	reader := sdkmetric.NewManualReader()
	return &Provider{
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		reader:   reader,
	}
}

func (p *Provider) Meter() metric.Meter {
	return p.provider.Meter(meterName)
}

// Snapshot collects every int64 sum and returns it keyed as
// name{k=v,...} with attributes sorted by key.
func (p *Provider) Snapshot(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[seriesKey(m.Name, dp.Attributes)] += dp.Value
			}
		}
	}
	return out, nil
}

func (p *Provider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}

func seriesKey(name string, set attribute.Set) string {
	kvs := set.ToSlice()
	if len(kvs) == 0 {
		return name
	}
	parts := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		parts = append(parts, string(kv.Key)+"="+kv.Value.Emit())
	}
	sort.Strings(parts)
	return name + "{" + strings.Join(parts, ",") + "}"
}
