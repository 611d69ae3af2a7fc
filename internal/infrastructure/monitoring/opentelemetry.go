package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MeterProvider exports otel instruments, such as the otelhttp client
// metrics, through the collector's Prometheus registry.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
}

// NewMeterProvider installs a global meter provider backed by metrics
func NewMeterProvider(metrics *MetricsCollector, cfg TracingConfig, logger *zap.Logger) (*MeterProvider, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(metrics.Registry()))
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	logger.Named("metrics").Info("OpenTelemetry metrics exported through Prometheus")
	return &MeterProvider{provider: mp}, nil
}

// Shutdown stops the meter provider
func (m *MeterProvider) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
