// Package telemetry wires the engine's metric snapshot into an OpenTelemetry
// meter provider.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/MrEthical07/tokenguard"
	otelexport "github.com/MrEthical07/tokenguard/metrics/export/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/MrEthical07/tokenguard"

// NewReader creates a metrics reader for the named exporter.
// Supported exporters: stdout, none. A nil reader means disabled.
func NewReader(name string, w io.Writer, interval time.Duration) (sdkmetric.Reader, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "stdout":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("telemetry: stdout exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval)), nil
	default:
		return nil, fmt.Errorf("telemetry: unknown metrics exporter %q", name)
	}
}

// Start registers the engine's metrics with a meter provider reading through
// reader. The returned func flushes the provider and detaches the callbacks.
func Start(reader sdkmetric.Reader, engine *tokenguard.Engine) (func(context.Context) error, error) {
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exporter, err := otelexport.NewExporter(provider.Meter(meterName), engine)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, fmt.Errorf("telemetry: register exporter: %w", err)
	}
	return func(ctx context.Context) error {
		if err := provider.Shutdown(ctx); err != nil {
			return err
		}
		return exporter.Close()
	}, nil
}
