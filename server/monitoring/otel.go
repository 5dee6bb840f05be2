// Copyright (C) 2026 Christian Rößner
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package monitoring

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/croessner/nauthilus-sqlpassdb/server/config"
	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/log"
	"github.com/croessner/nauthilus-sqlpassdb/server/log/level"

	b3prop "go.opentelemetry.io/contrib/propagators/b3"
	jaegerprop "go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const exporterOTLPHTTP = "otlphttp"

var propagators = map[string]func() propagation.TextMapPropagator{
	"tracecontext": func() propagation.TextMapPropagator { return propagation.TraceContext{} },
	"baggage":      func() propagation.TextMapPropagator { return propagation.Baggage{} },
	"b3":           func() propagation.TextMapPropagator { return b3prop.New() },
	"b3multi": func() propagation.TextMapPropagator {
		return b3prop.New(b3prop.WithInjectEncoding(b3prop.B3MultipleHeader))
	},
	"jaeger": func() propagation.TextMapPropagator { return jaegerprop.Jaeger{} },
}

// TelemetryConfigProvider is the part of the configuration telemetry needs. *config.File implements it.
type TelemetryConfigProvider interface {
	GetTracing() *config.Tracing
	GetInstanceName() string
}

// Telemetry owns the global tracer provider of the process.
type Telemetry struct {
	mu   sync.Mutex
	prov TelemetryConfigProvider
	tp   *sdktrace.TracerProvider
}

var telemetry Telemetry

// GetTelemetry returns the process wide Telemetry.
func GetTelemetry() *Telemetry { return &telemetry }

// SetProvider sets the configuration source. Without a provider Start does nothing.
func (t *Telemetry) SetProvider(p TelemetryConfigProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prov = p
}

// Started reports whether a tracer provider is installed.
func (t *Telemetry) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.tp != nil
}

// Start installs a global tracer provider and propagator if tracing is enabled. Further calls do nothing until
// Shutdown. If the exporter cannot be created, spans are still sampled but not exported, and the error is returned.
func (t *Telemetry) Start(ctx context.Context, appVersion string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tp != nil || t.prov == nil {
		return nil
	}

	cfg := t.prov.GetTracing()
	if !cfg.IsEnabled() {
		return nil
	}

	instance := t.prov.GetInstanceName()
	serviceName := ResolveServiceName(cfg.GetServiceName(), instance, definitions.InstanceName)

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(clampRatio(cfg.GetSamplerRatio())))),
		sdktrace.WithResource(newResource(serviceName, appVersion, instance)),
	}

	exporter, err := newExporter(ctx, cfg)
	if exporter != nil {
		// One lookup per process: batching would only delay the export until Shutdown.
		opts = append(opts, sdktrace.WithSyncer(&reportingExporter{SpanExporter: exporter, logSuccess: cfg.IsLogExportResultsEnabled()}))
	}

	t.tp = sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(t.tp)
	otel.SetTextMapPropagator(buildPropagators(cfg.GetPropagators()))

	level.Info(log.Logger).Log(
		definitions.LogKeyMsg, "OpenTelemetry tracing enabled",
		"service", serviceName,
		"exporter", cfg.GetExporter(),
	)

	return err
}

// Shutdown flushes pending spans and removes the tracer provider.
func (t *Telemetry) Shutdown(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tp == nil {
		return
	}

	if err := t.tp.Shutdown(ctx); err != nil {
		level.Warn(log.Logger).Log(definitions.LogKeyMsg, "OpenTelemetry shutdown failed", definitions.LogKeyError, err)
	}

	t.tp = nil
}

func newResource(serviceName string, appVersion string, instance string) *resource.Resource {
	custom := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(appVersion),
		attribute.String(definitions.LogKeyInstance, instance),
	)

	// Merge only fails on conflicting schema URLs, the custom resource alone is good enough then.
	merged, err := resource.Merge(resource.Default(), custom)
	if err != nil {
		return custom
	}

	return merged
}

func newExporter(ctx context.Context, cfg *config.Tracing) (sdktrace.SpanExporter, error) {
	if !strings.EqualFold(cfg.GetExporter(), exporterOTLPHTTP) {
		return nil, nil
	}

	var opts []otlptracehttp.Option

	if endpoint := cfg.GetEndpoint(); endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}

	if cfg.IsInsecure() {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP/HTTP exporter: %w", err)
	}

	return exporter, nil
}

func clampRatio(ratio float64) float64 {
	return min(max(ratio, 0), 1)
}

// buildPropagators returns the named propagators in order. Unknown names are skipped. Without any known name the
// W3C trace context and baggage are used.
func buildPropagators(names []string) propagation.TextMapPropagator {
	list := make([]propagation.TextMapPropagator, 0, len(names))

	for _, name := range names {
		if factory, ok := propagators[strings.ToLower(strings.TrimSpace(name))]; ok {
			list = append(list, factory())
		}
	}

	if len(list) == 0 {
		list = append(list, propagation.TraceContext{}, propagation.Baggage{})
	}

	return propagation.NewCompositeTextMapPropagator(list...)
}

// reportingExporter logs failed exports at WARN and, if logSuccess is set, successful ones at INFO.
type reportingExporter struct {
	sdktrace.SpanExporter

	logSuccess bool
}

func (r *reportingExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if err := r.SpanExporter.ExportSpans(ctx, spans); err != nil {
		level.Warn(log.Logger).Log(
			definitions.LogKeyMsg, "OpenTelemetry trace export failed",
			definitions.LogKeyError, err,
			"span_count", len(spans),
		)

		return err
	}

	if r.logSuccess {
		level.Info(log.Logger).Log(definitions.LogKeyMsg, "OpenTelemetry traces exported", "span_count", len(spans))
	}

	return nil
}
