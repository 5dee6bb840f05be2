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

// Package trace wraps OpenTelemetry for the passdb and rowstore packages. Spans go to the global provider, which
// is a no-op unless tracing is enabled in the configuration.
package trace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attributes.
const (
	DBSystem   = attribute.Key("db.system")
	DBTable    = attribute.Key("db.sql.table")
	DBRowFound = attribute.Key("db.row_found")

	PassDBModel         = attribute.Key("passdb.model")
	PassDBSession       = attribute.Key("passdb.session")
	PassDBScheme        = attribute.Key("passdb.scheme")
	PassDBAuthenticated = attribute.Key("passdb.authenticated")
)

// Tracer starts spans under one instrumentation scope.
//
//	tr := trace.New("sqlpassdb/rowstore")
//	ctx, sp := tr.StartClient(ctx, "rowstore.find", trace.DBTable.String(table))
//	defer func() { trace.Finish(sp, err) }()
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	// StartClient begins a span of kind client, used around SQL queries.
	StartClient(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

type tracer struct {
	provider trace.TracerProvider
	scope    string
}

// New returns a Tracer that resolves the global provider on every span, so that a provider installed after New
// still receives the spans.
func New(scope string) Tracer {
	return &tracer{scope: scope}
}

// NewWithProvider returns a Tracer bound to tp.
func NewWithProvider(tp trace.TracerProvider, scope string) Tracer {
	return &tracer{provider: tp, scope: scope}
}

func (tr *tracer) tracer() trace.Tracer {
	if tr.provider == nil {
		return otel.Tracer(tr.scope)
	}

	return tr.provider.Tracer(tr.scope)
}

func (tr *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tr.tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

func (tr *tracer) StartClient(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tr.tracer().Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

// RecordError marks the span as failed. A nil error is ignored.
func RecordError(sp trace.Span, err error) {
	if err == nil {
		return
	}

	sp.RecordError(err)
	sp.SetStatus(codes.Error, err.Error())
}

// Finish sets attrs, records err and ends the span.
func Finish(sp trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		sp.SetAttributes(attrs...)
	}

	RecordError(sp, err)
	sp.End()
}
