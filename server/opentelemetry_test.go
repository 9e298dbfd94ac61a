package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestInitTraceProvider(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()
	shutdown := InitTraceProvider(ctx, "go-movie-api-test", exporter)
	t.Cleanup(func() { _ = shutdown(ctx) })

	s := New(Opts{})
	h := s.newHTTPHandler()
	t.Cleanup(func() { _ = s.movieController.Close() })

	req := httptest.NewRequest(http.MethodPost, "/movie",
		bytes.NewBufferString(`{"name":"Inception","year":2010,"was_good":true}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	require.True(t, ok, "expected the sdk tracer provider to be installed globally")
	require.NoError(t, tp.ForceFlush(ctx))

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)

	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind)
	assert.Contains(t, spans[0].Resource.String(), "go-movie-api-test")
}

func TestNewOTLPTraceExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// the collector is not running, creating the exporter must not block on it
	exporter := NewOTLPTraceExporter(ctx, "127.0.0.1:4317")
	require.NotNil(t, exporter)
	assert.NoError(t, exporter.Shutdown(ctx))
}
