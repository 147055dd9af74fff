package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/angelmondragon/shoefinderz-backend/pkg/config"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
}

func TestSetupStdoutExportsSpans(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()
	buf := &bytes.Buffer{}

	provider, err := Setup(ctx, Options{
		ServiceName: "shoefinderz-test",
		Environment: "dev",
		Config:      config.TracingConfig{Exporter: config.TracingExporterStdout, SampleRatio: 1},
		Output:      buf,
	})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "place-order")
	assert.True(t, span.IsRecording())
	span.End()

	require.NoError(t, provider.Shutdown(ctx))
	assert.Contains(t, buf.String(), "place-order")
	assert.Contains(t, buf.String(), "shoefinderz-test")
}

func TestSetupWithoutExporterStillRecords(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()

	provider, err := Setup(ctx, Options{ServiceName: "api", Config: config.TracingConfig{Exporter: config.TracingExporterNone, SampleRatio: 1}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	_, span := otel.Tracer("test").Start(ctx, "list-products")
	defer span.End()
	assert.True(t, span.IsRecording())
	assert.True(t, span.SpanContext().TraceID().IsValid())
}

func TestSetupZeroRatioDropsRootSpans(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()

	provider, err := Setup(ctx, Options{ServiceName: "api", Config: config.TracingConfig{Exporter: config.TracingExporterNone}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	_, span := otel.Tracer("test").Start(ctx, "health")
	defer span.End()
	assert.False(t, span.IsRecording())
}

func TestSetupRejectsUnknownExporter(t *testing.T) {
	_, err := Setup(context.Background(), Options{ServiceName: "api", Config: config.TracingConfig{Exporter: "zipkin"}})
	assert.Error(t, err)
}
