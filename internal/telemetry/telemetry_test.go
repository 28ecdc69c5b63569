package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracerExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracer(&buf, "test")
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "ProcessScan")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"ProcessScan"`)
	assert.Contains(t, buf.String(), "nettrust")
}
