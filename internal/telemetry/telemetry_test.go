package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(&buf, time.Hour)
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "recipesnap.test")
	span.End()

	counter, err := Meter().Int64Counter("recipesnap.test.counter")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "recipesnap.test")
}
