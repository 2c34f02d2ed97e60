package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"getconnected/internal/common/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestObservability_RecordsSpansAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := tracetest.NewSpanRecorder()
	obs := New("getconnected-test", logger.NewNoOpLogger(), WithRegisterer(reg), WithSpanProcessor(recorder))

	ctx, span := obs.StartSpan(context.Background(), "analysis.recommend", attribute.String("group.id", "g-1"))
	obs.RecordAnalysis(ctx, "recommend", "success", 3*time.Millisecond)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "analysis.recommend", ended[0].Name())

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "analysis") && strings.Contains(f.GetName(), "runs") {
			found = true
		}
	}
	assert.True(t, found, "analysis run counter exported")

	assert.NoError(t, obs.Shutdown(context.Background()))
}
