package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAnalysesTotal_CountsByLabel(t *testing.T) {
	before := testutil.ToFloat64(AnalysesTotal.WithLabelValues("recommend", "success"))
	AnalysesTotal.WithLabelValues("recommend", "success").Inc()
	after := testutil.ToFloat64(AnalysesTotal.WithLabelValues("recommend", "success"))
	assert.Equal(t, before+1, after)
}

func TestCollectorsRegistered(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("GET", "/api/health", "200").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/api/health").Observe(0.01)
	RecommendationCandidates.Observe(2)

	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(RecommendationCandidates))
}
