package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theimaginaryfoundation/audience-pulse/insights"
	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
)

func TestCollector_ObserveOutcome(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.ObserveOutcome(insights.Outcome{Duration: time.Second})
	c.ObserveOutcome(insights.Outcome{Err: &insights.AnalysisError{Kind: insights.MalformedOutput, Err: errors.New("x")}})
	c.ObserveOutcome(insights.Outcome{Err: &insights.AnalysisError{Kind: insights.ServiceFailure, Class: provider.FailureRateLimit, Err: errors.New("429")}})
	c.ObserveOutcome(insights.Outcome{Err: errors.New("boom")})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.recordsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.recordsTotal.WithLabelValues(string(insights.MalformedOutput))))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.recordsTotal.WithLabelValues(string(insights.ServiceFailure))))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.recordsTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failuresTotal.WithLabelValues(string(provider.FailureRateLimit))))
	assert.Equal(t, 1, testutil.CollectAndCount(c.analyzeDuration))
}

func TestCollector_WriteTextfile(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.SetNotAttempted(3)
	c.StageFinished("analyze", time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, c.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.True(t, strings.Contains(out, "audience_pulse_records_not_attempted 3"), out)
	assert.True(t, strings.Contains(out, `audience_pulse_stage_last_run_timestamp_seconds{stage="analyze"} 1.7e+09`), out)
}
