package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusOperationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusOperationMetrics(reg, "test")
	ctx := context.Background()

	m.RecordOperationAttempt(ctx, "Submit", "LeaderboardService")
	m.RecordOperationAttempt(ctx, "Submit", "LeaderboardService")
	m.RecordOperationSuccess(ctx, "Submit", "LeaderboardService")
	m.RecordOperationFailure(ctx, "Submit", "LeaderboardService")
	m.RecordOperationDuration(ctx, "Submit", "LeaderboardService", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("LeaderboardService", "Submit", "attempt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("LeaderboardService", "Submit", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("LeaderboardService", "Submit", "failure")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	NewLogger(&buf, "production", "warn").Info("dropped")
	assert.Empty(t, buf.String())

	NewLogger(&buf, "production", "warn").Warn("kept", "player_id", "p1")
	assert.Contains(t, buf.String(), `"player_id":"p1"`)

	buf.Reset()
	NewLogger(&buf, "development", "debug").Debug("text")
	assert.Contains(t, buf.String(), "msg=text")
}
