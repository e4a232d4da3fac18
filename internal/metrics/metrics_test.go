package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTrade(t *testing.T) {
	beforeOK := testutil.ToFloat64(trades.WithLabelValues(SideBuy, ResultSuccess))
	beforeFail := testutil.ToFloat64(trades.WithLabelValues(SideBuy, ResultFailure))
	beforeVolume := testutil.ToFloat64(tradeVolume.WithLabelValues(SideBuy))

	RecordTrade(SideBuy, 1_000_000, nil)
	RecordTrade(SideBuy, 5, errors.New("slippage"))

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(trades.WithLabelValues(SideBuy, ResultSuccess)))
	assert.Equal(t, beforeFail+1, testutil.ToFloat64(trades.WithLabelValues(SideBuy, ResultFailure)))
	assert.Equal(t, beforeVolume+1_000_000, testutil.ToFloat64(tradeVolume.WithLabelValues(SideBuy)))
}

func TestRecordClaim(t *testing.T) {
	before := testutil.ToFloat64(rewardClaimed)

	RecordClaim(250, nil)
	RecordClaim(999, errors.New("nothing to claim"))

	assert.Equal(t, before+250, testutil.ToFloat64(rewardClaimed))
}

func TestHandlerServesCollectors(t *testing.T) {
	RecordPerformanceReport(nil)
	RecordDistribution(245)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "bonding_rewards_oracle_performance_reports_total"))
	assert.True(t, strings.Contains(body, "bonding_rewards_rewards_distribution_score_bucket"))
}
