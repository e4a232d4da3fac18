// Package metrics exposes Prometheus collectors for market, reporting and
// reward activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Trade sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Operation results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	trades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bonding_rewards",
			Subsystem: "market",
			Name:      "trades_total",
			Help:      "Total number of buy and sell attempts.",
		},
		[]string{"side", "result"},
	)

	tradeVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bonding_rewards",
			Subsystem: "market",
			Name:      "trade_volume_usdt_total",
			Help:      "Reserve asset moved by successful trades, in base units.",
		},
		[]string{"side"},
	)

	performanceReports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bonding_rewards",
			Subsystem: "oracle",
			Name:      "performance_reports_total",
			Help:      "Total number of performance reports submitted.",
		},
		[]string{"result"},
	)

	distributionScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bonding_rewards",
			Subsystem: "rewards",
			Name:      "distribution_score",
			Help:      "Score computed per entity at each distribution.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12), // 1 to ~4M
		},
	)

	rewardClaims = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bonding_rewards",
			Subsystem: "rewards",
			Name:      "reward_claims_total",
			Help:      "Total number of reward claim attempts.",
		},
		[]string{"result"},
	)

	rewardClaimed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bonding_rewards",
			Subsystem: "rewards",
			Name:      "reward_claimed_usdt_total",
			Help:      "Rewards paid out by successful claims, in base units.",
		},
	)
)

func init() {
	Registry.MustRegister(
		trades,
		tradeVolume,
		performanceReports,
		distributionScore,
		rewardClaims,
		rewardClaimed,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordTrade records a buy or sell attempt. usdt is ignored on failure.
func RecordTrade(side string, usdt uint64, err error) {
	if err != nil {
		trades.WithLabelValues(side, ResultFailure).Inc()
		return
	}
	trades.WithLabelValues(side, ResultSuccess).Inc()
	tradeVolume.WithLabelValues(side).Add(float64(usdt))
}

func RecordPerformanceReport(err error) {
	performanceReports.WithLabelValues(result(err)).Inc()
}

func RecordDistribution(score uint64) {
	distributionScore.Observe(float64(score))
}

// RecordClaim records a claim attempt and the amount paid on success.
func RecordClaim(amount uint64, err error) {
	rewardClaims.WithLabelValues(result(err)).Inc()
	if err == nil {
		rewardClaimed.Add(float64(amount))
	}
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
