package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// RewardMetrics tracks the reward notification stream.
type RewardMetrics struct {
	operations     *prometheus.CounterVec
	escrowRedeemed prometheus.Counter
	pointsGranted  prometheus.Counter
}

var (
	rewardsOnce     sync.Once
	rewardsRegistry *RewardMetrics
)

// Rewards returns the metrics registry tracking reward lifecycle events.
func Rewards() *RewardMetrics {
	rewardsOnce.Do(func() {
		rewardsRegistry = &RewardMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "pointsledger",
				Subsystem: "rewards",
				Name:      "operations_total",
				Help:      "Count of reward mutations segmented by event type.",
			}, []string{"type"}),
			escrowRedeemed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "pointsledger",
				Subsystem: "rewards",
				Name:      "escrow_redeemed_total",
				Help:      "Cumulative escrow units disbursed by redemptions.",
			}),
			pointsGranted: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "pointsledger",
				Subsystem: "rewards",
				Name:      "bonus_points_total",
				Help:      "Cumulative bonus points granted by referral and trigger operations.",
			}),
		}
		prometheus.MustRegister(
			rewardsRegistry.operations,
			rewardsRegistry.escrowRedeemed,
			rewardsRegistry.pointsGranted,
		)
	})
	return rewardsRegistry
}

// ObserveOperation increments the mutation counter for the event type.
func (m *RewardMetrics) ObserveOperation(eventType string) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(eventType)
	if normalized == "" {
		normalized = "unknown"
	}
	m.operations.WithLabelValues(normalized).Inc()
}

// ObserveEscrowRedeemed records disbursed escrow units.
func (m *RewardMetrics) ObserveEscrowRedeemed(units float64) {
	if m == nil || units <= 0 {
		return
	}
	m.escrowRedeemed.Add(units)
}

// ObserveBonusPoints records granted bonus points.
func (m *RewardMetrics) ObserveBonusPoints(points float64) {
	if m == nil || points <= 0 {
		return
	}
	m.pointsGranted.Add(points)
}
