package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the coordinator.
type Metrics struct {
	PoolsCreated     prometheus.Counter
	PoolUpdates      prometheus.Counter
	Donations        prometheus.Counter
	DonatedAmount    prometheus.Counter
	ProposalsCreated prometheus.Counter
	VotesCast        prometheus.Counter
	StakeCaptured    prometheus.Counter
	EscrowsLocked    prometheus.Counter
	EscrowsReleased  prometheus.Counter
	Attestations     prometheus.Counter
	RequestLatency   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PoolsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolfund_pools_created_total",
			Help: "Total number of funding pools created.",
		}),
		PoolUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolfund_pool_updates_total",
			Help: "Total number of pool configuration updates.",
		}),
		Donations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolfund_donations_total",
			Help: "Total number of accepted donations.",
		}),
		DonatedAmount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolfund_donated_amount_total",
			Help: "Cumulative donated amount across all pools.",
		}),
		ProposalsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolfund_proposals_created_total",
			Help: "Total number of patrol task proposals created.",
		}),
		VotesCast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolfund_votes_cast_total",
			Help: "Total number of governance votes cast.",
		}),
		StakeCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolfund_stake_captured_total",
			Help: "Cumulative stake captured by governance voting.",
		}),
		EscrowsLocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolfund_escrows_locked_total",
			Help: "Total number of escrow locks.",
		}),
		EscrowsReleased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolfund_escrows_released_total",
			Help: "Total number of escrow releases paid out.",
		}),
		Attestations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patrolfund_attestations_total",
			Help: "Total number of distinct verification signatures recorded.",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patrolfund_request_duration_seconds",
			Help:    "Latency of dispatched operations by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
