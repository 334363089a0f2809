package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the voting module.
type Metrics struct {
	VotesCast        prometheus.Counter
	VotesRejected    *prometheus.CounterVec
	CastVoteDuration prometheus.Histogram
}

// New creates a Metrics instance with all voting module metrics registered.
func New() *Metrics {
	return &Metrics{
		VotesCast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agorax_votes_cast_total",
			Help: "Total number of votes recorded in the ledger",
		}),
		VotesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agorax_votes_rejected_total",
			Help: "Rejected vote attempts by eligibility reason",
		}, []string{"reason"}),
		CastVoteDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agorax_cast_vote_duration_seconds",
			Help:    "Duration of CastVote operations (eligibility through append)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementVoteCast() {
	m.VotesCast.Inc()
}

func (m *Metrics) IncrementVoteRejected(reason string) {
	m.VotesRejected.WithLabelValues(reason).Inc()
}

// ObserveCastVote records the duration of a CastVote operation. Call with
// time.Now() at the start of the operation.
func (m *Metrics) ObserveCastVote(start time.Time) {
	m.CastVoteDuration.Observe(time.Since(start).Seconds())
}
