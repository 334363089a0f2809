package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the meeting lifecycle module.
type Metrics struct {
	MeetingsOpened     prometheus.Counter
	MeetingsClosed     prometheus.Counter
	QuorumChecks       *prometheus.CounterVec
	OpenMeetingRejects *prometheus.CounterVec
}

// New creates a Metrics instance with all meeting module metrics registered.
func New() *Metrics {
	return &Metrics{
		MeetingsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agorax_meetings_opened_total",
			Help: "Total number of meetings opened",
		}),
		MeetingsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agorax_meetings_closed_total",
			Help: "Total number of meetings closed",
		}),
		QuorumChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agorax_quorum_checks_total",
			Help: "Quorum evaluations by outcome",
		}, []string{"outcome"}),
		OpenMeetingRejects: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agorax_open_meeting_rejections_total",
			Help: "Rejected open-meeting attempts by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncrementMeetingOpened() {
	m.MeetingsOpened.Inc()
}

func (m *Metrics) IncrementMeetingClosed() {
	m.MeetingsClosed.Inc()
}

// ObserveQuorumCheck records one quorum evaluation; outcome is "met" or
// "not_met".
func (m *Metrics) ObserveQuorumCheck(met bool) {
	outcome := "not_met"
	if met {
		outcome = "met"
	}
	m.QuorumChecks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementOpenRejected(reason string) {
	m.OpenMeetingRejects.WithLabelValues(reason).Inc()
}
