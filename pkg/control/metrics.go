package control

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pickarm_control_ticks_total",
		Help: "Total number of control ticks by maneuver",
	}, []string{"maneuver"})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pickarm_control_events_total",
		Help: "Total number of operator events fed to the sequencer by maneuver and event",
	}, []string{"maneuver", "event"})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pickarm_control_transitions_total",
		Help: "Total number of maneuver phase changes by maneuver, from_state and to_state",
	}, []string{"maneuver", "from_state", "to_state"})

	rejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pickarm_control_ik_rejections_total",
		Help: "Total number of lift samples without a usable joint solution by maneuver",
	}, []string{"maneuver"})

	staleTicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pickarm_control_stale_ticks_total",
		Help: "Total number of ticks run with an expired operator command by maneuver",
	}, []string{"maneuver"})

	tickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pickarm_control_tick_duration_seconds",
		Help:    "Duration of one control tick by maneuver",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05},
	}, []string{"maneuver"})
)

func sanitizeManeuver(name string) string {
	if name == "" {
		return "unknown"
	}

	return name
}
