package sailship

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus counters of the physics core.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Transitions   *prometheus.CounterVec
	Blocked       *prometheus.CounterVec
	Collisions    *prometheus.CounterVec
	ThrustUpdates prometheus.Counter
	Degenerate    *prometheus.CounterVec
}

// NewMetrics registers the core metrics against the provided registerer, defaulting to the
// global Prometheus registry when nil. Already registered collectors are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sailship_soi_transitions_total",
			Help: "Sphere of influence transitions, labeled by body and direction (enter or exit).",
		}, []string{"body", "direction"}),
		Blocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sailship_soi_transitions_blocked_total",
			Help: "Sphere of influence transitions suppressed by the per body cooldown.",
		}, []string{"body"}),
		Collisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sailship_collision_corrections_total",
			Help: "Orbits circularized because their periapsis was below the safety floor.",
		}, []string{"body"}),
		ThrustUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sailship_thrust_updates_total",
			Help: "Orbital element updates from sail thrust.",
		}),
		Degenerate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sailship_degenerate_states_total",
			Help: "Physics updates skipped because of a numerical degeneracy, labeled by stage.",
		}, []string{"stage"}),
	}
	var err error
	if m.Transitions, err = register(reg, m.Transitions); err != nil {
		return nil, err
	}
	if m.Blocked, err = register(reg, m.Blocked); err != nil {
		return nil, err
	}
	if m.Collisions, err = register(reg, m.Collisions); err != nil {
		return nil, err
	}
	if m.ThrustUpdates, err = register(reg, m.ThrustUpdates); err != nil {
		return nil, err
	}
	if m.Degenerate, err = register(reg, m.Degenerate); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) transition(body, direction string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(body, direction).Inc()
}

func (m *Metrics) blocked(body string) {
	if m == nil {
		return
	}
	m.Blocked.WithLabelValues(body).Inc()
}

func (m *Metrics) collision(body string) {
	if m == nil {
		return
	}
	m.Collisions.WithLabelValues(body).Inc()
}

func (m *Metrics) thrust() {
	if m == nil {
		return
	}
	m.ThrustUpdates.Inc()
}

func (m *Metrics) degenerate(stage string) {
	if m == nil {
		return
	}
	m.Degenerate.WithLabelValues(stage).Inc()
}
