package optimize

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Instrument wraps an adapted objective with Prometheus metrics registered on
// reg under namespace:
//
//	<ns>_objective_evaluations_total{result="ok"|"error"}
//	<ns>_objective_duration_seconds
//	<ns>_objective_best_minimized
//	<ns>_objective_repeated_points_total
//
// Repeated points are detected with Params.Fingerprint. Registration follows
// promauto and panics if the names are already registered on reg.
func Instrument[N any](fn AdaptedObjective, names []N, reg prometheus.Registerer, namespace string) AdaptedObjective {
	factory := promauto.With(reg)

	evaluations := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "objective_evaluations_total",
		Help:      "Total objective evaluations by result",
	}, []string{"result"})

	duration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "objective_duration_seconds",
		Help:      "Objective evaluation latency in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
	})

	best := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "objective_best_minimized",
		Help:      "Lowest minimized score seen so far",
	})

	repeated := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "objective_repeated_points_total",
		Help:      "Evaluations of a point that was already evaluated",
	})

	var (
		mu      sync.Mutex
		seen    = make(map[uint64]struct{})
		hasBest bool
		lowest  float64
	)

	return func(point []any) (float64, error) {
		if params, err := ToNamed(names, point); err == nil {
			fp := params.Fingerprint()
			mu.Lock()
			if _, dup := seen[fp]; dup {
				repeated.Inc()
			}
			seen[fp] = struct{}{}
			mu.Unlock()
		}

		start := time.Now()
		score, err := fn(point)
		duration.Observe(time.Since(start).Seconds())
		if err != nil {
			evaluations.WithLabelValues("error").Inc()
			return score, err
		}
		evaluations.WithLabelValues("ok").Inc()

		mu.Lock()
		if !hasBest || score < lowest {
			hasBest, lowest = true, score
			best.Set(score)
		}
		mu.Unlock()
		return score, nil
	}
}
