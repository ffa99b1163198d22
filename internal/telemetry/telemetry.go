// Package telemetry exports run progress as Prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/experiment"
	"github.com/san-kum/metaheur/internal/operators"
)

const namespace = "metaheur"

type Recorder struct {
	iterations  *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	runs        *prometheus.CounterVec
	best        *prometheus.GaugeVec
	population  *prometheus.GaugeVec
}

func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	run := []string{"problem", "algorithm"}
	r := &Recorder{
		iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "iterations_total", Help: "Committed iterations.",
		}, run),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "evaluations_total", Help: "Objective evaluations of finished runs.",
		}, run),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "runs_total", Help: "Finished runs by outcome.",
		}, append(run, "outcome")),
		best: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "best_objective", Help: "Best value per goal in the current population.",
		}, append(run, "goal")),
		population: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "population_size", Help: "Size of the current population.",
		}, run),
	}
	for _, c := range []prometheus.Collector{r.iterations, r.evaluations, r.runs, r.best, r.population} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observer returns a snapshot callback for one run, suitable for
// experiment.Options.OnSnapshot.
func (r *Recorder) Observer(problem, algorithm string, objective core.Objective) func(operators.Snapshot) {
	iterations := r.iterations.WithLabelValues(problem, algorithm)
	population := r.population.WithLabelValues(problem, algorithm)
	best := make([]prometheus.Gauge, len(objective))
	for i, g := range objective {
		best[i] = r.best.WithLabelValues(problem, algorithm, g.Name)
	}

	last := -1
	return func(s operators.Snapshot) {
		if last >= 0 && s.Iteration > last {
			iterations.Add(float64(s.Iteration - last))
		}
		last = s.Iteration
		population.Set(float64(s.Size))
		for i, v := range s.Best {
			if i < len(best) {
				best[i].Set(v)
			}
		}
	}
}

// RunFinished counts a finished run. res may be nil when err is set.
func (r *Recorder) RunFinished(problem, algorithm string, res *experiment.Result, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.runs.WithLabelValues(problem, algorithm, outcome).Inc()
	if res != nil {
		r.evaluations.WithLabelValues(problem, algorithm).Add(float64(res.Evaluations))
	}
}

// Serve exposes g on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	klog.FromContext(ctx).V(1).Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
