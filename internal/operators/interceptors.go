package operators

import (
	"github.com/go-logr/logr"

	"github.com/san-kum/metaheur/internal/core"
)

// Chain applies interceptors in order, each seeing the previous one's
// output as the current state.
func Chain[G any, S core.SearchSpace[G], R core.State[R]](is ...core.Interceptor[G, S, R]) core.Interceptor[G, S, R] {
	return core.InterceptorFunc[G, S, R](func(t core.Transition[G, S, R]) (R, error) {
		for _, ic := range is {
			next, err := ic.Intercept(t)
			if err != nil {
				var zero R
				return zero, err
			}
			t.Current = next
		}
		return t.Current, nil
	})
}

// LoggingInterceptor logs each produced state at verbosity 4 and passes it
// through unchanged.
func LoggingInterceptor[G any, S core.SearchSpace[G], R core.State[R]](logger logr.Logger) core.Interceptor[G, S, R] {
	return core.InterceptorFunc[G, S, R](func(t core.Transition[G, S, R]) (R, error) {
		if logger.V(4).Enabled() {
			kv := []any{"from", -1}
			if t.Previous != nil {
				kv[1] = (*t.Previous).CurrentIteration()
			}
			if best, ok := BestOf[G](t.Current, t.Problem.Objective()); ok {
				kv = append(kv, "best", best.Objectives())
			}
			logger.V(4).Info("State produced", kv...)
		}
		return t.Current, nil
	})
}

// SortPopulation reorders the produced population best first.
func SortPopulation[G any, S core.SearchSpace[G]]() core.Interceptor[G, S, core.PopulationState[G]] {
	return core.InterceptorFunc[G, S, core.PopulationState[G]](func(t core.Transition[G, S, core.PopulationState[G]]) (core.PopulationState[G], error) {
		pop := t.Current.Population()
		return t.Current.WithPopulation(Truncate(pop, t.Problem.Objective(), len(pop))), nil
	})
}
