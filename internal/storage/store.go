package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/metaheur/internal/config"
	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/experiment"
)

var ErrNotFound = errors.New("storage: run not found")

// Store persists finished runs. Save assigns the run ID.
type Store interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, res *experiment.Result, cfg *config.Config) (string, error)
	// List returns metadata of every stored run, newest first.
	List(ctx context.Context) ([]RunMetadata, error)
	Load(ctx context.Context, id string) (*RunMetadata, error)
	LoadResult(ctx context.Context, id string) (*experiment.Result, error)
}

type RunMetadata struct {
	ID          string               `json:"id"`
	Problem     string               `json:"problem"`
	Algorithm   string               `json:"algorithm"`
	Timestamp   time.Time            `json:"timestamp"`
	Seed        uint64               `json:"seed"`
	Iterations  int                  `json:"iterations"`
	Evaluations int64                `json:"evaluations"`
	CacheHits   int64                `json:"cache_hits"`
	Elapsed     time.Duration        `json:"elapsed"`
	Metrics     map[string]float64   `json:"metrics,omitempty"`
	Goals       []experiment.Goal    `json:"goals"`
	Best        core.ObjectiveVector `json:"best,omitempty"`
	Config      *config.Config       `json:"config,omitempty"`
}

func newMetadata(res *experiment.Result, cfg *config.Config) RunMetadata {
	meta := RunMetadata{
		ID:          fmt.Sprintf("%s_%s_%s", res.Problem, res.Algorithm, uuid.NewString()[:8]),
		Problem:     res.Problem,
		Algorithm:   res.Algorithm,
		Timestamp:   time.Now(),
		Seed:        res.Seed,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		CacheHits:   res.CacheHits,
		Elapsed:     res.Elapsed,
		Metrics:     res.Metrics,
		Goals:       res.Goals,
		Config:      cfg,
	}
	if best, ok := res.Best(); ok {
		meta.Best = best.Objectives
	}
	return meta
}

func (m *RunMetadata) result() *experiment.Result {
	return &experiment.Result{
		Problem:     m.Problem,
		Algorithm:   m.Algorithm,
		Seed:        m.Seed,
		Goals:       m.Goals,
		Iterations:  m.Iterations,
		Evaluations: m.Evaluations,
		CacheHits:   m.CacheHits,
		Elapsed:     m.Elapsed,
		Metrics:     m.Metrics,
	}
}

// Close releases backend resources for stores that hold any.
func Close(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
