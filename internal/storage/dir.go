package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/san-kum/metaheur/internal/config"
	"github.com/san-kum/metaheur/internal/experiment"
)

const (
	metadataFile   = "metadata.json"
	historyFile    = "history.csv"
	populationFile = "population.csv"
	referenceFile  = "reference.csv"
)

// DirStore keeps each run in its own directory under baseDir. Metadata is
// cached in memory because List re-reads every run directory.
type DirStore struct {
	baseDir string
	meta    *cache.Cache
}

func NewDirStore(baseDir string) *DirStore {
	return &DirStore{baseDir: baseDir, meta: cache.New(10*time.Minute, 30*time.Minute)}
}

func (s *DirStore) Init(context.Context) error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *DirStore) Save(_ context.Context, res *experiment.Result, cfg *config.Config) (string, error) {
	meta := newMetadata(res, cfg)
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	dim := len(res.Goals)
	err := errors.Join(
		writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		}),
		writeFile(filepath.Join(runDir, historyFile), func(w io.Writer) error {
			return writeHistory(w, res.History, dim)
		}),
		writeFile(filepath.Join(runDir, populationFile), func(w io.Writer) error {
			return writePopulation(w, res.Final, dim)
		}),
	)
	if err == nil && len(res.Reference) > 0 {
		err = writeFile(filepath.Join(runDir, referenceFile), func(w io.Writer) error {
			return writeVectors(w, res.Reference, dim)
		})
	}
	if err != nil {
		return "", err
	}

	s.meta.Set(meta.ID, &meta, cache.DefaultExpiration)
	return meta.ID, nil
}

func (s *DirStore) List(ctx context.Context) ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(ctx, entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *DirStore) Load(_ context.Context, id string) (*RunMetadata, error) {
	if v, ok := s.meta.Get(id); ok {
		meta := *v.(*RunMetadata)
		return &meta, nil
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	s.meta.Set(id, &meta, cache.DefaultExpiration)
	out := meta
	return &out, nil
}

func (s *DirStore) LoadResult(ctx context.Context, id string) (*experiment.Result, error) {
	meta, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	res := meta.result()
	runDir := filepath.Join(s.baseDir, id)

	err = errors.Join(
		readFile(filepath.Join(runDir, historyFile), func(r io.Reader) (err error) {
			res.History, err = readHistory(r)
			return err
		}),
		readFile(filepath.Join(runDir, populationFile), func(r io.Reader) (err error) {
			res.Final, err = readPopulation(r)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	err = readFile(filepath.Join(runDir, referenceFile), func(r io.Reader) (err error) {
		res.Reference, err = readVectors(r)
		return err
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return res, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}
