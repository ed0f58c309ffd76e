// Package lookup resolves play ids, names and titles across all corpora.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/dracor/internal/domain"
	"github.com/kailas-cloud/dracor/internal/domain/record"
)

// DefaultConcurrency bounds parallel corpus fetches during Refresh.
const DefaultConcurrency = 4

// Play identifies one play in the index.
type Play struct {
	ID     string
	Name   string
	Title  string
	Corpus string
}

// Index maps play ids to names, titles and corpora. It is empty until Refresh succeeds.
type Index struct {
	source      CorpusSource
	concurrency int
	logger      *zap.Logger

	mu          sync.RWMutex
	built       bool
	refreshedAt time.Time
	byID        map[string]Play
	byName      map[string][]string
	byTitle     map[string][]string
}

// New creates an unbuilt index. concurrency <= 0 uses DefaultConcurrency.
func New(source CorpusSource, concurrency int, logger *zap.Logger) *Index {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{source: source, concurrency: concurrency, logger: logger}
}

// Refresh fetches every corpus and rebuilds the index. On error the previous
// index is kept.
func (x *Index) Refresh(ctx context.Context) error {
	start := time.Now()
	names, err := x.source.Names(ctx)
	if err != nil {
		return fmt.Errorf("list corpora: %w", err)
	}

	perCorpus := make([][]Play, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.concurrency)
	for i, name := range names {
		g.Go(func() error {
			set, err := x.source.Records(gctx, name)
			if err != nil {
				return fmt.Errorf("corpus %s: %w", name, err)
			}
			perCorpus[i] = plays(name, set)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	byID := make(map[string]Play)
	byName := make(map[string][]string)
	byTitle := make(map[string][]string)
	for _, list := range perCorpus {
		for _, p := range list {
			byID[p.ID] = p
			if p.Name != "" {
				byName[p.Name] = append(byName[p.Name], p.ID)
			}
			if p.Title != "" {
				byTitle[p.Title] = append(byTitle[p.Title], p.ID)
			}
		}
	}

	x.mu.Lock()
	x.byID, x.byName, x.byTitle = byID, byName, byTitle
	x.built = true
	x.refreshedAt = time.Now()
	x.mu.Unlock()

	x.logger.Info("Play index refreshed",
		zap.Int("corpora", len(names)),
		zap.Int("plays", len(byID)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Invalidate drops the index; lookups fail until the next Refresh.
func (x *Index) Invalidate() {
	x.mu.Lock()
	x.built = false
	x.byID, x.byName, x.byTitle = nil, nil, nil
	x.mu.Unlock()
}

// Built reports whether the index is usable.
func (x *Index) Built() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.built
}

// Len returns the number of indexed plays.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byID)
}

// RefreshedAt returns when the index was last rebuilt.
func (x *Index) RefreshedAt() time.Time {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.refreshedAt
}

// Play returns the indexed play by id.
func (x *Index) Play(id string) (Play, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.built {
		return Play{}, domain.ErrIndexNotBuilt
	}
	p, ok := x.byID[id]
	if !ok {
		return Play{}, fmt.Errorf("play id %q: %w", id, domain.ErrPlayNotFound)
	}
	return p, nil
}

// PlayName returns the name of the play with the given id.
func (x *Index) PlayName(id string) (string, error) {
	p, err := x.Play(id)
	return p.Name, err
}

// PlayTitle returns the title of the play with the given id.
func (x *Index) PlayTitle(id string) (string, error) {
	p, err := x.Play(id)
	return p.Title, err
}

// PlayIDByName resolves a play name to its id.
func (x *Index) PlayIDByName(name string) (string, error) {
	return x.unique(func() []string { return x.byName[name] }, "name", name)
}

// PlayIDByTitle resolves a play title to its id.
func (x *Index) PlayIDByTitle(title string) (string, error) {
	return x.unique(func() []string { return x.byTitle[title] }, "title", title)
}

// CorpusOf returns the corpus of a play given its id or name.
func (x *Index) CorpusOf(idOrName string) (string, error) {
	if p, err := x.Play(idOrName); err == nil {
		return p.Corpus, nil
	} else if errors.Is(err, domain.ErrIndexNotBuilt) {
		return "", err
	}
	id, err := x.PlayIDByName(idOrName)
	if err != nil {
		return "", err
	}
	p, err := x.Play(id)
	return p.Corpus, err
}

func (x *Index) unique(ids func() []string, kind, key string) (string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.built {
		return "", domain.ErrIndexNotBuilt
	}
	found := ids()
	switch len(found) {
	case 0:
		return "", fmt.Errorf("play %s %q: %w", kind, key, domain.ErrPlayNotFound)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("play %s %q matches %v: %w", kind, key, found, domain.ErrAmbiguousName)
	}
}

func plays(corpus string, set record.Set) []Play {
	out := make([]Play, 0, set.Len())
	for _, r := range set.Records() {
		id, ok := r.ID()
		if !ok {
			continue
		}
		out = append(out, Play{
			ID:     id,
			Name:   record.String(r["name"]),
			Title:  record.String(r["title"]),
			Corpus: corpus,
		})
	}
	return out
}
