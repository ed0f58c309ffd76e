// Package corpus serves corpus listings, filters and summaries built from upstream payloads.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dracor/internal/casing"
	"github.com/kailas-cloud/dracor/internal/domain"
	corpusdomain "github.com/kailas-cloud/dracor/internal/domain/corpus"
	"github.com/kailas-cloud/dracor/internal/domain/filter"
	"github.com/kailas-cloud/dracor/internal/domain/record"
)

const acceptCSV = "text/csv"

// Service implements corpus-level operations.
type Service struct {
	source      Source
	filterTotal *prometheus.CounterVec
	logger      *zap.Logger
}

// New creates a Service. filterTotal (label "result") may be nil.
func New(source Source, filterTotal *prometheus.CounterVec, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, filterTotal: filterTotal, logger: logger}
}

// List returns every corpus with segmented keys. includeMetrics asks the API for corpus metrics.
func (s *Service) List(ctx context.Context, includeMetrics bool) ([]map[string]any, error) {
	var query url.Values
	if includeMetrics {
		query = url.Values{"include": {"metrics"}}
	}
	var raw []any
	if err := s.source.GetJSON(ctx, "/corpora", query, &raw); err != nil {
		return nil, fmt.Errorf("list corpora: %w", err)
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := casing.SegmentedKeys(item).(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// Names returns the names of all corpora in API order.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	list, err := s.List(ctx, false)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list))
	for _, c := range list {
		if name := record.String(c["name"]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Info returns the corpus payload with segmented keys, play list included.
func (s *Service) Info(ctx context.Context, name string) (map[string]any, error) {
	if name == "" {
		return nil, fmt.Errorf("empty corpus name: %w", domain.ErrCorpusNotFound)
	}
	var raw map[string]any
	if err := s.source.GetJSON(ctx, corpusPath(name), nil, &raw); err != nil {
		return nil, corpusErr(name, err)
	}
	info, _ := casing.SegmentedKeys(raw).(map[string]any)
	return info, nil
}

// Records returns the corpus's plays as a record set.
func (s *Service) Records(ctx context.Context, name string) (record.Set, error) {
	info, err := s.Info(ctx, name)
	if err != nil {
		return record.Set{}, err
	}
	return playSet(info), nil
}

// PlayIDs returns the ids of every play in the corpus.
func (s *Service) PlayIDs(ctx context.Context, name string) ([]string, error) {
	set, err := s.Records(ctx, name)
	if err != nil {
		return nil, err
	}
	return set.IDs(), nil
}

// Filter returns the ids of the corpus's plays satisfying every condition.
func (s *Service) Filter(ctx context.Context, name string, conditions map[string]any) ([]string, error) {
	set, err := s.Records(ctx, name)
	if err != nil {
		return nil, err
	}
	ids, err := filter.Apply(set, conditions)
	if err != nil {
		s.incFilter("config_error")
		s.logger.Debug("Rejected filter", zap.String("corpus", name), zap.Error(err))
		return nil, fmt.Errorf("filter %s: %w", name, err)
	}
	s.incFilter("ok")
	return ids, nil
}

// Summary returns the corpus year coverage.
func (s *Service) Summary(ctx context.Context, name string) (corpusdomain.Summary, error) {
	info, err := s.Info(ctx, name)
	if err != nil {
		return corpusdomain.Summary{}, err
	}
	return corpusdomain.Summarize(
		record.String(info["name"]),
		record.String(info["title"]),
		record.String(info["repository"]),
		playSet(info),
	), nil
}

// Authors returns the n most prolific authors (n <= 0: all).
func (s *Service) Authors(ctx context.Context, name string, n int) ([]corpusdomain.AuthorCount, error) {
	set, err := s.Records(ctx, name)
	if err != nil {
		return nil, err
	}
	return corpusdomain.CountAuthors(set, n), nil
}

// Metadata returns per-play metadata records with segmented keys.
func (s *Service) Metadata(ctx context.Context, name string) (record.Set, error) {
	var raw []any
	if err := s.source.GetJSON(ctx, corpusPath(name)+"/metadata", nil, &raw); err != nil {
		return record.Set{}, corpusErr(name, err)
	}
	items, _ := casing.SegmentedKeys(raw).([]any)
	return record.FromMaps(items), nil
}

// MetadataCSV returns per-play metadata as CSV.
func (s *Service) MetadataCSV(ctx context.Context, name string) (string, error) {
	body, err := s.source.GetText(ctx, corpusPath(name)+"/metadata/csv", nil, acceptCSV)
	if err != nil {
		return "", corpusErr(name, err)
	}
	return body, nil
}

func (s *Service) incFilter(result string) {
	if s.filterTotal != nil {
		s.filterTotal.WithLabelValues(result).Inc()
	}
}

func playSet(info map[string]any) record.Set {
	plays, _ := corpusdomain.Plays(info)
	return record.FromMaps(plays)
}

func corpusPath(name string) string {
	return "/corpora/" + url.PathEscape(name)
}

func corpusErr(name string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("corpus %q: %w: %w", name, domain.ErrCorpusNotFound, err)
	}
	return fmt.Errorf("corpus %q: %w", name, err)
}
