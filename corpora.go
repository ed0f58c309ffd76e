package dracor

import (
	"context"
	"time"

	"github.com/kailas-cloud/dracor/internal/domain/record"
)

// CorpusService provides operations on a single corpus.
type CorpusService struct {
	name   string
	client *Client
}

// Name returns the corpus name.
func (s *CorpusService) Name() string { return s.name }

// Info returns the corpus payload, play list included.
func (s *CorpusService) Info(ctx context.Context) (_ Record, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("corpus.info", start, err) }()

	return s.client.corpusSvc.Info(ctx, s.name)
}

// Plays returns the corpus's play records.
func (s *CorpusService) Plays(ctx context.Context) (_ []Record, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("corpus.plays", start, err) }()

	set, err := s.client.corpusSvc.Records(ctx, s.name)
	if err != nil {
		return nil, err
	}
	return recordsOf(set), nil
}

// PlayIDs returns the ids of every play in the corpus.
func (s *CorpusService) PlayIDs(ctx context.Context) (_ []string, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("corpus.play_ids", start, err) }()

	return s.client.corpusSvc.PlayIDs(ctx, s.name)
}

// Metadata returns per-play metadata records.
func (s *CorpusService) Metadata(ctx context.Context) (_ []Record, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("corpus.metadata", start, err) }()

	set, err := s.client.corpusSvc.Metadata(ctx, s.name)
	if err != nil {
		return nil, err
	}
	return recordsOf(set), nil
}

// MetadataCSV returns per-play metadata as CSV.
func (s *CorpusService) MetadataCSV(ctx context.Context) (_ string, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("corpus.metadata_csv", start, err) }()

	return s.client.corpusSvc.MetadataCSV(ctx, s.name)
}

// Filter returns the ids of the corpus's plays satisfying every condition,
// in corpus order. Rejected conditions return an error matching ErrConfiguration.
func (s *CorpusService) Filter(ctx context.Context, conditions Conditions) (_ []string, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("corpus.filter", start, err) }()

	return s.client.corpusSvc.Filter(ctx, s.name, conditions)
}

// Authors returns the n most prolific authors of the corpus (n <= 0: all).
func (s *CorpusService) Authors(ctx context.Context, n int) (_ []AuthorCount, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("corpus.authors", start, err) }()

	return s.client.corpusSvc.Authors(ctx, s.name, n)
}

// Summary returns the corpus's year coverage.
func (s *CorpusService) Summary(ctx context.Context) (_ CorpusSummary, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("corpus.summary", start, err) }()

	return s.client.corpusSvc.Summary(ctx, s.name)
}

// Play returns the service for one of the corpus's plays.
func (s *CorpusService) Play(name string) *PlayService {
	return s.client.Play(s.name, name)
}

func recordsOf(set record.Set) []Record {
	out := make([]Record, 0, set.Len())
	for _, r := range set.Records() {
		out = append(out, Record(r))
	}
	return out
}
