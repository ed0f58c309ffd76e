package dracor

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/kailas-cloud/dracor/internal/casing"
	"github.com/kailas-cloud/dracor/internal/domain"
	corpusdomain "github.com/kailas-cloud/dracor/internal/domain/corpus"
	"github.com/kailas-cloud/dracor/internal/domain/record"
)

const (
	acceptText = "text/plain"
	acceptCSV  = "text/csv"
	acceptXML  = "application/xml"
	acceptRDF  = "application/rdf+xml"
)

// PlayService provides operations on a single play.
type PlayService struct {
	corpus string
	name   string
	api    transport
	obs    *observer
}

// Corpus returns the name of the play's corpus.
func (s *PlayService) Corpus() string { return s.corpus }

// Name returns the play name.
func (s *PlayService) Name() string { return s.name }

// Info returns the play's metadata, cast list and segments.
func (s *PlayService) Info(ctx context.Context) (_ Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.info", start, err) }()

	return s.record(ctx, "")
}

// Metrics returns the play's network metrics.
func (s *PlayService) Metrics(ctx context.Context) (_ Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.metrics", start, err) }()

	return s.record(ctx, "/metrics")
}

// TEI returns the play's TEI-XML source.
func (s *PlayService) TEI(ctx context.Context) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.tei", start, err) }()

	return s.text(ctx, "/tei", nil, acceptXML)
}

// RDF returns the play's RDF description.
func (s *PlayService) RDF(ctx context.Context) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.rdf", start, err) }()

	return s.text(ctx, "/rdf", nil, acceptRDF)
}

// Summary returns the play's bibliographic metadata: title, authors, genre,
// source and the written/printed/premiered/normalized years.
func (s *PlayService) Summary(ctx context.Context) (_ Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.summary", start, err) }()

	info, err := s.record(ctx, "")
	if err != nil {
		return nil, err
	}
	return corpusdomain.SummarizePlay(info), nil
}

// Character returns one member of the cast, combining its speech metrics with
// its cast-list entry. An id not in the cast yields ErrNotFound.
func (s *PlayService) Character(ctx context.Context, id string) (_ Character, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.character", start, err) }()

	chars, err := s.list(ctx, "/characters")
	if err != nil {
		return Character{}, err
	}
	items := make([]any, len(chars))
	for i, c := range chars {
		items[i] = c
	}
	withMetrics, ok := corpusdomain.FindCharacter(items, id)
	if !ok {
		return Character{}, fmt.Errorf("play %q: character %q: %w", s.corpus+"/"+s.name, id, domain.ErrNotFound)
	}

	info, err := s.record(ctx, "")
	if err != nil {
		return Character{}, err
	}
	cast, _ := record.AsList(info[corpusdomain.FieldCast])
	entry, _ := corpusdomain.FindCharacter(cast, id)
	return corpusdomain.NewCharacter(withMetrics, entry), nil
}

// Text returns the play as plain text.
func (s *PlayService) Text(ctx context.Context) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.text", start, err) }()

	return s.text(ctx, "/txt", nil, acceptText)
}

// Characters returns the play's cast with per-character metrics.
func (s *PlayService) Characters(ctx context.Context) (_ []Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.characters", start, err) }()

	return s.list(ctx, "/characters")
}

// CharactersCSV returns the play's cast as CSV.
func (s *PlayService) CharactersCSV(ctx context.Context) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.characters_csv", start, err) }()

	return s.text(ctx, "/characters/csv", nil, acceptCSV)
}

// GenderCounts tallies the play's characters by gender.
func (s *PlayService) GenderCounts(ctx context.Context) (_ GenderCount, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.gender_counts", start, err) }()

	chars, err := s.list(ctx, "/characters")
	if err != nil {
		return GenderCount{}, err
	}
	items := make([]any, len(chars))
	for i, c := range chars {
		items[i] = c
	}
	return corpusdomain.CountGenders(items), nil
}

// Network returns the co-presence network in the given format.
func (s *PlayService) Network(ctx context.Context, format DownloadFormat) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.network", start, err) }()

	return s.download(ctx, "/networkdata/", format)
}

// Relations returns the character relations in the given format.
func (s *PlayService) Relations(ctx context.Context, format DownloadFormat) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.relations", start, err) }()

	return s.download(ctx, "/relations/", format)
}

// SpokenText returns the speech of the characters matching opts, stage directions excluded.
func (s *PlayService) SpokenText(ctx context.Context, opts SpokenTextOptions) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.spoken_text", start, err) }()

	q, err := opts.query()
	if err != nil {
		return "", err
	}
	query := make(url.Values, len(q))
	for k, v := range q {
		query.Set(k, v)
	}
	return s.text(ctx, "/spoken-text", query, acceptText)
}

// SpokenTextByCharacter returns each character's speech.
func (s *PlayService) SpokenTextByCharacter(ctx context.Context) (_ []Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.spoken_text_by_character", start, err) }()

	return s.list(ctx, "/spoken-text-by-character")
}

// StageDirections returns the play's stage directions as plain text.
func (s *PlayService) StageDirections(ctx context.Context) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.stage_directions", start, err) }()

	return s.text(ctx, "/stage-directions", nil, acceptText)
}

// StageDirectionsWithSpeakers returns the stage directions including speaker names.
func (s *PlayService) StageDirectionsWithSpeakers(ctx context.Context) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("play.stage_directions_with_speakers", start, err) }()

	return s.text(ctx, "/stage-directions-with-speakers", nil, acceptText)
}

func (s *PlayService) path(suffix string) string {
	return "/corpora/" + url.PathEscape(s.corpus) + "/plays/" + url.PathEscape(s.name) + suffix
}

func (s *PlayService) record(ctx context.Context, suffix string) (Record, error) {
	var raw map[string]any
	if err := s.api.GetJSON(ctx, s.path(suffix), nil, &raw); err != nil {
		return nil, playErr(s.corpus, s.name, err)
	}
	rec, _ := casing.SegmentedKeys(raw).(map[string]any)
	return rec, nil
}

func (s *PlayService) list(ctx context.Context, suffix string) ([]Record, error) {
	var raw []any
	if err := s.api.GetJSON(ctx, s.path(suffix), nil, &raw); err != nil {
		return nil, playErr(s.corpus, s.name, err)
	}
	items, _ := casing.SegmentedKeys(raw).([]any)
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *PlayService) text(ctx context.Context, suffix string, query url.Values, accept string) (string, error) {
	body, err := s.api.GetText(ctx, s.path(suffix), query, accept)
	if err != nil {
		return "", playErr(s.corpus, s.name, err)
	}
	return body, nil
}

func (s *PlayService) download(ctx context.Context, prefix string, format DownloadFormat) (string, error) {
	accept, err := format.accept()
	if err != nil {
		return "", fmt.Errorf("play %q: %w", s.corpus+"/"+s.name, err)
	}
	return s.text(ctx, prefix+string(format), nil, accept)
}
