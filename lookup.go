package dracor

import (
	"context"
	"time"
)

// PlayIndex resolves play ids, names and titles across all corpora.
// Lookups return ErrIndexNotBuilt until Refresh succeeds.
type PlayIndex struct {
	idx playIndex
	obs *observer
}

// Refresh fetches every corpus and rebuilds the index. On error the
// previous index stays in place.
func (p *PlayIndex) Refresh(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { p.obs.observe("index.refresh", start, err) }()

	return p.idx.Refresh(ctx)
}

// Invalidate drops the index.
func (p *PlayIndex) Invalidate() { p.idx.Invalidate() }

// Built reports whether the index holds data.
func (p *PlayIndex) Built() bool { return p.idx.Built() }

// Len returns the number of indexed plays.
func (p *PlayIndex) Len() int { return p.idx.Len() }

// RefreshedAt returns the time of the last successful Refresh.
func (p *PlayIndex) RefreshedAt() time.Time { return p.idx.RefreshedAt() }

// PlayName returns the name of the play with the given id.
func (p *PlayIndex) PlayName(id string) (string, error) { return p.idx.PlayName(id) }

// PlayTitle returns the title of the play with the given id.
func (p *PlayIndex) PlayTitle(id string) (string, error) { return p.idx.PlayTitle(id) }

// PlayIDByName returns the id of the play with the given name.
// Names shared across corpora return ErrAmbiguousName.
func (p *PlayIndex) PlayIDByName(name string) (string, error) { return p.idx.PlayIDByName(name) }

// PlayIDByTitle returns the id of the play with the given title.
func (p *PlayIndex) PlayIDByTitle(title string) (string, error) { return p.idx.PlayIDByTitle(title) }

// CorpusOf returns the corpus of a play given its id or name.
func (p *PlayIndex) CorpusOf(idOrName string) (string, error) { return p.idx.CorpusOf(idOrName) }
