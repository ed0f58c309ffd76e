package dracor

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/kailas-cloud/dracor/internal/casing"
)

// WikidataAuthor returns author information DraCor retrieves from Wikidata.
func (c *Client) WikidataAuthor(ctx context.Context, wikidataID string) (_ Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("wikidata.author", start, err) }()

	var raw map[string]any
	if err := c.api.GetJSON(ctx, "/wikidata/author-info/"+url.PathEscape(wikidataID), nil, &raw); err != nil {
		return nil, fmt.Errorf("wikidata author %q: %w", wikidataID, err)
	}
	rec, _ := casing.SegmentedKeys(raw).(map[string]any)
	return rec, nil
}

// MixNMatch returns the Mix'n'match catalogue matching DraCor plays to Wikidata items, as CSV.
func (c *Client) MixNMatch(ctx context.Context) (_ string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("wikidata.mixnmatch", start, err) }()

	body, err := c.api.GetText(ctx, "/wikidata/mixnmatch", nil, acceptCSV)
	if err != nil {
		return "", fmt.Errorf("mixnmatch: %w", err)
	}
	return body, nil
}

// PlaysWithCharacter returns the plays featuring the character with the given Wikidata id.
func (c *Client) PlaysWithCharacter(ctx context.Context, wikidataID string) (_ []Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("character.plays", start, err) }()

	var raw []any
	if err := c.api.GetJSON(ctx, "/character/"+url.PathEscape(wikidataID), nil, &raw); err != nil {
		return nil, fmt.Errorf("character %q: %w", wikidataID, err)
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

// SPARQL submits a query to the DraCor SPARQL endpoint and returns the XML result.
func (c *Client) SPARQL(ctx context.Context, query string) (_ string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("sparql", start, err) }()

	if query == "" {
		return "", fmt.Errorf("sparql: empty query: %w", ErrBadRequest)
	}
	body, err := c.api.PostSPARQL(ctx, query)
	if err != nil {
		return "", fmt.Errorf("sparql: %w", err)
	}
	return body, nil
}
