package dracor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
)

const acceptTEI = "application/tei+xml"

// DTSService reads corpora and plays through the Distributed Text Services API.
// Responses are JSON-LD and keep their keys as served.
type DTSService struct {
	api transport
	obs *observer
}

// DTSRange selects a passage of a resource: either a single citation
// reference, or a Start/End span. Ref cannot be combined with Start or End.
type DTSRange struct {
	Ref   string
	Start string
	End   string
}

func (r DTSRange) query(resource string) (url.Values, error) {
	if resource == "" {
		return nil, fmt.Errorf("dts: empty resource: %w", ErrBadRequest)
	}
	if r.Ref != "" && (r.Start != "" || r.End != "") {
		return nil, fmt.Errorf("dts: ref with start/end: %w", ErrInvalidParameterCombination)
	}
	q := url.Values{"resource": {resource}}
	for k, v := range map[string]string{"ref": r.Ref, "start": r.Start, "end": r.End} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q, nil
}

// DTS returns the Distributed Text Services handle. No request is made.
func (c *Client) DTS() *DTSService {
	return &DTSService{api: c.api, obs: c.obs}
}

// Entrypoint returns the DTS entry point listing the collection, navigation
// and document endpoints.
func (s *DTSService) Entrypoint(ctx context.Context) (_ Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dts.entrypoint", start, err) }()

	var out map[string]any
	if err := s.api.GetJSON(ctx, "/dts", nil, &out); err != nil {
		return nil, fmt.Errorf("dts entrypoint: %w", err)
	}
	return out, nil
}

// Collection returns a DTS collection. An empty id selects the root collection;
// nav is "children" (default) or "parents".
func (s *DTSService) Collection(ctx context.Context, id, nav string) (_ Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dts.collection", start, err) }()

	q := url.Values{}
	if id != "" {
		q.Set("id", id)
	}
	if nav != "" {
		q.Set("nav", nav)
	}
	var out map[string]any
	if err := s.api.GetJSON(ctx, "/dts/collection", q, &out); err != nil {
		return nil, fmt.Errorf("dts collection %q: %w", id, err)
	}
	return out, nil
}

// Navigation returns the citation tree of resource, narrowed by r.
func (s *DTSService) Navigation(ctx context.Context, resource string, r DTSRange) (_ Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dts.navigation", start, err) }()

	q, err := r.query(resource)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := s.api.GetJSON(ctx, "/dts/navigation", q, &out); err != nil {
		return nil, dtsErr("navigation", resource, err)
	}
	return out, nil
}

// Document returns the TEI of resource, or of the passage selected by r.
func (s *DTSService) Document(ctx context.Context, resource string, r DTSRange) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("dts.document", start, err) }()

	q, err := r.query(resource)
	if err != nil {
		return "", err
	}
	body, err := s.api.GetText(ctx, "/dts/document", q, acceptTEI)
	if err != nil {
		return "", dtsErr("document", resource, err)
	}
	return body, nil
}

// dtsErr reports an upstream 400 as a rejected parameter combination.
func dtsErr(op, resource string, err error) error {
	if errors.Is(err, ErrBadRequest) {
		return fmt.Errorf("dts %s %q: %w: %w", op, resource, ErrInvalidParameterCombination, err)
	}
	return fmt.Errorf("dts %s %q: %w", op, resource, err)
}
