package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/dracor/internal/domain"
	corpusuc "github.com/kailas-cloud/dracor/internal/usecase/corpus"
	healthuc "github.com/kailas-cloud/dracor/internal/usecase/health"
)

type stubSource struct {
	bodies map[string]string
	err    error
}

func (s *stubSource) GetJSON(_ context.Context, path string, _ url.Values, out any) error {
	if s.err != nil {
		return s.err
	}
	body, ok := s.bodies[path]
	if !ok {
		return fmt.Errorf("GET %s: %w", path, domain.ErrNotFound)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	return dec.Decode(out)
}

func (s *stubSource) GetText(_ context.Context, _ string, _ url.Values, _ string) (string, error) {
	return "", domain.ErrNotFound
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

const gerCorpus = `{
  "name": "ger",
  "title": "German Drama Corpus",
  "plays": [
    {"id": "ger000001", "writtenYear": "1808", "networkSize": 40,
     "authors": [{"name": "Goethe, Johann Wolfgang"}]},
    {"id": "ger000002", "writtenYear": "1781", "networkSize": 21,
     "authors": [{"name": "Schiller, Friedrich"}]},
    {"id": "ger000003", "writtenYear": "1804", "networkSize": 38,
     "authors": [{"name": "Schiller, Friedrich"}]}
  ]
}`

func newTestHandler(t *testing.T, src *stubSource, upstream error) http.Handler {
	t.Helper()
	srv := NewServer(
		corpusuc.New(src, nil, nil),
		healthuc.New(stubPinger{err: upstream}, nil),
		nil,
	)
	return HandlerWithOptions(srv, ServerOptions{
		BaseRouter: chi.NewRouter(),
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		},
	})
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func TestListPlayIDs(t *testing.T) {
	h := newTestHandler(t, &stubSource{bodies: map[string]string{"/corpora/ger": gerCorpus}}, nil)
	rec := do(t, h, "/corpora/ger/plays")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	got := decode[PlayIDsResponse](t, rec)
	want := PlayIDsResponse{Corpus: "ger", IDs: []string{"ger000001", "ger000002", "ger000003"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterPlays(t *testing.T) {
	h := newTestHandler(t, &stubSource{bodies: map[string]string{"/corpora/ger": gerCorpus}}, nil)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"conjunction", "writtenYear__gt=1800&authors__name__contains=Schiller", []string{"ger000003"}},
		{"repeated in", "id__in=ger000001&id__in=ger000002", []string{"ger000001", "ger000002"}},
		{"no conditions", "", []string{"ger000001", "ger000002", "ger000003"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, "/corpora/ger/filter?"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
			}
			if diff := cmp.Diff(tt.want, decode[PlayIDsResponse](t, rec).IDs); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterPlays_InvalidFilter(t *testing.T) {
	h := newTestHandler(t, &stubSource{bodies: map[string]string{"/corpora/ger": gerCorpus}}, nil)

	for _, q := range []string{"wikitada_id__iexact=Q1", "network_size__bogus=1", "network_size=1"} {
		t.Run(q, func(t *testing.T) {
			rec := do(t, h, "/corpora/ger/filter?"+q)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			resp := decode[ErrorResponse](t, rec)
			if resp.Code != ErrorResponseCodeInvalidFilter {
				t.Errorf("code = %q", resp.Code)
			}
		})
	}
}

func TestCorpusNotFound(t *testing.T) {
	h := newTestHandler(t, &stubSource{}, nil)
	rec := do(t, h, "/corpora/xyz/summary")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp := decode[ErrorResponse](t, rec); resp.Code != ErrorResponseCodeCorpusNotFound {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestUpstreamFailure(t *testing.T) {
	h := newTestHandler(t, &stubSource{err: fmt.Errorf("dial: %w", domain.ErrUpstream)}, nil)
	rec := do(t, h, "/corpora/ger/plays")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestInternalError(t *testing.T) {
	h := newTestHandler(t, &stubSource{err: errors.New("boom")}, nil)
	rec := do(t, h, "/corpora/ger/plays")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if resp := decode[ErrorResponse](t, rec); resp.Message != "internal error" {
		t.Errorf("message = %q leaks internals", resp.Message)
	}
}

func TestListAuthors(t *testing.T) {
	h := newTestHandler(t, &stubSource{bodies: map[string]string{"/corpora/ger": gerCorpus}}, nil)

	rec := do(t, h, "/corpora/ger/authors?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	got := decode[AuthorsResponse](t, rec)
	if len(got.Authors) != 1 || got.Authors[0].Name != "Schiller, Friedrich" || got.Authors[0].Plays != 2 {
		t.Errorf("authors = %+v", got.Authors)
	}

	if rec := do(t, h, "/corpora/ger/authors?limit=abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for bad limit", rec.Code)
	}
	if rec := do(t, h, "/corpora/ger/authors?limit=-1"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for negative limit", rec.Code)
	}
}

func TestGetSummary(t *testing.T) {
	h := newTestHandler(t, &stubSource{bodies: map[string]string{"/corpora/ger": gerCorpus}}, nil)
	rec := do(t, h, "/corpora/ger/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got["title"] != "German Drama Corpus" {
		t.Errorf("summary = %v", got)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		upstream   error
		wantStatus int
		wantBody   healthuc.Status
	}{
		{"healthy", nil, http.StatusOK, healthuc.Healthy},
		{"upstream down", errors.New("refused"), http.StatusServiceUnavailable, healthuc.Unhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &stubSource{}, tt.upstream)
			rec := do(t, h, "/health")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decode[healthuc.Report](t, rec); got.Status != tt.wantBody {
				t.Errorf("report status = %q", got.Status)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, &stubSource{}, nil)
	if rec := do(t, h, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
