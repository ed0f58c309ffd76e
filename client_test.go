package dracor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const rusCorpus = `{
  "name": "rus",
  "title": "Russian Drama Corpus",
  "repository": "https://github.com/dracor-org/rusdracor",
  "plays": [
    {"id": "rus000001", "name": "andreyev-ne-ubij", "title": "Не убий", "writtenYear": "1913",
     "yearNormalized": 1913, "networkSize": 15, "authors": [{"name": "Andreyev, Leonid"}]},
    {"id": "rus000002", "name": "gorky-dachniki", "title": "Дачники", "writtenYear": "1904",
     "yearNormalized": 1904, "networkSize": 25, "authors": [{"name": "Gorky, Maxim"}]},
    {"id": "rus000003", "name": "gorky-meshchane", "title": "Мещане", "writtenYear": "1901",
     "yearNormalized": 1902, "networkSize": 12, "authors": [{"name": "Gorky, Maxim"}]}
  ]
}`

const gerCorpus = `{
  "name": "ger",
  "title": "German Drama Corpus",
  "plays": [
    {"id": "ger000001", "name": "goethe-faust", "title": "Faust", "writtenYear": "1808",
     "networkSize": 40, "authors": [{"name": "Goethe, Johann Wolfgang"}]}
  ]
}`

type fakeDraCor struct {
	srv      *httptest.Server
	requests atomic.Int64
}

func newFakeDraCor(t *testing.T) *fakeDraCor {
	t.Helper()
	f := &fakeDraCor{}
	mux := http.NewServeMux()
	jsonBody := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, body)
		}
	}
	textBody := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			io.WriteString(w, body)
		}
	}

	mux.HandleFunc("GET /info", jsonBody(`{"name":"DraCor API","status":"beta","version":"1.1.0","existdb":"6.2.0"}`))
	mux.HandleFunc("GET /corpora", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("include") == "metrics" {
			io.WriteString(w, `[{"name":"rus","title":"Russian Drama Corpus","metrics":{"plays":3}},`+
				`{"name":"ger","title":"German Drama Corpus","metrics":{"plays":1}}]`)
			return
		}
		io.WriteString(w, `[{"name":"rus","title":"Russian Drama Corpus"},{"name":"ger","title":"German Drama Corpus"}]`)
	})
	mux.HandleFunc("GET /corpora/rus", jsonBody(rusCorpus))
	mux.HandleFunc("GET /corpora/ger", jsonBody(gerCorpus))
	mux.HandleFunc("GET /corpora/rus/plays/andreyev-ne-ubij",
		jsonBody(`{"id":"rus000001","name":"andreyev-ne-ubij","corpus":"rus","originalSource":"wikisource",`+
			`"title":"Не убий","yearWritten":"1913","yearNormalized":1913,"authors":[{"name":"Andreyev, Leonid"}],`+
			`"characters":[{"id":"vasilisa","name":"Василиса","sex":"FEMALE","isGroup":false},`+
			`{"id":"crowd","name":"Толпа","isGroup":true}]}`))
	mux.HandleFunc("GET /corpora/rus/plays/andreyev-ne-ubij/rdf", textBody("<rdf:RDF/>"))
	mux.HandleFunc("GET /corpora/rus/plays/andreyev-ne-ubij/metrics",
		jsonBody(`{"id":"rus000001","averageDegree":4.5,"maxDegreeIds":["vasilisa"]}`))
	mux.HandleFunc("GET /corpora/rus/plays/andreyev-ne-ubij/characters",
		jsonBody(`[{"id":"vasilisa","gender":"FEMALE","numOfWords":1200,"numOfSpeechActs":42,"numOfScenes":5},`+
			`{"id":"kerzhentsev","gender":"MALE"},`+
			`{"id":"crowd","gender":"UNKNOWN"},{"id":"ivan","gender":"MALE"}]`))
	mux.HandleFunc("GET /corpora/rus/plays/andreyev-ne-ubij/networkdata/csv", textBody("Source,Type,Target,Weight\n"))
	mux.HandleFunc("GET /corpora/rus/plays/andreyev-ne-ubij/networkdata/gexf", textBody("<gexf/>"))
	mux.HandleFunc("GET /corpora/rus/plays/andreyev-ne-ubij/spoken-text", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "sex="+r.URL.Query().Get("sex"))
	})
	mux.HandleFunc("GET /id/rus000002", jsonBody(`{"id":"rus000002","name":"gorky-dachniki","corpus":"rus"}`))
	mux.HandleFunc("GET /wikidata/author-info/Q48287", jsonBody(`{"name":"Leonid Andreyev","genderLabel":"male"}`))
	mux.HandleFunc("GET /wikidata/mixnmatch", textBody("id,name,q\n"))
	mux.HandleFunc("GET /character/Q131412", jsonBody(`[{"id":"ger000001","playName":"goethe-faust"}]`))
	mux.HandleFunc("GET /dts", jsonBody(`{"@id":"/api/v1/dts","@type":"EntryPoint","collection":"/api/v1/dts/collection{?id,page,nav}"}`))
	mux.HandleFunc("GET /dts/collection", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"@id":"`+r.URL.Query().Get("id")+`","title":"Russian Drama Corpus","nav":"`+
			r.URL.Query().Get("nav")+`","totalItems":3}`)
	})
	mux.HandleFunc("GET /dts/navigation", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("ref") != "" && q.Get("start") != "" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"message":"ref and start/end are exclusive"}`)
			return
		}
		io.WriteString(w, `{"@id":"nav","resource":"`+q.Get("resource")+`","ref":"`+q.Get("ref")+`"}`)
	})
	mux.HandleFunc("GET /dts/document", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("end") == "bogus" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		io.WriteString(w, "<TEI>"+q.Get("resource")+" "+q.Get("start")+"-"+q.Get("end")+"</TEI>")
	})
	mux.HandleFunc("POST /sparql", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		io.WriteString(w, "<sparql>"+r.PostForm.Get("query")+"</sparql>")
	})

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		h, pattern := mux.Handler(r)
		if pattern == "" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"message":"not found"}`)
			return
		}
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func newTestClient(t *testing.T, f *fakeDraCor, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithBaseURL(f.srv.URL),
		WithSPARQLURL(f.srv.URL + "/sparql"),
	}, opts...)
	c, err := New(context.Background(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{cache: "bogus"}
	if _, err := createStore(cfg); err == nil {
		t.Fatal("expected error for unknown cache driver")
	}
}

func TestNew_InvalidBaseURL(t *testing.T) {
	if _, err := New(context.Background(), WithBaseURL("not a url")); err == nil {
		t.Fatal("expected error for invalid base url")
	}
}

func TestClient_Info(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	info, err := c.Info(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "DraCor API" || info.Version != "1.1.0" || info.ExistDB != "6.2.0" {
		t.Errorf("info = %+v", info)
	}
}

func TestClient_Corpora(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	list, err := c.Corpora(context.Background(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if _, ok := list[0]["metrics"]; !ok {
		t.Error("expected metrics with includeMetrics")
	}

	names, err := c.CorpusNames(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"rus", "ger"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestCorpus_Filter(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	ids, err := c.Corpus("rus").Filter(context.Background(), Conditions{
		"writtenYear__ge":         "1904",
		"authors__name__contains": "Andreyev",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"rus000001"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestCorpus_FilterUnknownField(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	_, err := c.Corpus("rus").Filter(context.Background(), Conditions{"wikitada_id__iexact": "Q1"})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "wikitada_id" {
		t.Errorf("expected ConfigError naming wikitada_id, got %v", err)
	}
}

func TestCorpus_NotFound(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	_, err := c.Corpus("xyz").PlayIDs(context.Background())
	if !errors.Is(err, ErrCorpusNotFound) {
		t.Errorf("err = %v, want ErrCorpusNotFound", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound in chain", err)
	}
}

func TestCorpus_PlaysAndSummary(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	ctx := context.Background()
	corpus := c.Corpus("rus")

	plays, err := corpus.Plays(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 3 {
		t.Fatalf("len = %d, want 3", len(plays))
	}
	if _, ok := plays[0]["written_year"]; !ok {
		t.Errorf("expected segmented keys, got %v", plays[0])
	}

	authors, err := corpus.Authors(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]AuthorCount{{Name: "Gorky, Maxim", Plays: 2}}, authors); diff != "" {
		t.Errorf("authors mismatch (-want +got):\n%s", diff)
	}

	sum, err := corpus.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.NumOfPlays != 3 || sum.Title != "Russian Drama Corpus" {
		t.Errorf("summary = %+v", sum)
	}
	if sum.NormalizedYears.From != 1902 || sum.NormalizedYears.To != 1913 {
		t.Errorf("normalized years = %+v", sum.NormalizedYears)
	}
}

func TestPlay_Requests(t *testing.T) {
	f := newFakeDraCor(t)
	c := newTestClient(t, f)
	ctx := context.Background()
	play := c.Corpus("rus").Play("andreyev-ne-ubij")

	info, err := play.Info(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info["original_source"] != "wikisource" {
		t.Errorf("info = %v", info)
	}

	m, err := play.Metrics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m["average_degree"]; !ok {
		t.Errorf("metrics = %v", m)
	}

	gc, err := play.GenderCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(GenderCount{Male: 2, Female: 1, Unknown: 1}, gc); diff != "" {
		t.Errorf("gender counts mismatch (-want +got):\n%s", diff)
	}

	csv, err := play.Network(ctx, FormatCSV)
	if err != nil || !strings.HasPrefix(csv, "Source") {
		t.Errorf("network csv = %q, %v", csv, err)
	}
	if _, err := play.Network(ctx, FormatGEXF); err != nil {
		t.Errorf("network gexf: %v", err)
	}
}

func TestPlay_InvalidFormat(t *testing.T) {
	f := newFakeDraCor(t)
	c := newTestClient(t, f)
	before := f.requests.Load()
	_, err := c.Play("rus", "andreyev-ne-ubij").Relations(context.Background(), DownloadFormat("pdf"))
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
	if f.requests.Load() != before {
		t.Error("invalid format should not reach the API")
	}
}

func TestPlay_NotFound(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	_, err := c.Play("rus", "nope").Info(context.Background())
	if !errors.Is(err, ErrPlayNotFound) {
		t.Errorf("err = %v, want ErrPlayNotFound", err)
	}
}

func TestPlay_RDFAndSummary(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	ctx := context.Background()
	play := c.Play("rus", "andreyev-ne-ubij")

	rdf, err := play.RDF(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rdf != "<rdf:RDF/>" {
		t.Errorf("rdf = %q", rdf)
	}

	sum, err := play.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum["title"] != "Не убий" || sum["year_written"] != "1913" || sum["original_source"] != "wikisource" {
		t.Errorf("summary = %v", sum)
	}
	if _, ok := sum["characters"]; ok {
		t.Error("summary should not carry the cast")
	}
	if v, ok := sum["subtitle"]; !ok || v != nil {
		t.Errorf("subtitle = %v, %v; want present and nil", v, ok)
	}
}

func TestPlay_Character(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	ctx := context.Background()
	play := c.Play("rus", "andreyev-ne-ubij")

	got, err := play.Character(ctx, "vasilisa")
	if err != nil {
		t.Fatal(err)
	}
	want := Character{
		ID:              "vasilisa",
		Name:            "Василиса",
		Sex:             "FEMALE",
		Gender:          "FEMALE",
		NumOfSpeechActs: 42,
		NumOfScenes:     5,
		NumOfWords:      1200,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("character mismatch (-want +got):\n%s", diff)
	}

	crowd, err := play.Character(ctx, "crowd")
	if err != nil {
		t.Fatal(err)
	}
	if !crowd.IsGroup || crowd.Gender != "UNKNOWN" {
		t.Errorf("crowd = %+v", crowd)
	}

	_, err = play.Character(ctx, "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if errors.Is(err, ErrPlayNotFound) {
		t.Error("unknown character should not report the play as missing")
	}
}

func TestDTS(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	ctx := context.Background()
	dts := c.DTS()

	entry, err := dts.Entrypoint(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if entry["@type"] != "EntryPoint" {
		t.Errorf("entrypoint = %v", entry)
	}

	coll, err := dts.Collection(ctx, "rus", "parents")
	if err != nil {
		t.Fatal(err)
	}
	if coll["@id"] != "rus" || coll["nav"] != "parents" {
		t.Errorf("collection = %v", coll)
	}

	nav, err := dts.Navigation(ctx, "rus000001", DTSRange{Ref: "body/div[1]"})
	if err != nil {
		t.Fatal(err)
	}
	if nav["resource"] != "rus000001" || nav["ref"] != "body/div[1]" {
		t.Errorf("navigation = %v", nav)
	}

	doc, err := dts.Document(ctx, "rus000001", DTSRange{Start: "body/div[2]/div[1]", End: "body/div[2]/div[3]"})
	if err != nil {
		t.Fatal(err)
	}
	if doc != "<TEI>rus000001 body/div[2]/div[1]-body/div[2]/div[3]</TEI>" {
		t.Errorf("document = %q", doc)
	}
}

func TestDTS_RefWithRangeRejected(t *testing.T) {
	f := newFakeDraCor(t)
	c := newTestClient(t, f)
	ctx := context.Background()
	before := f.requests.Load()

	ranges := []DTSRange{
		{Ref: "body/div[1]", Start: "body/div[2]/div[1]"},
		{Ref: "body/div[1]", End: "body/div[2]/div[3]"},
	}
	for _, r := range ranges {
		if _, err := c.DTS().Navigation(ctx, "rus000001", r); !errors.Is(err, ErrInvalidParameterCombination) {
			t.Errorf("Navigation(%+v) err = %v, want ErrInvalidParameterCombination", r, err)
		}
		if _, err := c.DTS().Document(ctx, "rus000001", r); !errors.Is(err, ErrInvalidParameterCombination) {
			t.Errorf("Document(%+v) err = %v, want ErrInvalidParameterCombination", r, err)
		}
	}
	if _, err := c.DTS().Document(ctx, "", DTSRange{}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("empty resource err = %v, want ErrBadRequest", err)
	}
	if f.requests.Load() != before {
		t.Error("rejected ranges should not reach the API")
	}
}

func TestDTS_UpstreamBadRequest(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	_, err := c.DTS().Document(context.Background(), "rus000001", DTSRange{Start: "body", End: "bogus"})
	if !errors.Is(err, ErrInvalidParameterCombination) {
		t.Fatalf("err = %v, want ErrInvalidParameterCombination", err)
	}
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest in chain", err)
	}
}

func TestPlay_SpokenText(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	play := c.Play("rus", "andreyev-ne-ubij")

	body, err := play.SpokenText(context.Background(), SpokenTextOptions{Sex: "female"})
	if err != nil {
		t.Fatal(err)
	}
	if body != "sex=FEMALE" {
		t.Errorf("body = %q, want sex upper-cased", body)
	}

	_, err = play.SpokenText(context.Background(), SpokenTextOptions{Relation: "spouses", RelationActive: "parent_of"})
	if !errors.Is(err, ErrInvalidParameterCombination) {
		t.Errorf("err = %v, want ErrInvalidParameterCombination", err)
	}

	_, err = play.SpokenText(context.Background(), SpokenTextOptions{Sex: "other"})
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest", err)
	}
}

func TestClient_PlayByID(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	ctx := context.Background()

	play, err := c.PlayByID(ctx, "rus000002")
	if err != nil {
		t.Fatal(err)
	}
	if play.Corpus() != "rus" || play.Name() != "gorky-dachniki" {
		t.Errorf("play = %s/%s", play.Corpus(), play.Name())
	}

	if _, err := c.PlayByID(ctx, "rus999999"); !errors.Is(err, ErrPlayNotFound) {
		t.Errorf("err = %v, want ErrPlayNotFound", err)
	}
}

func TestClient_PlayIndex(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t), WithIndexConcurrency(2))
	ctx := context.Background()
	idx := c.PlayIndex()

	if _, err := idx.PlayName("rus000001"); !errors.Is(err, ErrIndexNotBuilt) {
		t.Fatalf("err = %v, want ErrIndexNotBuilt", err)
	}
	if err := idx.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if idx.Len() != 4 {
		t.Errorf("Len = %d, want 4", idx.Len())
	}
	name, err := idx.PlayName("ger000001")
	if err != nil || name != "goethe-faust" {
		t.Errorf("PlayName = %q, %v", name, err)
	}
	corpus, err := idx.CorpusOf("gorky-dachniki")
	if err != nil || corpus != "rus" {
		t.Errorf("CorpusOf = %q, %v", corpus, err)
	}

	// Built index answers PlayByID without /id.
	play, err := c.PlayByID(ctx, "ger000001")
	if err != nil {
		t.Fatal(err)
	}
	if play.Name() != "goethe-faust" {
		t.Errorf("Name = %q", play.Name())
	}
}

func TestClient_Wikidata(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	ctx := context.Background()

	author, err := c.WikidataAuthor(ctx, "Q48287")
	if err != nil {
		t.Fatal(err)
	}
	if author["gender_label"] != "male" {
		t.Errorf("author = %v", author)
	}

	csv, err := c.MixNMatch(ctx)
	if err != nil || !strings.HasPrefix(csv, "id,") {
		t.Errorf("mixnmatch = %q, %v", csv, err)
	}

	plays, err := c.PlaysWithCharacter(ctx, "Q131412")
	if err != nil {
		t.Fatal(err)
	}
	if len(plays) != 1 || plays[0]["play_name"] != "goethe-faust" {
		t.Errorf("plays = %v", plays)
	}
}

func TestClient_SPARQL(t *testing.T) {
	c := newTestClient(t, newFakeDraCor(t))
	body, err := c.SPARQL(context.Background(), "SELECT * WHERE {?s ?p ?o}")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body, "SELECT") {
		t.Errorf("body = %q", body)
	}
	if _, err := c.SPARQL(context.Background(), ""); !errors.Is(err, ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest", err)
	}
}

func TestClient_MemoryCache(t *testing.T) {
	f := newFakeDraCor(t)
	reg := prometheus.NewRegistry()
	c := newTestClient(t, f, WithMemoryCache(), WithPrometheus(reg))
	ctx := context.Background()

	for range 3 {
		if _, err := c.Corpus("rus").PlayIDs(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if got := f.requests.Load(); got != 1 {
		t.Errorf("upstream requests = %d, want 1", got)
	}

	n, err := c.InvalidateCache(ctx, "/corpora/rus")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("invalidated = %d, want 1", n)
	}
	if _, err := c.Corpus("rus").PlayIDs(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.requests.Load(); got != 2 {
		t.Errorf("upstream requests = %d, want 2", got)
	}

	if n, err := c.PurgeCache(ctx); err != nil || n != 1 {
		t.Errorf("PurgeCache = %d, %v", n, err)
	}

	ops, err := testutil.GatherAndCount(reg, "dracor_sdk_operations_total")
	if err != nil {
		t.Fatal(err)
	}
	if ops == 0 {
		t.Error("expected sdk operation metrics")
	}
}

func TestClient_Health(t *testing.T) {
	f := newFakeDraCor(t)
	c := newTestClient(t, f, WithMemoryCache())

	h := c.Health(context.Background())
	if h.Status != "ok" {
		t.Errorf("status = %q, want ok", h.Status)
	}
	if h.Checks["upstream"] != "ok" || h.Checks["cache"] != "ok" {
		t.Errorf("checks = %v", h.Checks)
	}

	f.srv.Close()
	h = c.Health(context.Background())
	if h.Status != "error" {
		t.Errorf("status = %q, want error", h.Status)
	}
}

func TestFilter_CallerRecords(t *testing.T) {
	var payload struct {
		Plays []map[string]any `json:"plays"`
	}
	if err := json.Unmarshal([]byte(rusCorpus), &payload); err != nil {
		t.Fatal(err)
	}
	ids, err := Filter(payload.Plays, Conditions{
		"written_year__eq": "1904",
		"networkSize__gt":  nil,
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"rus000002"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestCasingReexports(t *testing.T) {
	if got := ToSegmented("networkSize"); got != "network_size" {
		t.Errorf("ToSegmented = %q", got)
	}
	if got := ToCompact("network_size"); got != "networkSize" {
		t.Errorf("ToCompact = %q", got)
	}
}
