package dracor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/dracor/internal/casing"
	"github.com/kailas-cloud/dracor/internal/db"
	dbMemory "github.com/kailas-cloud/dracor/internal/db/memory"
	dbRedis "github.com/kailas-cloud/dracor/internal/db/redis"
	"github.com/kailas-cloud/dracor/internal/domain"
	corpusdomain "github.com/kailas-cloud/dracor/internal/domain/corpus"
	"github.com/kailas-cloud/dracor/internal/domain/record"
	"github.com/kailas-cloud/dracor/internal/repository/payload"
	"github.com/kailas-cloud/dracor/internal/transport/api"
	corpusuc "github.com/kailas-cloud/dracor/internal/usecase/corpus"
	healthuc "github.com/kailas-cloud/dracor/internal/usecase/health"
	"github.com/kailas-cloud/dracor/internal/usecase/lookup"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type transport interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	GetText(ctx context.Context, path string, query url.Values, accept string) (string, error)
	PostSPARQL(ctx context.Context, query string) (string, error)
	Ping(ctx context.Context) error
	Invalidate(ctx context.Context, path string, query url.Values) (int, error)
	Purge(ctx context.Context) (int, error)
}

type corpusUseCase interface {
	List(ctx context.Context, includeMetrics bool) ([]map[string]any, error)
	Names(ctx context.Context) ([]string, error)
	Info(ctx context.Context, name string) (map[string]any, error)
	Records(ctx context.Context, name string) (record.Set, error)
	PlayIDs(ctx context.Context, name string) ([]string, error)
	Filter(ctx context.Context, name string, conditions map[string]any) ([]string, error)
	Summary(ctx context.Context, name string) (corpusdomain.Summary, error)
	Authors(ctx context.Context, name string, n int) ([]corpusdomain.AuthorCount, error)
	Metadata(ctx context.Context, name string) (record.Set, error)
	MetadataCSV(ctx context.Context, name string) (string, error)
}

type playIndex interface {
	Refresh(ctx context.Context) error
	Invalidate()
	Built() bool
	Len() int
	RefreshedAt() time.Time
	Play(id string) (lookup.Play, error)
	PlayName(id string) (string, error)
	PlayTitle(id string) (string, error)
	PlayIDByName(name string) (string, error)
	PlayIDByTitle(title string) (string, error)
	CorpusOf(idOrName string) (string, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the DraCor SDK entry point.
type Client struct {
	store     db.Store
	api       transport
	corpusSvc corpusUseCase
	index     playIndex
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. The provided context is used for the readiness
// check of a Redis payload cache.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if store != nil {
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("dracor: cache not ready: %w", err)
		}
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil && store != nil {
		store.Close()
	}
	return c, err
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.cache {
	case cacheNone:
		return nil, nil
	case cacheMemory:
		return dbMemory.NewStore(), nil
	case cacheRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("dracor: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("dracor: unknown cache driver %q", cfg.cache)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	upstream := obs.upstream()

	apiCfg := api.Config{
		BaseURL:    cfg.baseURL,
		SPARQLURL:  cfg.sparqlURL,
		HTTPClient: cfg.httpClient,
		Timeout:    cfg.timeout,
		Metrics:    upstream,
		Logger:     logger,
	}
	if cfg.rateLimit > 0 {
		apiCfg.Limiter = rate.NewLimiter(rate.Limit(cfg.rateLimit), max(cfg.burst, 1))
	}

	var memo *payload.Cache
	if store != nil {
		var cacheTotal *prometheus.CounterVec
		if upstream != nil {
			cacheTotal = upstream.CacheTotal
		}
		memo = payload.New(store, cfg.cacheKeyPrefix, cacheTotal, logger)
		apiCfg.Memo = memo
	}

	apiClient, err := api.New(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("dracor: %w", err)
	}

	var filterTotal *prometheus.CounterVec
	if upstream != nil {
		filterTotal = upstream.FilterTotal
	}
	corpusSvc := corpusuc.New(apiClient, filterTotal, logger)

	var cachePinger healthuc.CachePinger
	if memo != nil {
		cachePinger = memo
	}

	return &Client{
		store:     store,
		api:       apiClient,
		corpusSvc: corpusSvc,
		index:     lookup.New(corpusSvc, cfg.indexConcurrency, logger),
		healthSvc: healthuc.New(apiClient, cachePinger),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks that the API answers and, when configured, that the cache backend does.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.api.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if c.store != nil {
		if err := c.store.Ping(ctx); err != nil {
			return fmt.Errorf("ping cache: %w", err)
		}
	}
	return nil
}

// Health checks the health of all client components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// Info returns the API instance description.
func (c *Client) Info(ctx context.Context) (_ Info, err error) {
	start := time.Now()
	defer func() { c.obs.observe("info", start, err) }()

	var info Info
	if err := c.api.GetJSON(ctx, "/info", nil, &info); err != nil {
		return Info{}, fmt.Errorf("info: %w", err)
	}
	return info, nil
}

// Corpora lists all corpora. includeMetrics adds per-corpus metrics.
func (c *Client) Corpora(ctx context.Context, includeMetrics bool) (_ []Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("corpora", start, err) }()

	list, err := c.corpusSvc.List(ctx, includeMetrics)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CorpusNames lists the names of all corpora.
func (c *Client) CorpusNames(ctx context.Context) (_ []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("corpora.names", start, err) }()

	return c.corpusSvc.Names(ctx)
}

// Corpus returns the service for one corpus. No request is made.
func (c *Client) Corpus(name string) *CorpusService {
	return &CorpusService{name: name, client: c}
}

// Play returns the service for one play. No request is made.
func (c *Client) Play(corpus, name string) *PlayService {
	return &PlayService{corpus: corpus, name: name, api: c.api, obs: c.obs}
}

// PlayByID resolves a play id to its corpus and name.
// The play index is consulted when built; otherwise the API resolves the id.
func (c *Client) PlayByID(ctx context.Context, id string) (_ *PlayService, err error) {
	start := time.Now()
	defer func() { c.obs.observe("play.by_id", start, err) }()

	if c.index.Built() {
		p, err := c.index.Play(id)
		if err != nil {
			return nil, err
		}
		return c.Play(p.Corpus, p.Name), nil
	}

	info, err := c.ResolvePlayID(ctx, id)
	if err != nil {
		return nil, err
	}
	corpus := record.String(info["corpus"])
	if corpus == "" {
		corpus = corpusdomain.CorpusOfPlayID(id)
	}
	name := record.String(info["name"])
	if name == "" {
		return nil, fmt.Errorf("play id %q: no name in payload: %w", id, domain.ErrUpstream)
	}
	return c.Play(corpus, name), nil
}

// ResolvePlayID returns the metadata of the play with the given DraCor id.
func (c *Client) ResolvePlayID(ctx context.Context, id string) (_ Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("play.resolve_id", start, err) }()

	var raw map[string]any
	if err := c.api.GetJSON(ctx, "/id/"+url.PathEscape(id), nil, &raw); err != nil {
		return nil, playErr("", id, err)
	}
	rec, _ := casing.SegmentedKeys(raw).(map[string]any)
	return rec, nil
}

// PlayIndex returns the cross-corpus play lookup. It is empty until Refresh.
func (c *Client) PlayIndex() *PlayIndex {
	return &PlayIndex{idx: c.index, obs: c.obs}
}

// InvalidateCache drops memoized responses for an API path such as "/corpora/rus".
func (c *Client) InvalidateCache(ctx context.Context, path string) (int, error) {
	return c.api.Invalidate(ctx, path, nil)
}

// PurgeCache drops every memoized response and the play index.
func (c *Client) PurgeCache(ctx context.Context) (int, error) {
	c.index.Invalidate()
	return c.api.Purge(ctx)
}

func playErr(corpus, play string, err error) error {
	name := play
	if corpus != "" {
		name = corpus + "/" + play
	}
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("play %q: %w: %w", name, domain.ErrPlayNotFound, err)
	}
	return fmt.Errorf("play %q: %w", name, err)
}
