package dracor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type cacheDriver string

const (
	cacheNone   cacheDriver = ""
	cacheMemory cacheDriver = "memory"
	cacheRedis  cacheDriver = "redis"
)

type clientConfig struct {
	baseURL    string
	sparqlURL  string
	httpClient *http.Client
	timeout    time.Duration

	rateLimit float64
	burst     int

	cache          cacheDriver
	redisAddrs     []string
	redisPassword  string
	cacheKeyPrefix string

	indexConcurrency int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithBaseURL sets the API root. Default: https://dracor.org/api/v1.
func WithBaseURL(u string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = u
	})
}

// WithSPARQLURL sets the SPARQL endpoint. Default: https://dracor.org/fuseki/sparql.
func WithSPARQLURL(u string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sparqlURL = u
	})
}

// WithHTTPClient replaces the HTTP client. WithTimeout is ignored when set.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout sets the per-request timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithRateLimit caps upstream requests per second with the given burst.
// rps <= 0 disables limiting (default).
func WithRateLimit(rps float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rateLimit = rps
		c.burst = burst
	})
}

// WithMemoryCache memoizes GET responses in process memory.
func WithMemoryCache() Option {
	return optionFunc(func(c *clientConfig) {
		c.cache = cacheMemory
	})
}

// WithRedisCache memoizes GET responses in Redis.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cache = cacheRedis
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithCacheKeyPrefix namespaces memo keys. Default: "dracor:payload:".
func WithCacheKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheKeyPrefix = prefix
	})
}

// WithIndexConcurrency bounds parallel corpus fetches while the play index is built.
func WithIndexConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexConcurrency = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations,
// upstream requests, cache hits) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
