// Package redis backs the payload memo with Redis through rueidis.
//
// The memo stores raw upstream response bodies under prefixed keys with plain
// GET/SET/DEL, and drops them by SCAN pattern on invalidation. Nothing here
// needs server-assisted client caching or modules, so the client runs without
// them and works against any Redis-protocol server (Redis, Valkey, KeyDB).
package redis

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/dracor/internal/db"
)

var _ db.Store = (*Store)(nil)

// Defaults applied to a zero Config.
const (
	DefaultClientName  = "dracor-memo"
	DefaultDialTimeout = 5 * time.Second

	readyPollInterval = 100 * time.Millisecond
)

// Config locates the memo's Redis server.
//
// Addrs holds "host:port" seeds; a single address is a standalone server,
// several are cluster seeds. Username/Password are ACL credentials, DB selects
// the logical database and is ignored by clusters. ClientName tags the
// connection in CLIENT LIST.
type Config struct {
	Addrs       []string
	Username    string
	Password    string
	DB          int
	ClientName  string
	DialTimeout time.Duration
}

func (c Config) clientOption() (rueidis.ClientOption, error) {
	addrs := make([]string, 0, len(c.Addrs))
	for _, a := range c.Addrs {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	if len(addrs) == 0 {
		return rueidis.ClientOption{}, fmt.Errorf("redis memo: at least one address is required")
	}

	name := c.ClientName
	if name == "" {
		name = DefaultClientName
	}
	dial := c.DialTimeout
	if dial <= 0 {
		dial = DefaultDialTimeout
	}

	return rueidis.ClientOption{
		InitAddress:  addrs,
		Username:     c.Username,
		Password:     c.Password,
		SelectDB:     c.DB,
		ClientName:   name,
		Dialer:       net.Dialer{Timeout: dial},
		DisableCache: true,
	}, nil
}

// Store keeps memoized payloads in Redis.
type Store struct {
	client rueidis.Client
}

// NewStore connects to the server in cfg.
func NewStore(cfg Config) (*Store, error) {
	opt, err := cfg.clientOption()
	if err != nil {
		return nil, err
	}
	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("redis memo: connect %v: %w", opt.InitAddress, err)
	}
	return &Store{client: client}, nil
}

// Ping checks that the server answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close drops the connections.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings the server at once and then every 100ms until it
// answers or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if s.Ping(ctx) == nil {
		return nil
	}

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for payload memo backend: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
