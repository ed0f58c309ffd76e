package health

import "context"

// UpstreamChecker checks DraCor API availability.
type UpstreamChecker interface {
	Ping(ctx context.Context) error
}

// CachePinger checks payload memo backend availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
