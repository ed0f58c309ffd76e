package corpus

import (
	"context"
	"net/url"
)

// Source fetches DraCor API payloads.
type Source interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	GetText(ctx context.Context, path string, query url.Values, accept string) (string, error)
}
