package lookup

import (
	"context"

	"github.com/kailas-cloud/dracor/internal/domain/record"
)

// CorpusSource lists corpora and their plays.
type CorpusSource interface {
	Names(ctx context.Context) ([]string, error)
	Records(ctx context.Context, corpus string) (record.Set, error)
}
