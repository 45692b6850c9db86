package corpus

import (
	"context"

	"github.com/kailas-cloud/heritage/internal/index"
)

// Provider lists the stored embeddings in insertion order.
type Provider interface {
	ListEmbeddings(ctx context.Context) ([]index.Record, error)
}
