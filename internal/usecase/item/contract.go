package item

import (
	"context"

	domitem "github.com/kailas-cloud/heritage/internal/domain/item"
	"github.com/kailas-cloud/heritage/internal/usecase/risk"
)

// Repository persists items.
type Repository interface {
	Save(ctx context.Context, it *domitem.Item) error
	Get(ctx context.Context, id string) (domitem.Item, error)
	List(ctx context.Context, f domitem.Filter) ([]domitem.Item, error)
	Delete(ctx context.Context, id string) error
}

// Assessor scores a description. excludeID keeps the item's own stored
// embedding out of the local similarity signal.
type Assessor interface {
	AssessExcluding(ctx context.Context, text, language, excludeID string) (risk.Assessment, error)
}

// CorpusNotifier keeps the similarity index in step with stored embeddings.
type CorpusNotifier interface {
	NoteWrite()
	Invalidate()
}
