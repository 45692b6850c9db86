package reference

import "context"

// Lookup counts external pages that mention a phrase. An empty site means unrestricted.
type Lookup interface {
	Lookup(ctx context.Context, phrase, site string) (int, error)
}
