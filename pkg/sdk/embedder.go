package heritage

import "context"

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// ReferenceLookup counts external pages that mention a phrase.
// An empty site means the search is unrestricted.
type ReferenceLookup interface {
	Lookup(ctx context.Context, phrase, site string) (int, error)
}
