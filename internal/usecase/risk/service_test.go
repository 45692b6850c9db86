package risk

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/heritage/internal/domain"
	domrisk "github.com/kailas-cloud/heritage/internal/domain/risk"
	"github.com/kailas-cloud/heritage/internal/index"
	"github.com/kailas-cloud/heritage/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterRiskMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockEmbedder struct {
	vec   []float32
	err   error
	block bool
}

func (m *mockEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.block {
		<-ctx.Done()
		return domain.EmbeddingResult{}, ctx.Err()
	}
	return domain.EmbeddingResult{Embedding: m.vec}, m.err
}

type mockReference struct {
	matches int
	err     error
}

func (m *mockReference) Score(_ context.Context, _, _ string) (domrisk.Reference, error) {
	if m.err != nil {
		return domrisk.Reference{}, m.err
	}
	return domrisk.Reference{Score: domrisk.ReferenceScore(m.matches), SourcesMatched: m.matches}, nil
}

type mockCorpus struct {
	records []index.Record
	err     error
}

func (m *mockCorpus) Snapshot(_ context.Context) (*index.Flat, error) {
	if m.err != nil {
		return nil, m.err
	}
	return index.Build(m.records)
}

func newService(emb *mockEmbedder, ref *mockReference, corpus *mockCorpus) *Service {
	return New(emb, ref, corpus, domrisk.DefaultParams())
}

// --- Tests ---

func TestAssess_ShortEnglishUndocumentedEmptyCorpus(t *testing.T) {
	svc := newService(&mockEmbedder{vec: []float32{1, 0}}, &mockReference{matches: 0}, &mockCorpus{})

	a, err := svc.Assess(context.Background(), "short", "english")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := a.Result
	if r.Score() != 0.82 || r.Level() != domrisk.Critical {
		t.Fatalf("expected 0.82 Critical, got %v %s", r.Score(), r.Level())
	}
	c := r.Components()
	want := domrisk.Components{
		Length: 1.0, Language: 0.1, Digital: domrisk.Reference{Score: 1.0, SourcesMatched: 0}, Local: 1.0,
	}
	if c != want {
		t.Errorf("components = %+v, want %+v", c, want)
	}
	if len(a.Embedding) != 2 {
		t.Errorf("expected the embedding to be returned for persistence, got %v", a.Embedding)
	}
}

func TestAssess_LongTamilWellDocumentedNearNeighbour(t *testing.T) {
	corpus := &mockCorpus{records: []index.Record{
		{ID: "far", Embedding: []float32{5, 5}},
		{ID: "near", Embedding: []float32{0.3, 0}},
	}}
	svc := newService(&mockEmbedder{vec: []float32{0, 0}}, &mockReference{matches: 30}, corpus)

	text := strings.TrimSpace(strings.Repeat("சொல் ", 60))
	r, err := svc.Score(context.Background(), text, "TAMIL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Score() != 0.2 || r.Level() != domrisk.Low {
		t.Fatalf("expected 0.2 Low, got %v %s (%+v)", r.Score(), r.Level(), r.Components())
	}
	if r.Components().Digital.SourcesMatched != 30 {
		t.Errorf("expected 30 matches, got %d", r.Components().Digital.SourcesMatched)
	}
}

func TestAssess_LocalSignalFromNearestDistance(t *testing.T) {
	tests := []struct {
		x    float32 // squared distance is x*x
		want float64
	}{
		{0.4, 0.0},  // 0.16
		{0.5, 0.25}, // 0.25
		{0.6, 0.5},  // 0.36
		{0.75, 0.75},
		{1, 1.0},
	}
	for _, tc := range tests {
		corpus := &mockCorpus{records: []index.Record{{ID: "a", Embedding: []float32{tc.x}}}}
		svc := newService(&mockEmbedder{vec: []float32{0}}, &mockReference{}, corpus)

		r, err := svc.Score(context.Background(), "text", "english")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := r.Components().Local; got != tc.want {
			t.Errorf("x=%v: local = %v, want %v", tc.x, got, tc.want)
		}
	}
}

func TestAssessExcluding_IgnoresOwnRecord(t *testing.T) {
	corpus := &mockCorpus{records: []index.Record{
		{ID: "self", Embedding: []float32{0}},
		{ID: "other", Embedding: []float32{0.6}},
	}}
	svc := newService(&mockEmbedder{vec: []float32{0}}, &mockReference{}, corpus)

	a, err := svc.AssessExcluding(context.Background(), "text", "english", "self")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// nearest remaining is "other" at squared distance 0.36
	if got := a.Result.Components().Local; got != 0.5 {
		t.Errorf("local = %v, want 0.5", got)
	}

	a, err = svc.Assess(context.Background(), "text", "english")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := a.Result.Components().Local; got != 0.0 {
		t.Errorf("without exclusion local = %v, want 0", got)
	}
}

func TestAssessExcluding_OnlyOwnRecordIsNovel(t *testing.T) {
	corpus := &mockCorpus{records: []index.Record{{ID: "self", Embedding: []float32{0}}}}
	svc := newService(&mockEmbedder{vec: []float32{0}}, &mockReference{}, corpus)

	a, err := svc.AssessExcluding(context.Background(), "text", "english", "self")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := a.Result.Components().Local; got != 1.0 {
		t.Errorf("local = %v, want 1.0", got)
	}
}

func TestAssess_UnknownLanguageScoresZero(t *testing.T) {
	svc := newService(&mockEmbedder{vec: []float32{1}}, &mockReference{}, &mockCorpus{})
	r, err := svc.Score(context.Background(), "text", "klingon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Components().Language != 0 {
		t.Errorf("expected 0 for unknown language, got %v", r.Components().Language)
	}
}

func TestAssess_EmptyText(t *testing.T) {
	svc := newService(&mockEmbedder{}, &mockReference{}, &mockCorpus{})
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Assess(context.Background(), text, "english"); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("text %q: expected ErrInvalidInput, got %v", text, err)
		}
	}
}

func TestAssess_ReferenceFailureAbortsAndCancels(t *testing.T) {
	refErr := domain.NewDependencyError("reference_lookup", domain.DependencyNetwork, errors.New("503"))
	svc := newService(&mockEmbedder{block: true}, &mockReference{err: refErr}, &mockCorpus{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Assess(context.Background(), "text", "english")
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, domain.ErrDependency) {
			t.Fatalf("expected dependency error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected the reference failure to cancel the embedding call")
	}
}

func TestAssess_EmbeddingFailure(t *testing.T) {
	embErr := domain.NewDependencyError("embedding", domain.DependencyTimeout, domain.ErrEmbeddingProviderError)
	svc := newService(&mockEmbedder{err: embErr}, &mockReference{}, &mockCorpus{})

	_, err := svc.Assess(context.Background(), "text", "english")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestAssess_DimensionMismatchIsFatal(t *testing.T) {
	corpus := &mockCorpus{records: []index.Record{{ID: "a", Embedding: []float32{1, 2, 3}}}}
	svc := newService(&mockEmbedder{vec: []float32{1, 2}}, &mockReference{}, corpus)

	_, err := svc.Assess(context.Background(), "text", "english")
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestAssess_CorpusFailure(t *testing.T) {
	svc := newService(&mockEmbedder{vec: []float32{1}}, &mockReference{}, &mockCorpus{err: errors.New("scan failed")})
	if _, err := svc.Assess(context.Background(), "text", "english"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAssess_Idempotent(t *testing.T) {
	corpus := &mockCorpus{records: []index.Record{{ID: "a", Embedding: []float32{0.5, 0.5}}}}
	svc := newService(&mockEmbedder{vec: []float32{0, 0}}, &mockReference{matches: 7}, corpus)

	first, err := svc.Score(context.Background(), "a few words about kolam", "sinhala")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := svc.Score(context.Background(), "a few words about kolam", "sinhala")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("expected identical results, got %+v and %+v", first, again)
		}
	}
}

func TestAssess_TextIsTrimmed(t *testing.T) {
	svc := newService(&mockEmbedder{vec: []float32{1}}, &mockReference{}, &mockCorpus{})
	a, err := svc.Score(context.Background(), "  one two  ", "english")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Components().Length != 1.0 {
		t.Errorf("expected length 1.0, got %v", a.Components().Length)
	}
}
