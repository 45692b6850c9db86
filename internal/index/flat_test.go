package index

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/kailas-cloud/heritage/internal/domain"
)

func mustBuild(t *testing.T, records []Record) *Flat {
	t.Helper()
	f, err := Build(records)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return f
}

func TestBuild_Empty(t *testing.T) {
	f := mustBuild(t, nil)
	if !f.Empty() {
		t.Fatal("expected empty index")
	}
	if f.Len() != 0 || f.Dim() != 0 {
		t.Errorf("expected len=0 dim=0, got len=%d dim=%d", f.Len(), f.Dim())
	}

	res, err := f.Query([]float32{1, 2, 3}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 0 {
		t.Errorf("expected no neighbours, got %v", res)
	}
}

func TestBuild_DimensionMismatch(t *testing.T) {
	_, err := Build([]Record{
		{ID: "a", Embedding: []float32{0, 0}},
		{ID: "b", Embedding: []float32{0, 0, 0}},
	})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestQuery_DimensionMismatch(t *testing.T) {
	f := mustBuild(t, []Record{{ID: "a", Embedding: []float32{0, 0}}})
	_, err := f.Query([]float32{0, 0, 0}, 1)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestQuery_NearestFirst(t *testing.T) {
	f := mustBuild(t, []Record{
		{ID: "far", Embedding: []float32{3, 0}},
		{ID: "near", Embedding: []float32{1, 0}},
		{ID: "mid", Embedding: []float32{2, 0}},
		{ID: "farthest", Embedding: []float32{4, 0}},
	})

	res, err := f.Query([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantIDs := []string{"near", "mid", "far"}
	wantDist := []float64{1, 4, 9}
	if len(res) != len(wantIDs) {
		t.Fatalf("expected %d results, got %d", len(wantIDs), len(res))
	}
	for i := range wantIDs {
		if res[i].ID != wantIDs[i] || res[i].Distance != wantDist[i] {
			t.Errorf("res[%d] = %+v, want {%v %s}", i, res[i], wantDist[i], wantIDs[i])
		}
	}
}

func TestQuery_ExactMatchIsZero(t *testing.T) {
	vec := []float32{0.12, -0.5, 0.33}
	f := mustBuild(t, []Record{
		{ID: "other", Embedding: []float32{1, 1, 1}},
		{ID: "same", Embedding: vec},
	})

	res, err := f.Query(vec, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res[0].ID != "same" || res[0].Distance != 0 {
		t.Errorf("expected exact match first at distance 0, got %+v", res[0])
	}
}

func TestQuery_TiesKeepInsertionOrder(t *testing.T) {
	f := mustBuild(t, []Record{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0, 1}},
		{ID: "c", Embedding: []float32{-1, 0}},
		{ID: "d", Embedding: []float32{0, -1}},
	})

	res, err := f.Query([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if res[i].ID != want {
			t.Errorf("res[%d].ID = %s, want %s", i, res[i].ID, want)
		}
	}
}

func TestQuery_KBounds(t *testing.T) {
	f := mustBuild(t, []Record{
		{ID: "a", Embedding: []float32{1}},
		{ID: "b", Embedding: []float32{2}},
	})

	res, err := f.Query([]float32{0}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 2 {
		t.Errorf("expected k clamped to corpus size 2, got %d", len(res))
	}

	res, err = f.Query([]float32{0}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 0 {
		t.Errorf("expected no results for k=0, got %d", len(res))
	}
}

func TestQuery_SortedAndBoundedOnRandomCorpus(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const dim, n, k = 8, 200, 7

	records := make([]Record, n)
	for i := range records {
		v := make([]float32, dim)
		for j := range v {
			v[j] = rng.Float32()
		}
		records[i] = Record{ID: string(rune('A' + i%26)), Embedding: v}
	}
	f := mustBuild(t, records)

	q := make([]float32, dim)
	for j := range q {
		q[j] = rng.Float32()
	}
	res, err := f.Query(q, k)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != k {
		t.Fatalf("expected %d results, got %d", k, len(res))
	}
	for i := 1; i < len(res); i++ {
		if res[i].Distance < res[i-1].Distance {
			t.Fatalf("distances not ascending at %d: %v < %v", i, res[i].Distance, res[i-1].Distance)
		}
	}

	// brute-force check of the minimum
	best := squaredL2(q, records[0].Embedding)
	for _, r := range records[1:] {
		if d := squaredL2(q, r.Embedding); d < best {
			best = d
		}
	}
	if res[0].Distance != best {
		t.Errorf("expected nearest distance %v, got %v", best, res[0].Distance)
	}
}

func TestQueryExcluding_SkipsRecord(t *testing.T) {
	f := mustBuild(t, []Record{
		{ID: "self", Embedding: []float32{0, 0}},
		{ID: "near", Embedding: []float32{1, 0}},
		{ID: "far", Embedding: []float32{3, 0}},
	})

	res, err := f.QueryExcluding([]float32{0, 0}, 3, "self")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res))
	}
	if res[0].ID != "near" || res[0].Distance != 1 {
		t.Errorf("expected near at distance 1 first, got %+v", res[0])
	}
	for _, n := range res {
		if n.ID == "self" {
			t.Fatal("excluded record returned")
		}
	}
}

func TestQueryExcluding_OnlyRecordExcluded(t *testing.T) {
	f := mustBuild(t, []Record{{ID: "self", Embedding: []float32{0, 0}}})

	res, err := f.QueryExcluding([]float32{0, 0}, 3, "self")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != 0 {
		t.Errorf("expected no neighbours, got %v", res)
	}
}
