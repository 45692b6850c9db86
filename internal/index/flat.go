// Package index implements the in-memory nearest-neighbour index over stored embeddings.
package index

import (
	"fmt"

	"github.com/kailas-cloud/heritage/internal/domain"
)

// Record is a stored embedding of a prior submission.
type Record struct {
	ID        string
	Embedding []float32
}

// Neighbor is a single query hit. Distance is the squared Euclidean distance.
type Neighbor struct {
	Distance float64
	ID       string
}

// Flat is a brute-force index over squared Euclidean distance.
// It is immutable after Build and safe for concurrent queries.
type Flat struct {
	ids     []string
	vectors [][]float32
	dim     int
}

// Build creates an index from a corpus snapshot. Record order defines tie-breaking.
// An empty corpus yields an index whose Empty reports true.
func Build(records []Record) (*Flat, error) {
	f := &Flat{
		ids:     make([]string, 0, len(records)),
		vectors: make([][]float32, 0, len(records)),
	}
	for i, r := range records {
		if i == 0 {
			f.dim = len(r.Embedding)
		}
		if len(r.Embedding) != f.dim {
			return nil, fmt.Errorf(
				"record %s has dimension %d, corpus has %d: %w",
				r.ID, len(r.Embedding), f.dim, domain.ErrDimensionMismatch,
			)
		}
		f.ids = append(f.ids, r.ID)
		f.vectors = append(f.vectors, r.Embedding)
	}
	return f, nil
}

// Empty reports whether the index holds no vectors.
func (f *Flat) Empty() bool { return len(f.ids) == 0 }

// Len returns the number of indexed vectors.
func (f *Flat) Len() int { return len(f.ids) }

// Dim returns the vector dimensionality, 0 for an empty index.
func (f *Flat) Dim() int { return f.dim }

// Query returns up to k nearest records ascending by distance.
// Equal distances keep corpus order.
func (f *Flat) Query(vec []float32, k int) ([]Neighbor, error) {
	return f.QueryExcluding(vec, k, "")
}

// QueryExcluding is Query with the record identified by exclude left out.
// An empty exclude leaves every record in.
func (f *Flat) QueryExcluding(vec []float32, k int, exclude string) ([]Neighbor, error) {
	if k <= 0 || f.Empty() {
		return nil, nil
	}
	if len(vec) != f.dim {
		return nil, fmt.Errorf(
			"query has dimension %d, corpus has %d: %w",
			len(vec), f.dim, domain.ErrDimensionMismatch,
		)
	}

	if k > len(f.ids) {
		k = len(f.ids)
	}
	top := make([]Neighbor, 0, k)

	for i, v := range f.vectors {
		if exclude != "" && f.ids[i] == exclude {
			continue
		}
		d := squaredL2(vec, v)
		if len(top) == k && d >= top[k-1].Distance {
			continue
		}
		// first slot holding a strictly larger distance keeps ties stable
		pos := len(top)
		for pos > 0 && top[pos-1].Distance > d {
			pos--
		}
		if len(top) < k {
			top = append(top, Neighbor{})
		}
		copy(top[pos+1:], top[pos:len(top)-1])
		top[pos] = Neighbor{Distance: d, ID: f.ids[i]}
	}
	return top, nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
