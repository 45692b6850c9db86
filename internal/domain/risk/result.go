package risk

import "math"

// Reference is the digital reference sub-score together with the raw match count.
type Reference struct {
	Score          float64
	SourcesMatched int
}

// Components holds the four raw sub-scores of an assessment.
type Components struct {
	Length   float64
	Language float64
	Digital  Reference
	Local    float64
}

// Result is a finished risk assessment (immutable value object).
type Result struct {
	score      float64
	level      Level
	components Components
}

// NewResult creates a result from already computed values (storage hydration, tests).
func NewResult(score float64, level Level, components Components) Result {
	return Result{score: score, level: level, components: components}
}

// Score returns the weighted score rounded to 3 decimals.
func (r Result) Score() float64 { return r.score }

// Level returns the risk category.
func (r Result) Level() Level { return r.level }

// Components returns the raw sub-scores.
func (r Result) Components() Components { return r.components }

// IsZero reports whether the result was never assessed.
func (r Result) IsZero() bool { return r.level == "" }

// Round3 rounds half away from zero to 3 decimals.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
