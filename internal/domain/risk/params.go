package risk

import (
	"fmt"
	"math"
	"strings"
)

// weightSumTolerance absorbs float error when weights come from YAML.
const weightSumTolerance = 1e-9

// Weights are the linear coefficients of the four sub-scores. They must sum to 1.0.
type Weights struct {
	Length   float64
	Language float64
	Digital  float64
	Local    float64
}

// DefaultWeights returns 0.20 / 0.20 / 0.35 / 0.25. Digital reference weighs the most.
func DefaultWeights() Weights {
	return Weights{Length: 0.20, Language: 0.20, Digital: 0.35, Local: 0.25}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Length + w.Language + w.Digital + w.Local
}

// DistanceThresholds are the upper bounds (exclusive) of the 0.0, 0.25, 0.5 and 0.75
// local-similarity bands. Distances at or above the last bound score 1.0.
type DistanceThresholds [4]float64

// DefaultDistanceThresholds returns 0.2 / 0.35 / 0.5 / 0.65.
func DefaultDistanceThresholds() DistanceThresholds {
	return DistanceThresholds{0.2, 0.35, 0.5, 0.65}
}

// DefaultLanguageRarity returns the built-in rarity table.
func DefaultLanguageRarity() map[string]float64 {
	return map[string]float64{
		"sinhala": 1.0,
		"tamil":   0.8,
		"english": 0.1,
	}
}

// DefaultNeighbors is the number of nearest neighbours queried for the local signal.
const DefaultNeighbors = 3

// Params bundles every tunable constant of the scoring pipeline.
type Params struct {
	Weights        Weights
	Levels         LevelThresholds
	Distances      DistanceThresholds
	LanguageRarity map[string]float64
	Neighbors      int
}

// DefaultParams returns the calibrated defaults.
func DefaultParams() Params {
	return Params{
		Weights:        DefaultWeights(),
		Levels:         DefaultLevelThresholds(),
		Distances:      DefaultDistanceThresholds(),
		LanguageRarity: DefaultLanguageRarity(),
		Neighbors:      DefaultNeighbors,
	}
}

// Validate checks weights, band ordering and the rarity table.
func (p *Params) Validate() error {
	for name, w := range map[string]float64{
		"length": p.Weights.Length, "language": p.Weights.Language,
		"digital": p.Weights.Digital, "local": p.Weights.Local,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("weight %s must be in [0,1], got %v", name, w)
		}
	}
	if sum := p.Weights.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	if !(p.Levels.Medium > 0 && p.Levels.Medium < p.Levels.High && p.Levels.High < p.Levels.Critical &&
		p.Levels.Critical <= 1) {
		return fmt.Errorf("level thresholds must satisfy 0 < medium < high < critical <= 1, got %+v", p.Levels)
	}
	for i := 1; i < len(p.Distances); i++ {
		if p.Distances[i] <= p.Distances[i-1] {
			return fmt.Errorf("distance thresholds must be strictly ascending, got %v", p.Distances)
		}
	}
	if p.Distances[0] < 0 {
		return fmt.Errorf("distance thresholds must be non-negative, got %v", p.Distances)
	}
	for lang, v := range p.LanguageRarity {
		if v < 0 || v > 1 {
			return fmt.Errorf("rarity for %q must be in [0,1], got %v", lang, v)
		}
		if lang != strings.ToLower(strings.TrimSpace(lang)) {
			return fmt.Errorf("rarity table key %q must be lowercase", lang)
		}
	}
	if p.Neighbors <= 0 {
		return fmt.Errorf("neighbors must be positive, got %d", p.Neighbors)
	}
	return nil
}

// Evaluate weights the components, rounds the score and classifies it.
func (p *Params) Evaluate(c Components) Result {
	w := p.Weights
	raw := w.Length*c.Length + w.Language*c.Language + w.Digital*c.Digital.Score + w.Local*c.Local
	score := Round3(raw)
	return NewResult(score, p.Levels.Classify(score), c)
}
