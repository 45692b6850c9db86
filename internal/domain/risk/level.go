package risk

// Level is the discretized extinction-risk category.
type Level string

// Risk level constants, ascending.
const (
	Low      Level = "Low"
	Medium   Level = "Medium"
	High     Level = "High"
	Critical Level = "Critical"
)

// IsValid checks if the level is one of the known categories.
func (l Level) IsValid() bool {
	return l == Low || l == Medium || l == High || l == Critical
}

// LevelThresholds are the inclusive lower bounds of the Medium, High and Critical bands.
type LevelThresholds struct {
	Medium   float64
	High     float64
	Critical float64
}

// DefaultLevelThresholds returns the 0.3 / 0.5 / 0.75 band boundaries.
func DefaultLevelThresholds() LevelThresholds {
	return LevelThresholds{Medium: 0.3, High: 0.5, Critical: 0.75}
}

// Classify maps a score onto closed-open bands: [Critical, 1], [High, Critical), [Medium, High), [0, Medium).
func (t LevelThresholds) Classify(score float64) Level {
	switch {
	case score >= t.Critical:
		return Critical
	case score >= t.High:
		return High
	case score >= t.Medium:
		return Medium
	default:
		return Low
	}
}
