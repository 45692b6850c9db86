package risk

import "strings"

// LengthSignal scores sparse documentation as risky: the fewer words, the higher the score.
func LengthSignal(text string) float64 {
	words := len(strings.Fields(text))
	switch {
	case words <= 5:
		return 1.0
	case words <= 15:
		return 0.7
	case words <= 50:
		return 0.4
	default:
		return 0.2
	}
}

// NormalizeLanguage lowercases and trims a language tag.
func NormalizeLanguage(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// LanguageSignal looks the tag up in the rarity table. Unmapped tags score 0.0.
func LanguageSignal(table map[string]float64, tag string) float64 {
	return table[NormalizeLanguage(tag)]
}

// ReferenceScore maps a web match count to risk: undocumented text is the riskiest.
func ReferenceScore(matches int) float64 {
	switch {
	case matches <= 0:
		return 1.0
	case matches < 5:
		return 0.7
	case matches < 20:
		return 0.3
	default:
		return 0.0
	}
}

// DistanceScore maps the nearest-neighbour distance to risk. Closer to the corpus is safer.
func DistanceScore(t DistanceThresholds, d float64) float64 {
	switch {
	case d < t[0]:
		return 0.0
	case d < t[1]:
		return 0.25
	case d < t[2]:
		return 0.5
	case d < t[3]:
		return 0.75
	default:
		return 1.0
	}
}
