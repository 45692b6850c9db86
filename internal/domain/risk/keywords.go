package risk

import (
	"regexp"
	"strings"
)

// Sinhala is the language tag that switches keyword extraction to Sinhala script.
const Sinhala = "sinhala"

const (
	sinhalaKeywordLimit = 3
	wordKeywordLimit    = 5
)

var (
	sinhalaRun = regexp.MustCompile(`[\x{0D80}-\x{0DFF}]+`)
	wordRun    = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)
)

// Keywords is the phrase sent to the reference lookup.
type Keywords struct {
	// Phrase is the space-joined keyword candidates. Empty means nothing was extracted.
	Phrase string
	// Site restricts the lookup to one source. Empty means unrestricted.
	Site string
}

// Empty reports whether no candidates were extracted.
func (k Keywords) Empty() bool { return k.Phrase == "" }

// ExtractKeywords picks the leading keyword candidates of text. Sinhala text uses runs of
// Sinhala script and is restricted to sinhalaSite; anything else uses the first word tokens.
func ExtractKeywords(text, language, sinhalaSite string) Keywords {
	if NormalizeLanguage(language) == Sinhala {
		runs := sinhalaRun.FindAllString(text, sinhalaKeywordLimit)
		if len(runs) == 0 {
			return Keywords{}
		}
		return Keywords{Phrase: strings.Join(runs, " "), Site: sinhalaSite}
	}

	words := wordRun.FindAllString(text, wordKeywordLimit)
	return Keywords{Phrase: strings.Join(words, " ")}
}
