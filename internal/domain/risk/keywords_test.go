package risk

import "testing"

const site = "si.wikipedia.org"

func TestExtractKeywords_Generic(t *testing.T) {
	k := ExtractKeywords("The Kolam masked dance-drama of the southern coast", "english", site)
	if k.Phrase != "The Kolam masked dance drama" {
		t.Errorf("unexpected phrase %q", k.Phrase)
	}
	if k.Site != "" {
		t.Errorf("expected no site restriction, got %q", k.Site)
	}
}

func TestExtractKeywords_GenericUnicodeWords(t *testing.T) {
	k := ExtractKeywords("கோலம் கலை, 2024!", "tamil", site)
	if k.Empty() {
		t.Fatal("expected tamil words to be extracted")
	}
	if k.Site != "" {
		t.Errorf("expected no site restriction for tamil, got %q", k.Site)
	}
}

func TestExtractKeywords_Sinhala(t *testing.T) {
	k := ExtractKeywords("රාවණ කතාව සහ පුරාණ ලංකාව about Ravana", "Sinhala", site)
	if k.Phrase != "රාවණ කතාව සහ" {
		t.Errorf("unexpected phrase %q", k.Phrase)
	}
	if k.Site != site {
		t.Errorf("expected site %q, got %q", site, k.Site)
	}
}

func TestExtractKeywords_SinhalaWithoutSinhalaScript(t *testing.T) {
	k := ExtractKeywords("written in latin letters only", "sinhala", site)
	if !k.Empty() {
		t.Errorf("expected no candidates, got %q", k.Phrase)
	}
	if k.Site != "" {
		t.Errorf("expected empty keywords to carry no site, got %q", k.Site)
	}
}

func TestExtractKeywords_NoWords(t *testing.T) {
	if k := ExtractKeywords("  ... !!! ", "english", site); !k.Empty() {
		t.Errorf("expected no candidates, got %q", k.Phrase)
	}
}
