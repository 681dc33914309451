// Package normalizer turns raw descriptions into cleaned token sequences.
package normalizer

import (
	"strings"

	"github.com/Manish3451/Book-Recommendation-System/internal/logging"
)

// Options selects the preprocessing steps.
type Options struct {
	Lemmatize    bool
	Stem         bool
	RemoveShort  bool
	TokenPattern string

	// Lemmatizer overrides the bundled English dictionary when set.
	Lemmatizer Lemmatizer
}

// DefaultOptions returns lemmatize on, stem off, short-token removal on.
func DefaultOptions() Options {
	return Options{Lemmatize: true, RemoveShort: true}
}

// Settings reports the effective preprocessing switches after capability probes.
type Settings struct {
	Lemmatize    bool   `json:"lemmatize"`
	Stem         bool   `json:"stem"`
	RemoveShort  bool   `json:"remove_short"`
	TokenPattern string `json:"token_pattern"`
}

// Mismatches names the switches that differ between s and other.
func (s Settings) Mismatches(other Settings) []string {
	var out []string
	if s.Lemmatize != other.Lemmatize {
		out = append(out, "lemmatize")
	}
	if s.Stem != other.Stem {
		out = append(out, "stem")
	}
	if s.RemoveShort != other.RemoveShort {
		out = append(out, "remove_short")
	}
	if s.TokenPattern != other.TokenPattern {
		out = append(out, "token_pattern")
	}
	return out
}

// Normalizer is immutable after New and safe for concurrent use.
type Normalizer struct {
	settings    Settings
	tokenize    tokenizeFunc
	lemmatizer  Lemmatizer
	stem        bool
	removeShort bool
}

// New builds a Normalizer. Missing linguistic resources degrade to fallbacks.
func New(opts Options) *Normalizer {
	n := &Normalizer{stem: opts.Stem, removeShort: opts.RemoveShort}

	pattern := opts.TokenPattern
	if pattern == "" {
		pattern = DefaultTokenPattern
	}
	tok, ok := newPatternTokenizer(pattern)
	if !ok {
		logging.Warn().Str("pattern", pattern).Msg("token pattern unusable, using alphabetic fallback tokenizer")
		tok = fallbackTokenize
		pattern = asciiWordRe.String()
	}
	n.tokenize = tok

	if opts.Lemmatize {
		n.lemmatizer = opts.Lemmatizer
		if n.lemmatizer == nil {
			lem, err := englishLemmatizer()
			if err != nil {
				logging.Warn().Err(err).Msg("lemmatizer dictionary unavailable, skipping lemmatization")
			} else {
				n.lemmatizer = lem
			}
		}
	}
	n.settings = Settings{
		Lemmatize:    n.lemmatizer != nil,
		Stem:         n.stem,
		RemoveShort:  n.removeShort,
		TokenPattern: pattern,
	}
	return n
}

// Settings returns the switches in effect.
func (n *Normalizer) Settings() Settings { return n.settings }

// Lemmatizing reports whether a lemmatizer is active.
func (n *Normalizer) Lemmatizing() bool { return n.lemmatizer != nil }

// Normalize lowercases, tokenizes and filters text. Empty input yields nil.
func (n *Normalizer) Normalize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw := n.tokenize(strings.ToLower(text))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if !isAlpha(t) {
			continue
		}
		if n.removeShort && len([]rune(t)) < 2 {
			continue
		}
		if n.lemmatizer != nil {
			t = n.lemmatizer.Lemma(t)
		}
		if n.stem {
			t = stem(t)
		}
		out = append(out, t)
	}
	return out
}
