package normalizer

import (
	"regexp"
	"unicode"
)

// DefaultTokenPattern matches runs of Unicode letters. Apostrophes split a
// word, so "harry's" yields "harry" and "s".
const DefaultTokenPattern = `\p{L}+`

var asciiWordRe = regexp.MustCompile(`[a-zA-Z]+`)

type tokenizeFunc func(lower string) []string

// newPatternTokenizer probes whether pattern can serve as the primary tokenizer.
func newPatternTokenizer(pattern string) (tokenizeFunc, bool) {
	if pattern == "" {
		pattern = DefaultTokenPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false
	}
	return func(lower string) []string {
		return re.FindAllString(lower, -1)
	}, true
}

// fallbackTokenize is the alphabetic scan used when the primary tokenizer is unavailable.
func fallbackTokenize(lower string) []string {
	return asciiWordRe.FindAllString(lower, -1)
}

func isAlpha(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
