package normalizer

import (
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/kljensen/snowball/english"
)

// Lemmatizer maps a word to its dictionary base form.
type Lemmatizer interface {
	Lemma(word string) string
}

// englishLemmatizer loads the English dictionary once per process.
var englishLemmatizer = sync.OnceValues(func() (Lemmatizer, error) {
	return golem.New(en.New())
})

func stem(word string) string {
	return english.Stem(word, false)
}
