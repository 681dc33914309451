// Package word2vec trains CBOW word embeddings with negative sampling.
//
// Training runs on a single goroutine driven by one seeded PCG source, so the
// same corpus and Config always produce the same vectors.
package word2vec

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

var (
	// ErrEmptyCorpus is returned when the corpus holds no tokens at all.
	ErrEmptyCorpus = errors.New("word2vec: empty corpus")
	// ErrEmptyVocabulary is returned when no token reaches MinCount.
	ErrEmptyVocabulary = errors.New("word2vec: no token reaches min_count")
)

// Config holds training hyperparameters.
type Config struct {
	VectorSize int     `json:"vector_size"`
	Window     int     `json:"window"`
	MinCount   int     `json:"min_count"`
	Epochs     int     `json:"epochs"`
	Seed       uint64  `json:"seed"`
	Workers    int     `json:"workers"`
	Negative   int     `json:"negative"`
	Alpha      float64 `json:"alpha"`
	MinAlpha   float64 `json:"min_alpha"`
	// Sample is the downsampling threshold for frequent words; 0 disables it.
	Sample float64 `json:"sample"`
}

// DefaultConfig mirrors the reference build settings.
func DefaultConfig() Config {
	return Config{
		VectorSize: 100,
		Window:     5,
		MinCount:   2,
		Epochs:     5,
		Seed:       42,
		Workers:    1,
		Negative:   5,
		Alpha:      0.025,
		MinAlpha:   0.0001,
		Sample:     1e-3,
	}
}

func (c Config) validate() error {
	switch {
	case c.VectorSize < 1:
		return fmt.Errorf("word2vec: vector size must be positive, got %d", c.VectorSize)
	case c.Window < 1:
		return fmt.Errorf("word2vec: window must be positive, got %d", c.Window)
	case c.MinCount < 1:
		return fmt.Errorf("word2vec: min count must be positive, got %d", c.MinCount)
	case c.Epochs < 1:
		return fmt.Errorf("word2vec: epochs must be positive, got %d", c.Epochs)
	case c.Workers != 1:
		return fmt.Errorf("word2vec: workers must be 1, got %d", c.Workers)
	case c.Negative < 1:
		return fmt.Errorf("word2vec: negative must be positive, got %d", c.Negative)
	case c.Alpha <= 0 || c.MinAlpha < 0 || c.MinAlpha > c.Alpha:
		return fmt.Errorf("word2vec: invalid learning rate range [%g, %g]", c.MinAlpha, c.Alpha)
	case c.Sample < 0:
		return fmt.Errorf("word2vec: sample must not be negative, got %g", c.Sample)
	}
	return nil
}

type vocabWord struct {
	token string
	count int
}

type trainer struct {
	cfg     Config
	dim     int
	words   []vocabWord
	index   map[string]int
	syn0    []float64
	syn1neg []float64
	keep    []float64
	noise   []float64
	rng     *rand.Rand
}

// Train fits embeddings over corpus. Tokens below cfg.MinCount are left out of
// the vocabulary.
func Train(ctx context.Context, corpus [][]string, cfg Config) (*Model, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, doc := range corpus {
		for _, tok := range doc {
			counts[tok]++
		}
	}
	if len(counts) == 0 {
		return nil, ErrEmptyCorpus
	}

	words := make([]vocabWord, 0, len(counts))
	for tok, n := range counts {
		if n >= cfg.MinCount {
			words = append(words, vocabWord{token: tok, count: n})
		}
	}
	if len(words) == 0 {
		return nil, ErrEmptyVocabulary
	}
	// Frequency order, ties by token, keeps the vocabulary independent of map order.
	sort.Slice(words, func(i, j int) bool {
		if words[i].count != words[j].count {
			return words[i].count > words[j].count
		}
		return words[i].token < words[j].token
	})

	t := newTrainer(words, cfg)
	if err := t.run(ctx, corpus); err != nil {
		return nil, err
	}
	return t.model()
}

func newTrainer(words []vocabWord, cfg Config) *trainer {
	dim := cfg.VectorSize
	t := &trainer{
		cfg:     cfg,
		dim:     dim,
		words:   words,
		index:   make(map[string]int, len(words)),
		syn0:    make([]float64, len(words)*dim),
		syn1neg: make([]float64, len(words)*dim),
		keep:    make([]float64, len(words)),
		noise:   make([]float64, len(words)),
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}

	retained := 0
	for i, w := range words {
		t.index[w.token] = i
		retained += w.count
	}

	for i := range t.syn0 {
		t.syn0[i] = (t.rng.Float64() - 0.5) / float64(dim)
	}

	threshold := cfg.Sample * float64(retained)
	for i, w := range words {
		p := 1.0
		if threshold > 0 {
			v := float64(w.count)
			p = (math.Sqrt(v/threshold) + 1) * (threshold / v)
		}
		t.keep[i] = math.Min(p, 1)
	}

	var z float64
	for i, w := range words {
		z += math.Pow(float64(w.count), 0.75)
		t.noise[i] = z
	}
	for i := range t.noise {
		t.noise[i] /= z
	}
	return t
}

func (t *trainer) run(ctx context.Context, corpus [][]string) error {
	retained := 0
	for _, w := range t.words {
		retained += w.count
	}
	total := float64(retained * t.cfg.Epochs)
	processed := 0

	sentence := make([]int, 0, 64)
	neu1 := make([]float64, t.dim)
	neu1e := make([]float64, t.dim)

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		for _, doc := range corpus {
			if err := ctx.Err(); err != nil {
				return err
			}
			sentence = sentence[:0]
			for _, tok := range doc {
				idx, ok := t.index[tok]
				if !ok {
					continue
				}
				processed++
				if k := t.keep[idx]; k < 1 && k < t.rng.Float64() {
					continue
				}
				sentence = append(sentence, idx)
			}
			alpha := t.cfg.Alpha - (t.cfg.Alpha-t.cfg.MinAlpha)*float64(processed)/total
			alpha = math.Max(alpha, t.cfg.MinAlpha)
			t.trainSentence(sentence, alpha, neu1, neu1e)
		}
	}
	return nil
}

func (t *trainer) trainSentence(sentence []int, alpha float64, neu1, neu1e []float64) {
	dim := t.dim
	for pos, word := range sentence {
		b := t.rng.IntN(t.cfg.Window)
		start := max(0, pos-t.cfg.Window+b)
		end := min(len(sentence), pos+t.cfg.Window+1-b)

		clear(neu1)
		count := 0
		for c := start; c < end; c++ {
			if c == pos {
				continue
			}
			row := t.syn0[sentence[c]*dim : (sentence[c]+1)*dim]
			for i, v := range row {
				neu1[i] += v
			}
			count++
		}
		if count == 0 {
			continue
		}
		inv := 1.0 / float64(count)
		for i := range neu1 {
			neu1[i] *= inv
		}

		clear(neu1e)
		for d := 0; d <= t.cfg.Negative; d++ {
			target, label := word, 1.0
			if d > 0 {
				target = t.sampleNoise()
				if target == word {
					continue
				}
				label = 0
			}
			row := t.syn1neg[target*dim : (target+1)*dim]
			var f float64
			for i, v := range row {
				f += neu1[i] * v
			}
			g := (label - sigmoid(f)) * alpha
			for i := range row {
				neu1e[i] += g * row[i]
				row[i] += g * neu1[i]
			}
		}

		// Mean CBOW: every context word receives the full error.
		for c := start; c < end; c++ {
			if c == pos {
				continue
			}
			row := t.syn0[sentence[c]*dim : (sentence[c]+1)*dim]
			for i := range row {
				row[i] += neu1e[i]
			}
		}
	}
}

func (t *trainer) sampleNoise() int {
	i := sort.SearchFloat64s(t.noise, t.rng.Float64())
	if i >= len(t.noise) {
		i = len(t.noise) - 1
	}
	return i
}

func (t *trainer) model() (*Model, error) {
	vocab := make([]string, len(t.words))
	vectors := make([][]float64, len(t.words))
	for i, w := range t.words {
		vocab[i] = w.token
		vectors[i] = append([]float64(nil), t.syn0[i*t.dim:(i+1)*t.dim]...)
	}
	return NewModel(vocab, vectors)
}

func sigmoid(x float64) float64 {
	switch {
	case x > 6:
		return 1
	case x < -6:
		return 0
	}
	return 1 / (1 + math.Exp(-x))
}
