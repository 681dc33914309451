package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticVectors map[string][]float64

func (s staticVectors) Dimension() int { return 3 }

func (s staticVectors) Vector(token string) ([]float64, bool) {
	v, ok := s[token]
	return v, ok
}

func TestAverage(t *testing.T) {
	model := staticVectors{
		"red": {1, 0, 2},
		"dog": {3, 2, 0},
		"run": {-1, 1, 1},
	}

	tests := map[string]struct {
		tokens []string
		want   []float64
	}{
		"empty-tokens-give-zero-vector": {
			tokens: nil,
			want:   []float64{0, 0, 0},
		},
		"all-oov-give-zero-vector": {
			tokens: []string{"blue", "boat"},
			want:   []float64{0, 0, 0},
		},
		"single-known-token": {
			tokens: []string{"red"},
			want:   []float64{1, 0, 2},
		},
		"oov-tokens-are-skipped": {
			tokens: []string{"red", "blue", "dog"},
			want:   []float64{2, 1, 1},
		},
		"repeated-tokens-count-each-time": {
			tokens: []string{"red", "red", "run"},
			want:   []float64{1.0 / 3, 1.0 / 3, 5.0 / 3},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := Average(model, tt.tokens)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestAverage_DoesNotMutateModel(t *testing.T) {
	model := staticVectors{"red": {1, 2, 3}}

	_ = Average(model, []string{"red", "red"})

	assert.Equal(t, []float64{1, 2, 3}, model["red"])
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(nil))
	assert.True(t, IsZero([]float64{0, 0}))
	assert.False(t, IsZero([]float64{0, 1e-300}))
}
