package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := map[string]struct {
		err     error
		wantMsg string
	}{
		"validation": {
			err:     NewValidationErr("top_k must be at least 1"),
			wantMsg: "top_k must be at least 1",
		},
		"range": {
			err:     NewRangeErr("seed index 99 out of range 0..4"),
			wantMsg: "seed index 99 out of range 0..4",
		},
		"unavailable-without-cause": {
			err:     NewUnavailableErr("artifact not loaded", nil),
			wantMsg: "artifact not loaded",
		},
		"unavailable-with-cause": {
			err:     NewUnavailableErr("artifact not loaded", fs.ErrNotExist),
			wantMsg: "artifact not loaded: file does not exist",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.wantMsg)
		})
	}
}

func TestUnavailableErr_Unwrap(t *testing.T) {
	err := NewUnavailableErr("artifact not loaded", fs.ErrNotExist)

	assert.ErrorIs(t, err, fs.ErrNotExist)

	var unavailable *UnavailableErr
	assert.True(t, errors.As(error(err), &unavailable))

	var validation *ValidationErr
	assert.False(t, errors.As(error(err), &validation))
}

func TestClassification(t *testing.T) {
	tests := map[string]struct {
		err             error
		wantBadRequest  bool
		wantUnavailable bool
	}{
		"validation":       {err: NewValidationErr("x"), wantBadRequest: true},
		"range":            {err: NewRangeErr("x"), wantBadRequest: true},
		"wrapped-range":    {err: fmt.Errorf("query: %w", NewRangeErr("x")), wantBadRequest: true},
		"unavailable":      {err: NewUnavailableErr("x", fs.ErrNotExist), wantUnavailable: true},
		"plain":            {err: errors.New("boom")},
		"cause-not-leaked": {err: fs.ErrNotExist},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.wantBadRequest, IsBadRequest(tt.err))
			assert.Equal(t, tt.wantUnavailable, IsUnavailable(tt.err))
		})
	}
}
