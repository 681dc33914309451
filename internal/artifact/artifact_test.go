package artifact

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manish3451/Book-Recommendation-System/internal/domain"
	"github.com/Manish3451/Book-Recommendation-System/internal/embedding/word2vec"
	"github.com/Manish3451/Book-Recommendation-System/internal/normalizer"
	"github.com/Manish3451/Book-Recommendation-System/internal/vectorstore/memory"
)

func testArtifact(t *testing.T) *Artifact {
	t.Helper()
	model, err := word2vec.NewModel([]string{"spice", "desert", "whale"}, [][]float64{{1, 0}, {0.5, 0.5}, {0, 1}})
	require.NoError(t, err)
	items := []domain.CatalogItem{
		{Index: 0, Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Description: "spice desert"},
		{Index: 1, Title: "Moby Dick", Author: "Herman Melville", Genre: "", Description: "whale"},
	}
	store, err := memory.NewStorage(2, items, [][]float64{{0.75, 0.25}, {0, 1}})
	require.NoError(t, err)
	a, err := New(model, store, BuildInfo{
		BuiltAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		SourceRows: 2,
		Rows:       2,
		MaxRows:    5000,
		SampleSeed: 42,
		VocabSize:  3,
		Dimension:  2,
		Trainer:    word2vec.DefaultConfig(),
		Normalizer: normalizer.Settings{Lemmatize: true, RemoveShort: true, TokenPattern: normalizer.DefaultTokenPattern},
	})
	require.NoError(t, err)
	return a
}

func encoded(t *testing.T, a *Artifact) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, a))
	return buf.Bytes()
}

func gzipped(t *testing.T, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "books_w2v.json.gz")
	want := testArtifact(t)

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, want.Model.Vocabulary(), got.Model.Vocabulary())
	assert.Equal(t, want.Model.Vectors(), got.Model.Vectors())
	assert.Equal(t, want.Store.Vectors(), got.Store.Vectors())
	assert.Equal(t, want.Store.Items(), got.Store.Items())
	assert.True(t, want.Build.BuiltAt.Equal(got.Build.BuiltAt))
	assert.Equal(t, want.Build.Trainer, got.Build.Trainer)
	assert.Equal(t, want.Build.Normalizer, got.Build.Normalizer)
	assert.Equal(t, uint64(42), got.Build.SampleSeed)
	assert.Equal(t, 2, got.Rows())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestSave_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json.gz")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, Save(path, testArtifact(t)))

	_, err := Load(path)
	assert.NoError(t, err)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json.gz"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecode_Corrupt(t *testing.T) {
	tests := map[string][]byte{
		"not-gzip":       []byte("plain text"),
		"bad-json":       gzipped(t, "{not json"),
		"wrong-schema":   gzipped(t, `{"schema":"other","version":1,"model":{"vocab":["a"],"vectors":[[1]]},"matrix":[],"items":[]}`),
		"future-version": gzipped(t, `{"schema":"bookrec.artifact","version":2,"model":{"vocab":["a"],"vectors":[[1]]},"matrix":[],"items":[]}`),
		"missing-model":  gzipped(t, `{"schema":"bookrec.artifact","version":1,"matrix":[],"items":[]}`),
		"missing-matrix": gzipped(t, `{"schema":"bookrec.artifact","version":1,"model":{"vocab":["a"],"vectors":[[1]]},"items":[]}`),
		"missing-items":  gzipped(t, `{"schema":"bookrec.artifact","version":1,"model":{"vocab":["a"],"vectors":[[1]]},"matrix":[]}`),
		"misaligned-rows": gzipped(t, `{"schema":"bookrec.artifact","version":1,"model":{"vocab":["a"],"vectors":[[1]]},`+
			`"matrix":[[1],[0]],"items":[{"idx":0,"title":"x"}]}`),
		"matrix-dimension": gzipped(t, `{"schema":"bookrec.artifact","version":1,"model":{"vocab":["a"],"vectors":[[1]]},`+
			`"matrix":[[1,2]],"items":[{"idx":0,"title":"x"}]}`),
		"model-ragged": gzipped(t, `{"schema":"bookrec.artifact","version":1,"model":{"vocab":["a","b"],"vectors":[[1]]},`+
			`"matrix":[],"items":[]}`),
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(payload))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestFetcher_Fetch(t *testing.T) {
	body := encoded(t, testArtifact(t))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()
	dest := filepath.Join(t.TempDir(), "books.json.gz")

	a, err := NewFetcher(FetcherConfig{URL: srv.URL}).Fetch(context.Background(), dest)
	require.NoError(t, err)

	assert.Equal(t, 2, a.Rows())
	onDisk, err := Load(dest)
	require.NoError(t, err)
	assert.Equal(t, a.Store.Items(), onDisk.Store.Items())
}

func TestFetcher_Failures(t *testing.T) {
	tests := map[string]struct {
		status      int
		body        []byte
		wantHits    int32
		wantCorrupt bool
	}{
		"not-found": {
			status:   http.StatusNotFound,
			wantHits: 1,
		},
		"internal-error-not-retried": {
			status:   http.StatusInternalServerError,
			wantHits: 1,
		},
		"undecodable-body": {
			status:      http.StatusOK,
			body:        []byte("garbage"),
			wantHits:    1,
			wantCorrupt: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write(tt.body)
			}))
			defer srv.Close()
			dest := filepath.Join(t.TempDir(), "books.json.gz")

			_, err := NewFetcher(FetcherConfig{URL: srv.URL}).Fetch(context.Background(), dest)

			require.Error(t, err)
			assert.Equal(t, tt.wantHits, hits.Load())
			if tt.wantCorrupt {
				assert.ErrorIs(t, err, ErrCorrupt)
			}
			_, statErr := os.Stat(dest)
			assert.True(t, os.IsNotExist(statErr), "failed fetch must not create the artifact")
		})
	}
}

func TestLoader_LazyLoadAndHealth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json.gz")
	loader := NewLoader(LoaderConfig{Path: path})

	ok, rows := loader.Health()
	assert.False(t, ok)
	assert.Equal(t, 0, rows)

	_, err := loader.Get(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, loader.Current())

	require.NoError(t, Save(path, testArtifact(t)))
	a, err := loader.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, a, loader.Current())

	ok, rows = loader.Health()
	assert.True(t, ok)
	assert.Equal(t, 2, rows)
}

func TestLoader_OnLoadRunsForEachSuccessfulLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json.gz")
	var seen []*Artifact
	loader := NewLoader(LoaderConfig{Path: path, OnLoad: func(a *Artifact) { seen = append(seen, a) }})

	_, err := loader.Get(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, seen, "failed loads do not run the hook")

	require.NoError(t, Save(path, testArtifact(t)))
	first, err := loader.Get(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []*Artifact{first, second}, seen)
	assert.Same(t, second, loader.Current(), "an explicit load replaces the snapshot")

	loader.Swap(testArtifact(t))
	assert.Len(t, seen, 2, "Swap does not run the hook")
}

func TestLoader_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	loader := NewLoader(LoaderConfig{
		Path:            filepath.Join(t.TempDir(), "missing.json.gz"),
		BreakerFailures: 2,
		BreakerTimeout:  time.Hour,
	})

	for range 2 {
		_, err := loader.Get(context.Background())
		require.ErrorIs(t, err, ErrNotFound)
	}

	_, err := loader.Get(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.ErrorIs(t, err, ErrNotFound, "open breaker keeps the last cause")
}

func TestLoader_FetchesWhenMissing(t *testing.T) {
	body := encoded(t, testArtifact(t))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()
	path := filepath.Join(t.TempDir(), "books.json.gz")

	loader := NewLoader(LoaderConfig{Path: path, Fetcher: NewFetcher(FetcherConfig{URL: srv.URL})})
	a, err := loader.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, a.Rows())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoader_SwapKeepsOldSnapshot(t *testing.T) {
	loader := NewLoader(LoaderConfig{Path: filepath.Join(t.TempDir(), "x.json.gz")})
	first := testArtifact(t)
	second := testArtifact(t)

	assert.Nil(t, loader.Swap(first))
	held := loader.Current()
	old := loader.Swap(second)

	assert.Same(t, first, old)
	assert.Same(t, first, held)
	assert.Same(t, second, loader.Current())
}

func TestNew_DimensionMismatch(t *testing.T) {
	model, err := word2vec.NewModel([]string{"a"}, [][]float64{{1, 2, 3}})
	require.NoError(t, err)
	store, err := memory.NewStorage(2, []domain.CatalogItem{{Index: 0}}, [][]float64{{1, 0}})
	require.NoError(t, err)

	_, err = New(model, store, BuildInfo{})
	assert.EqualError(t, err, "model dimension 3 does not match matrix dimension 2")
}
