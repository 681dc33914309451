package artifact

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Manish3451/Book-Recommendation-System/internal/logging"
	"github.com/Manish3451/Book-Recommendation-System/internal/metrics"
)

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	Path string
	// Fetcher, if set, is consulted when Path does not exist.
	Fetcher *Fetcher
	// BreakerFailures consecutive failed loads open the breaker.
	BreakerFailures uint32
	// BreakerTimeout is how long the breaker stays open before a retry.
	BreakerTimeout time.Duration
	// OnLoad, if set, runs after every successful load from disk or remote.
	OnLoad func(*Artifact)
}

// Loader owns the active artifact. Readers get an immutable snapshot; Swap
// replaces it without affecting in-flight queries.
type Loader struct {
	cfg     LoaderConfig
	current atomic.Pointer[Artifact]
	mu      sync.Mutex
	breaker *gobreaker.CircuitBreaker[*Artifact]
	lastErr atomic.Pointer[error]
}

// NewLoader creates a Loader with no artifact loaded.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 3
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	l := &Loader{cfg: cfg}
	l.breaker = gobreaker.NewCircuitBreaker[*Artifact](gobreaker.Settings{
		Name:        "artifact-load",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("artifact breaker state changed")
		},
	})
	metrics.SetArtifact(-1)
	return l
}

// Current returns the loaded artifact or nil.
func (l *Loader) Current() *Artifact {
	return l.current.Load()
}

// Get returns the loaded artifact, loading it on first use.
func (l *Loader) Get(ctx context.Context) (*Artifact, error) {
	if a := l.current.Load(); a != nil {
		return a, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if a := l.current.Load(); a != nil {
		return a, nil
	}
	return l.load(ctx)
}

// Load (re)reads the artifact and swaps it in on success. On failure the
// previous artifact, if any, stays active.
func (l *Loader) Load(ctx context.Context) (*Artifact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Swap installs a and returns the previous artifact.
func (l *Loader) Swap(a *Artifact) *Artifact {
	old := l.current.Swap(a)
	if a == nil {
		metrics.SetArtifact(-1)
	} else {
		metrics.SetArtifact(a.Rows())
	}
	return old
}

// Health reports whether an artifact is loaded and its row count.
func (l *Loader) Health() (bool, int) {
	a := l.current.Load()
	if a == nil {
		return false, 0
	}
	return true, a.Rows()
}

func (l *Loader) load(ctx context.Context) (*Artifact, error) {
	a, err := l.breaker.Execute(func() (*Artifact, error) {
		a, err := l.read(ctx)
		if err != nil {
			l.lastErr.Store(&err)
		}
		return a, err
	})
	if err != nil {
		kind := failureKind(err)
		metrics.RecordArtifactLoadFailure(kind)
		if kind == "breaker_open" {
			if last := l.lastErr.Load(); last != nil {
				err = fmt.Errorf("%w (last failure: %w)", err, *last)
			}
		} else {
			logging.Error().Err(err).Str("path", l.cfg.Path).Str("kind", kind).Msg("artifact load failed")
		}
		return nil, err
	}
	l.Swap(a)
	logging.Info().Str("path", l.cfg.Path).Int("rows", a.Rows()).Int("vocab", a.Model.Len()).
		Msg("artifact loaded")
	if l.cfg.OnLoad != nil {
		l.cfg.OnLoad(a)
	}
	return a, nil
}

func (l *Loader) read(ctx context.Context) (*Artifact, error) {
	a, err := Load(l.cfg.Path)
	if err == nil || !errors.Is(err, ErrNotFound) || l.cfg.Fetcher == nil {
		return a, err
	}
	logging.Info().Str("url", l.cfg.Fetcher.URL()).Str("path", l.cfg.Path).
		Msg("artifact missing locally, fetching")
	return l.cfg.Fetcher.Fetch(ctx, l.cfg.Path)
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCorrupt):
		return "corrupt"
	default:
		return "fetch"
	}
}
