package countdown

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/render"
)

// Target is a registered countdown.
type Target struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
}

// Registry owns the live countdown targets of one page and the ticker that
// refreshes them.
type Registry struct {
	mu      sync.Mutex
	targets map[string]time.Time
	out     render.Target
	now     func() time.Time

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRegistry creates an empty registry drawing on out. A nil clock means
// time.Now.
func NewRegistry(out render.Target, clock func() time.Time) *Registry {
	if clock == nil {
		clock = time.Now
	}
	return &Registry{
		targets: make(map[string]time.Time),
		out:     out,
		now:     clock,
	}
}

// Clear drops every target.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = make(map[string]time.Time)
}

// Register adds or replaces a target and renders it right away.
func (r *Registry) Register(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[id] = at
	r.render(id, at, r.now())
}

// Tick re-renders every target against now.
func (r *Registry) Tick(now time.Time) {
	r.mu.Lock()
	for id, at := range r.targets {
		r.render(id, at, now)
	}
	r.mu.Unlock()

	if f, ok := r.out.(render.Flusher); ok {
		if err := f.Flush(); err != nil {
			log.Error().Err(err).Msg("failed to flush countdown")
		}
	}
}

// render must be called with mu held.
func (r *Registry) render(id string, at, now time.Time) {
	err := r.out.SetText(SlotID(id), FormatRemaining(at.Sub(now)))
	if err != nil && !errors.Is(err, render.ErrNoElement) {
		log.Error().Err(err).Str("countdown", id).Msg("failed to render countdown")
	}
}

// Targets returns the registered targets ordered by instant.
func (r *Registry) Targets() []Target {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Target, 0, len(r.targets))
	for id, at := range r.targets {
		out = append(out, Target{ID: id, At: at})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].ID < out[j].ID
		}
		return out[i].At.Before(out[j].At)
	})
	return out
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.targets)
}

// Start launches the refresh ticker. Only the first call has an effect; the
// ticker runs until ctx is done or Stop is called. A non-positive interval
// means one second.
func (r *Registry) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	r.once.Do(func() {
		ctx, r.cancel = context.WithCancel(ctx)
		r.done = make(chan struct{})

		go func() {
			defer close(r.done)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					r.Tick(r.now())
				}
			}
		}()
	})
}

// Stop halts the ticker and waits for it to exit.
func (r *Registry) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}
