package detail

import (
	"context"
	"fmt"
	"slices"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/profdiff/internal/engine"
	"github.com/rshade/profdiff/internal/logging"
)

// Fetcher loads the detail rows of one parent key.
type Fetcher func(ctx context.Context, key string) ([]engine.DetailRow, error)

// LoadedMsg reports the outcome of one detail fetch. It is produced by the
// command returned from Toggle or Expand.
type LoadedMsg struct {
	Scope      string
	Key        string
	Generation uint64
	Rows       []engine.DetailRow
	Err        error
}

// Cache lazily resolves and caches detail rows per parent key, and tracks
// which keys are expanded and which have a fetch in flight.
//
// All methods are safe for concurrent use.
type Cache struct {
	mu sync.Mutex

	ctx   context.Context
	scope string
	fetch Fetcher

	generation uint64
	expanded   map[string]bool
	entries    map[string][]engine.DetailRow
	loading    map[string]bool
}

// NewCache creates an empty cache. scope identifies the cache in LoadedMsg so
// a model holding several caches can route completions; ctx is passed to
// fetches started by Toggle and Expand.
func NewCache(ctx context.Context, scope string, fetch Fetcher) *Cache {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Cache{
		ctx:      ctx,
		scope:    scope,
		fetch:    fetch,
		expanded: make(map[string]bool),
		entries:  make(map[string][]engine.DetailRow),
		loading:  make(map[string]bool),
	}
}

// Scope returns the scope the cache was created with.
func (c *Cache) Scope() string {
	return c.scope
}

// Generation returns the current cache generation.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Toggle collapses an expanded key, or expands a collapsed one. Expanding a
// key with no cached detail and no fetch in flight returns the fetch command;
// every other transition returns nil.
func (c *Cache) Toggle(key string) tea.Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expanded[key] {
		delete(c.expanded, key)
		return nil
	}
	c.expanded[key] = true
	return c.dispatchLocked(key)
}

// Expand expands key if it is collapsed. It returns the fetch command under
// the same rule as Toggle.
func (c *Cache) Expand(key string) tea.Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expanded[key] = true
	return c.dispatchLocked(key)
}

// Collapse collapses key. Cached detail is kept.
func (c *Cache) Collapse(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.expanded, key)
}

// dispatchLocked marks key as loading and returns the fetch command, or nil
// when the key is cached or already loading. c.mu must be held.
func (c *Cache) dispatchLocked(key string) tea.Cmd {
	if _, cached := c.entries[key]; cached || c.loading[key] {
		return nil
	}
	c.loading[key] = true

	ctx, gen, scope, fetch := c.ctx, c.generation, c.scope, c.fetch
	return func() tea.Msg {
		return runFetch(ctx, fetch, scope, gen, key)
	}
}

// Complete applies a LoadedMsg. It returns false when the message belongs to
// another cache or an older generation; such messages change nothing.
//
// A failed fetch is logged and cached as an empty result. The loading flag is
// cleared after the entry is stored.
func (c *Cache) Complete(msg LoadedMsg) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg.Scope != c.scope || msg.Generation != c.generation {
		return false
	}

	rows := msg.Rows
	if msg.Err != nil {
		logger := logging.FromContext(c.ctx).With().
			Str("component", "detail").
			Str("operation", "Complete").
			Logger()
		logger.Warn().Ctx(c.ctx).
			Err(msg.Err).
			Str("scope", c.scope).
			Str("key", msg.Key).
			Msg("detail fetch failed, showing empty detail")
		rows = nil
	}
	if rows == nil {
		rows = []engine.DetailRow{}
	}

	c.entries[msg.Key] = rows
	delete(c.loading, msg.Key)
	return true
}

// Resolve expands key and returns its detail, fetching synchronously with ctx
// when nothing is cached or in flight. If another fetch for key is still
// running, the current (empty) detail is returned.
func (c *Cache) Resolve(ctx context.Context, key string) []engine.DetailRow {
	c.mu.Lock()
	c.expanded[key] = true
	if _, cached := c.entries[key]; cached || c.loading[key] {
		c.mu.Unlock()
		return c.DetailFor(key)
	}
	c.loading[key] = true
	gen, scope, fetch := c.generation, c.scope, c.fetch
	c.mu.Unlock()

	c.Complete(runFetch(ctx, fetch, scope, gen, key))
	return c.DetailFor(key)
}

// IsExpanded reports whether key is expanded.
func (c *Cache) IsExpanded(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded[key]
}

// IsLoading reports whether a fetch for key is in flight.
func (c *Cache) IsLoading(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading[key]
}

// IsLoaded reports whether key has a cache entry, which may be empty.
func (c *Cache) IsLoaded(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// DetailFor returns a copy of the cached detail of key. It is empty, never
// nil, when nothing is cached.
func (c *Cache) DetailFor(key string) []engine.DetailRow {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, ok := c.entries[key]
	if !ok {
		return []engine.DetailRow{}
	}
	return slices.Clone(rows)
}

// Reset clears expansion, cached detail and loading state and starts a new
// generation.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
}

// Rebind resets the cache and replaces its fetcher in one step, so the first
// fetch of the new generation already uses fetch.
func (c *Cache) Rebind(fetch Fetcher) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.fetch = fetch
}

func (c *Cache) resetLocked() {
	c.generation++
	clear(c.expanded)
	clear(c.entries)
	clear(c.loading)
}

func runFetch(ctx context.Context, fetch Fetcher, scope string, gen uint64, key string) (msg LoadedMsg) {
	msg = LoadedMsg{Scope: scope, Key: key, Generation: gen}
	defer func() {
		if r := recover(); r != nil {
			msg.Rows = nil
			msg.Err = fmt.Errorf("detail fetch for %q panicked: %v", key, r)
		}
	}()

	if fetch == nil {
		msg.Err = fmt.Errorf("no detail fetcher for %q", scope)
		return msg
	}
	msg.Rows, msg.Err = fetch(ctx, key)
	return msg
}
