// Package conncache amortizes expensive external-client construction across
// node executions that share a credential, bounding staleness with a TTL.
package conncache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/aiinpocket/n3n-core/logger"
	"go.uber.org/zap"
)

const DefaultTTL = 5 * time.Minute

// Cache keeps one live client per credential key. The get-or-create path is
// atomic per key: concurrent callers for the same key never both construct,
// and callers for unrelated keys are not serialized against each other.
type Cache[C any] struct {
	ttl    time.Duration
	closer func(C) error

	mu      sync.Mutex
	entries map[string]*entry[C]
}

type entry[C any] struct {
	mu        sync.Mutex
	client    C
	createdAt time.Time
	live      bool
}

// New builds a cache with the given TTL (DefaultTTL when ttl <= 0) and a
// best-effort closer invoked on every replaced or shut-down client.
func New[C any](ttl time.Duration, closer func(C) error) *Cache[C] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[C]{
		ttl:     ttl,
		closer:  closer,
		entries: make(map[string]*entry[C]),
	}
}

// GetOrCreate returns the cached client for key while it is fresh, otherwise
// invokes factory, closes the previous client, and stores the replacement.
// Factory errors propagate to the caller and are never cached; the next call
// retries construction.
func (c *Cache[C]) GetOrCreate(key string, factory func() (C, error)) (C, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry[C]{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.live && time.Since(e.createdAt) < c.ttl {
		return e.client, nil
	}

	client, err := factory()
	if err != nil {
		var zero C
		return zero, err
	}

	if e.live {
		c.close(key, e.client)
	}
	e.client = client
	e.createdAt = time.Now()
	e.live = true
	return client, nil
}

// Invalidate closes and drops the entry for key, if any.
func (c *Cache[C]) Invalidate(key string) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.live {
		c.close(key, e.client)
		e.live = false
	}
}

// Shutdown closes every live client. The cache stays usable afterwards but
// is expected to be discarded.
func (c *Cache[C]) Shutdown() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*entry[C])
	c.mu.Unlock()

	for key, e := range entries {
		e.mu.Lock()
		if e.live {
			c.close(key, e.client)
			e.live = false
		}
		e.mu.Unlock()
	}
}

func (c *Cache[C]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[C]) close(key string, client C) {
	if c.closer == nil {
		return
	}
	if err := c.closer(client); err != nil {
		logger.Warn("error closing cached client", zap.String("key", key), zap.Error(err))
	}
}

// Key builds a deterministic cache key from a credential's identifying
// fields (host, port, database, username and the like). Never pass raw
// secrets here; hash them with HashKey instead.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// HashKey derives a key component from a full connection URL or other
// secret-bearing string so the secret never appears as a map key.
func HashKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
