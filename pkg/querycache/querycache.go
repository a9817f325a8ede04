// Package querycache caches the results of keyed fetch functions.
//
// A [Query] binds a name and a comparable key to a fetch function. Results
// are stored JSON-encoded in a [Backend] under "<name>:<json key>", so one
// backend can be shared between processes. Concurrent fetches of the same
// key collapse into a single call.
package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/niksmo/storefront/pkg/clock"
	"golang.org/x/sync/singleflight"
)

var ErrCacheMiss = errors.New("cache miss")

type Backend interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; zero ttl means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type Client struct {
	backend Backend
	ttl     time.Duration
	clock   clock.Clock
	group   singleflight.Group
}

type Option func(*Client)

func WithBackend(b Backend) Option {
	return func(c *Client) {
		if b != nil {
			c.backend = b
		}
	}
}

// WithTTL sets how long results stay cached. Zero keeps them until
// invalidated.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.ttl = ttl
	}
}

func WithClock(clk clock.Clock) Option {
	return func(c *Client) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// NewClient returns a client backed by a [Memory] backend unless
// WithBackend says otherwise.
func NewClient(opts ...Option) *Client {
	c := &Client{clock: clock.NewRealClock()}
	for _, opt := range opts {
		opt(c)
	}
	if c.backend == nil {
		c.backend = NewMemory(c.clock)
	}
	return c
}

// Invalidate drops every cached key of the query name.
func (c *Client) Invalidate(ctx context.Context, name string) error {
	const op = "Client.Invalidate"
	if err := c.backend.DeletePrefix(ctx, name+":"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) InvalidateKey(ctx context.Context, name string, key any) error {
	const op = "Client.InvalidateKey"

	ck, err := CacheKey(name, key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.backend.Delete(ctx, ck); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CacheKey renders the backend key of a query name and key.
func CacheKey(name string, key any) (string, error) {
	b, err := json.Marshal(key)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte(':')
	sb.Write(b)
	return sb.String(), nil
}
