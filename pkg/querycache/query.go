package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// A State is a snapshot of a query. Data keeps the last successful result
// of the current key when a later fetch fails.
type State[T any] struct {
	Status    Status
	Data      T
	Err       error
	UpdatedAt time.Time
}

func (s State[T]) IsLoading() bool {
	return s.Status == StatusLoading
}

type FetchFunc[K comparable, T any] func(ctx context.Context, key K) (T, error)

type Query[K comparable, T any] struct {
	client *Client
	name   string
	fetch  FetchFunc[K, T]

	mu     sync.Mutex
	key    K
	state  State[T]
	subs   map[int]func(State[T])
	nextID int
}

func NewQuery[K comparable, T any](
	c *Client, name string, key K, fetch FetchFunc[K, T],
) *Query[K, T] {
	return &Query[K, T]{
		client: c,
		name:   name,
		fetch:  fetch,
		key:    key,
		subs:   make(map[int]func(State[T])),
	}
}

func (q *Query[K, T]) Name() string {
	return q.name
}

func (q *Query[K, T]) Key() K {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.key
}

func (q *Query[K, T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Subscribe registers fn for every state change. The returned func
// removes it.
func (q *Query[K, T]) Subscribe(fn func(State[T])) (cancel func()) {
	q.mu.Lock()
	id := q.nextID
	q.nextID++
	q.subs[id] = fn
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.subs, id)
		q.mu.Unlock()
	}
}

// Fetch returns the cached result of the current key, calling the fetch
// function only on a cache miss.
func (q *Query[K, T]) Fetch(ctx context.Context) (T, error) {
	return q.load(ctx, q.Key(), true)
}

// Refetch bypasses the cache and stores the fresh result.
func (q *Query[K, T]) Refetch(ctx context.Context) (T, error) {
	return q.load(ctx, q.Key(), false)
}

// SetKey switches the query to key. A changed key resets the state and
// fetches again; an unchanged key behaves like Fetch.
func (q *Query[K, T]) SetKey(ctx context.Context, key K) (T, error) {
	q.mu.Lock()
	if q.key != key {
		q.key = key
		q.state = State[T]{}
	}
	q.mu.Unlock()

	return q.load(ctx, key, true)
}

func (q *Query[K, T]) load(ctx context.Context, key K, useCache bool) (T, error) {
	const op = "Query.load"
	var zero T

	cacheKey, err := CacheKey(q.name, key)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	if useCache {
		if v, ok := q.lookup(ctx, cacheKey); ok {
			q.update(key, func(s *State[T]) {
				s.Status = StatusSuccess
				s.Data = v
				s.Err = nil
				if s.UpdatedAt.IsZero() {
					s.UpdatedAt = q.client.clock.Now()
				}
			})
			return v, nil
		}
	}

	q.update(key, func(s *State[T]) {
		s.Status = StatusLoading
		s.Err = nil
	})

	v, err := q.run(ctx, key, cacheKey)
	if err != nil {
		q.update(key, func(s *State[T]) {
			s.Status = StatusError
			s.Err = err
		})
		return zero, err
	}

	q.update(key, func(s *State[T]) {
		s.Status = StatusSuccess
		s.Data = v
		s.Err = nil
		s.UpdatedAt = q.client.clock.Now()
	})
	return v, nil
}

func (q *Query[K, T]) lookup(ctx context.Context, cacheKey string) (T, bool) {
	const op = "Query.lookup"
	var v T

	b, err := q.client.backend.Get(ctx, cacheKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			slog.Warn("cache read failed", "op", op, "key", cacheKey, "err", err)
		}
		return v, false
	}

	if err := json.Unmarshal(b, &v); err != nil {
		slog.Warn("cache entry is corrupted", "op", op, "key", cacheKey, "err", err)
		return v, false
	}
	return v, true
}

// run collapses concurrent fetches of cacheKey into one call. The shared
// call is detached from the caller's cancellation; each caller stops
// waiting when its own ctx is done.
func (q *Query[K, T]) run(ctx context.Context, key K, cacheKey string) (T, error) {
	const op = "Query.run"
	var zero T

	ch := q.client.group.DoChan(cacheKey, func() (any, error) {
		sharedCtx := context.WithoutCancel(ctx)
		v, err := q.fetch(sharedCtx, key)
		if err != nil {
			return nil, err
		}
		q.store(sharedCtx, cacheKey, v)
		return v, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return zero, res.Err
	}

	v, ok := res.Val.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", op, res.Val)
	}
	return v, nil
}

func (q *Query[K, T]) store(ctx context.Context, cacheKey string, v T) {
	const op = "Query.store"
	log := slog.With("op", op, "key", cacheKey)

	b, err := json.Marshal(v)
	if err != nil {
		log.Warn("failed to encode result", "err", err)
		return
	}
	if err := q.client.backend.Set(ctx, cacheKey, b, q.client.ttl); err != nil {
		log.Warn("failed to write cache", "err", err)
	}
}

// update applies fn when the query still points at key, then notifies
// subscribers outside the lock.
func (q *Query[K, T]) update(key K, fn func(*State[T])) {
	q.mu.Lock()
	if q.key != key {
		q.mu.Unlock()
		return
	}
	fn(&q.state)
	s := q.state
	subs := make([]func(State[T]), 0, len(q.subs))
	for _, sub := range q.subs {
		subs = append(subs, sub)
	}
	q.mu.Unlock()

	for _, sub := range subs {
		sub(s)
	}
}
