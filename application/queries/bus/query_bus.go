package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Query represents a read-only query
type Query interface {
	Validate() error
}

// QueryHandler handles a specific query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryHandlerFunc is an adapter to allow functions to be used as handlers
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// Middleware decorates a query handler
type Middleware func(next QueryHandler) QueryHandler

// QueryBus dispatches queries to their handlers
type QueryBus struct {
	handlers    map[reflect.Type]QueryHandler
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewQueryBus creates a new query bus. Middlewares wrap every handler
// registered afterwards, the first one outermost.
func NewQueryBus(middlewares ...Middleware) *QueryBus {
	return &QueryBus{
		handlers:    make(map[reflect.Type]QueryHandler),
		middlewares: middlewares,
	}
}

// Register registers a handler for a query type
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}

	for i := len(b.middlewares) - 1; i >= 0; i-- {
		handler = b.middlewares[i](handler)
	}
	b.handlers[t] = handler
	return nil
}

// Ask dispatches a query to its handler and returns the result
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("query validation failed: %w", err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("no handler registered for query type %T", query)
	}

	result, err := handler.Handle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query handler failed: %w", err)
	}
	return result, nil
}

// LoggingMiddleware logs failed queries
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			result, err := next.Handle(ctx, query)
			if err != nil {
				logger.Warn("Query failed",
					zap.String("type", reflect.TypeOf(query).Name()),
					zap.Error(err))
			}
			return result, err
		})
	}
}

// Recorder receives one observation per dispatched query
type Recorder interface {
	ObserveOperation(kind, name string, started time.Time, err error)
}

// MetricsMiddleware records query counts and latency
func MetricsMiddleware(recorder Recorder) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			start := time.Now()
			result, err := next.Handle(ctx, query)
			recorder.ObserveOperation("query", reflect.TypeOf(query).Name(), start, err)
			return result, err
		})
	}
}

// Cache is the store used by CachingMiddleware
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Cacheable queries opt into caching by naming their cache key
type Cacheable interface {
	CacheKey() string
}

// HitRecorder counts cache hits and misses
type HitRecorder interface {
	CacheHit()
	CacheMiss()
}

// CachingMiddleware serves Cacheable queries from cache. Other queries pass
// straight through. A ttl of zero or less turns caching off.
func CachingMiddleware(cache Cache, ttl time.Duration, hits HitRecorder) Middleware {
	return func(next QueryHandler) QueryHandler {
		if ttl <= 0 {
			return next
		}
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			c, ok := query.(Cacheable)
			if !ok {
				return next.Handle(ctx, query)
			}

			key := c.CacheKey()
			if cached, found := cache.Get(ctx, key); found {
				if hits != nil {
					hits.CacheHit()
				}
				return cached, nil
			}
			if hits != nil {
				hits.CacheMiss()
			}

			result, err := next.Handle(ctx, query)
			if err != nil {
				return nil, err
			}
			_ = cache.Set(ctx, key, result, ttl)
			return result, nil
		})
	}
}
