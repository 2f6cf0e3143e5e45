package ports

import (
	"context"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

// EventPublisher publishes map events to a message broker.
type EventPublisher interface {
	PublishMapReady(ctx context.Context, doc *domain.MapDocument) error
	PublishResult(ctx context.Context, result *domain.MapResult) error
}

// MapRequestHandler processes one map request and returns its result.
type MapRequestHandler func(ctx context.Context, req *domain.MapRequest) (*domain.MapResult, error)

// EventSubscriber consumes map requests from a message broker.
type EventSubscriber interface {
	SubscribeMapRequests(ctx context.Context, handler MapRequestHandler) error
	SubscribeMapReady(ctx context.Context, handler func(ctx context.Context, doc *domain.MapDocument) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
