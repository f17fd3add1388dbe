package gateway

import "context"

// UseCase fans events published on Redis out to socket subscribers.
type UseCase interface {
	// Lifecycle
	Run()
	Shutdown(ctx context.Context) error

	// Connection Management
	Register(ctx context.Context, input ConnectionInput) error

	// Stats
	GetStats(ctx context.Context) HubStats

	// Message Processing (called by the Redis delivery)
	ProcessMessage(ctx context.Context, input ProcessMessageInput) error

	// Price replay for late joiners
	LastPrice() (CachedPrice, bool)
	RestorePrice(ctx context.Context, payload []byte) error
}
