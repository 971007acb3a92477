package conversation

import (
	"context"
	"time"

	"careermate/internal/ai"
)

// Cache holds a disposable, TTL-bound copy of a conversation's ordered
// messages. It is never authoritative; the ledger is.
type Cache interface {
	// GetMessages returns (list, true, nil) on a hit. A miss is (nil, false, nil);
	// transport errors are returned so the caller can degrade to the ledger.
	GetMessages(ctx context.Context, conversationID string) ([]ai.Message, bool, error)
	SetMessages(ctx context.Context, conversationID string, messages []ai.Message, ttl time.Duration) error
	DeleteMessages(ctx context.Context, conversationID string) error
}

// Limiter gates operations with a fixed-window counter per key.
type Limiter interface {
	Allow(ctx context.Context, conversationID string, limit int, window time.Duration) (bool, error)
}
