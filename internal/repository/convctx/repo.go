// Package convctx persists per-conversation dialogue context in the
// key-value store.
package convctx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nuvet/searchdialog/internal/db"
	"github.com/nuvet/searchdialog/internal/domain/turn"
)

// DefaultTTL is how long an idle conversation context survives. The TTL
// slides: every read and write pushes it out again.
const DefaultTTL = 24 * time.Hour

// store is the consumer interface for context persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Repo stores conversation contexts as JSON blobs under a key prefix.
type Repo struct {
	store     store
	keyPrefix string
	ttl       time.Duration
}

// New creates a context repository. An empty keyPrefix defaults to
// "dialog:ctx:" and a zero ttl to DefaultTTL.
func New(s store, keyPrefix string, ttl time.Duration) *Repo {
	if keyPrefix == "" {
		keyPrefix = "dialog:ctx:"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repo{store: s, keyPrefix: keyPrefix, ttl: ttl}
}

// Get loads the context for a conversation. A conversation that was never
// seen, or whose context expired, yields a zero context and no error.
func (r *Repo) Get(ctx context.Context, conversationID string) (turn.Context, error) {
	key := r.key(conversationID)
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return turn.Context{}, nil
		}
		return turn.Context{}, fmt.Errorf("context GET %s: %w", key, err)
	}

	var state turn.Context
	if err := json.Unmarshal(data, &state); err != nil {
		// a corrupt blob must not wedge the conversation
		return turn.Context{}, fmt.Errorf("context decode %s: %w", key, err)
	}

	// reading keeps the conversation alive
	if err := r.store.Expire(ctx, key, r.ttl, false); err != nil {
		return state, fmt.Errorf("context EXPIRE %s: %w", key, err)
	}
	return state, nil
}

// Put stores the context and restarts its TTL.
func (r *Repo) Put(ctx context.Context, conversationID string, state turn.Context) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("context encode: %w", err)
	}
	key := r.key(conversationID)
	if err := r.store.SetWithTTL(ctx, key, data, r.ttl); err != nil {
		return fmt.Errorf("context SET %s: %w", key, err)
	}
	return nil
}

// Delete discards the context, restarting the conversation from scratch.
func (r *Repo) Delete(ctx context.Context, conversationID string) error {
	key := r.key(conversationID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("context DEL %s: %w", key, err)
	}
	return nil
}

func (r *Repo) key(conversationID string) string {
	return r.keyPrefix + conversationID
}
