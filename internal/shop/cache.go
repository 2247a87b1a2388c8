package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// QuoteCache memoizes computed quotes in Redis. Keys carry the session
// revision, so a cart or promotion change naturally misses instead of
// serving a stale quote.
type QuoteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// QuoteKey builds the cache key for a session at a given revision.
func QuoteKey(sessionID string, revision uint64) string {
	return fmt.Sprintf("mart:quote:%s:%d", sessionID, revision)
}

// Get fetches a cached quote. The bool reports a hit; lookup errors are
// treated as misses so the cache never blocks quoting.
func (c *QuoteCache) Get(ctx context.Context, key string) (QuoteView, bool) {
	if c == nil || c.Client == nil {
		return QuoteView{}, false
	}
	raw, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		return QuoteView{}, false
	}
	var view QuoteView
	if err := json.Unmarshal(raw, &view); err != nil {
		return QuoteView{}, false
	}
	return view, true
}

// Set stores the quote under the given key.
func (c *QuoteCache) Set(ctx context.Context, key string, view QuoteView) error {
	if c == nil || c.Client == nil {
		return nil
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}
	if err := c.Client.Set(ctx, key, raw, c.TTL).Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("cache quote: %w", err)
	}
	return nil
}
