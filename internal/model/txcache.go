package model

import "encoding/json"

// DefaultTxCacheLimit bounds the idempotency cache when no limit is
// configured.
const DefaultTxCacheLimit = 10000

// TxCacheEntry is one cached response. Body holds the exact bytes written to
// the client at first execution so a replay is byte-for-byte identical.
type TxCacheEntry struct {
	TxID       string          `json:"txId"`
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

// TxCache is a bounded, insertion-ordered idempotency cache keyed by txId.
// Eviction is strict FIFO. The cache is persisted inside the snapshot as a
// plain entry array; the limit is an engine setting reapplied on restore.
type TxCache struct {
	limit   int
	entries []TxCacheEntry
	index   map[string]int
}

// NewTxCache returns an empty cache. A non-positive limit falls back to
// DefaultTxCacheLimit.
func NewTxCache(limit int) *TxCache {
	if limit <= 0 {
		limit = DefaultTxCacheLimit
	}
	return &TxCache{limit: limit, index: make(map[string]int)}
}

// Limit returns the configured bound.
func (c *TxCache) Limit() int { return c.limit }

// SetLimit reapplies an engine-configured bound after restore and evicts
// down to it.
func (c *TxCache) SetLimit(limit int) {
	if limit <= 0 {
		limit = DefaultTxCacheLimit
	}
	c.limit = limit
	c.evict()
}

// Len returns the number of cached responses.
func (c *TxCache) Len() int { return len(c.entries) }

// Lookup returns the cached response for txID, if any.
func (c *TxCache) Lookup(txID string) (TxCacheEntry, bool) {
	i, ok := c.index[txID]
	if !ok {
		return TxCacheEntry{}, false
	}
	return c.entries[i], true
}

// Record stores a response under txID. The first recorded response wins;
// recording an already-present txID is a no-op. Exceeding the bound evicts
// the oldest entries.
func (c *TxCache) Record(txID string, statusCode int, body []byte) {
	if _, ok := c.index[txID]; ok {
		return
	}
	c.entries = append(c.entries, TxCacheEntry{
		TxID:       txID,
		StatusCode: statusCode,
		Body:       append(json.RawMessage(nil), body...),
	})
	c.index[txID] = len(c.entries) - 1
	c.evict()
}

func (c *TxCache) evict() {
	if len(c.entries) <= c.limit {
		return
	}
	drop := len(c.entries) - c.limit
	for _, e := range c.entries[:drop] {
		delete(c.index, e.TxID)
	}
	c.entries = append([]TxCacheEntry(nil), c.entries[drop:]...)
	for i, e := range c.entries {
		c.index[e.TxID] = i
	}
}

// Clone returns a deep copy preserving order and limit.
func (c *TxCache) Clone() *TxCache {
	if c == nil {
		return nil
	}
	out := NewTxCache(c.limit)
	for _, e := range c.entries {
		out.entries = append(out.entries, TxCacheEntry{
			TxID:       e.TxID,
			StatusCode: e.StatusCode,
			Body:       append(json.RawMessage(nil), e.Body...),
		})
		out.index[e.TxID] = len(out.entries) - 1
	}
	return out
}

// MarshalJSON encodes the cache as its ordered entry array.
func (c *TxCache) MarshalJSON() ([]byte, error) {
	if c.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.entries)
}

// UnmarshalJSON decodes an entry array and rebuilds the lookup index. The
// limit is restored to the default; the world registry reapplies the
// configured bound after decoding.
func (c *TxCache) UnmarshalJSON(data []byte) error {
	var entries []TxCacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	c.limit = DefaultTxCacheLimit
	c.entries = entries
	c.index = make(map[string]int, len(entries))
	for i, e := range entries {
		c.index[e.TxID] = i
	}
	return nil
}
