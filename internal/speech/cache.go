package speech

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cached wraps a Synthesizer and keeps the most recently used audio clips.
type Cached struct {
	next     Synthesizer
	voice    string
	capacity int

	mu    sync.Mutex
	order *list.List // front is most recently used
	items map[string]*list.Element
}

type cacheItem struct {
	key   string
	audio []byte
}

// NewCached caches up to capacity clips. voice distinguishes keys produced
// with different voice settings.
func NewCached(next Synthesizer, voice string, capacity int) *Cached {
	return &Cached{
		next:     next,
		voice:    voice,
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (c *Cached) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	key := c.key(text, locale)

	if audio, ok := c.get(key); ok {
		return audio, nil
	}

	audio, err := c.next.Synthesize(ctx, text, locale)
	if err != nil {
		return nil, err
	}

	c.put(key, audio)
	return audio, nil
}

// Len returns the number of cached clips.
func (c *Cached) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cached) key(text, locale string) string {
	sum := sha256.Sum256([]byte(c.voice + "\x00" + locale + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func (c *Cached) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheItem).audio, true
}

func (c *Cached) put(key string, audio []byte) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheItem).audio = audio
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&cacheItem{key: key, audio: audio})

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheItem).key)
	}
}
