package cache

import (
	"context"
	"sync"
	"time"
)

// Entry records a stored variant so that later resizes of the same source
// and configuration can skip the work.
type Entry struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Path   string `json:"path,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Adapter 缓存适配器接口
type Adapter interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Set stores e under key. A zero ttl keeps the entry until deleted.
	Set(ctx context.Context, key string, e Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MemoryAdapter 简单的内存缓存适配器
type MemoryAdapter struct {
	cache map[string]*cacheItem
	mu    sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

type cacheItem struct {
	value     Entry
	expiresAt time.Time
}

func (i *cacheItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// NewMemoryAdapter 创建内存缓存适配器
func NewMemoryAdapter() *MemoryAdapter {
	adapter := &MemoryAdapter{
		cache: make(map[string]*cacheItem),
		stop:  make(chan struct{}),
	}

	// 启动后台清理过期缓存
	go adapter.cleanupExpired(5 * time.Minute)

	return adapter
}

// Get 获取缓存
func (c *MemoryAdapter) Get(ctx context.Context, key string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.cache[key]
	if !exists || item.expired(time.Now()) {
		return Entry{}, false, nil
	}
	return item.value, true, nil
}

// Set 设置缓存
func (c *MemoryAdapter) Set(ctx context.Context, key string, e Entry, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem{value: e}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}
	c.cache[key] = item
	return nil
}

// Delete 删除缓存
func (c *MemoryAdapter) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, key)
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *MemoryAdapter) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Close stops the cleanup goroutine.
func (c *MemoryAdapter) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

// cleanupExpired 定期清理过期缓存
func (c *MemoryAdapter) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.removeExpired(now)
		}
	}
}

func (c *MemoryAdapter) removeExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, item := range c.cache {
		if item.expired(now) {
			delete(c.cache, key)
		}
	}
}

// NopAdapter never stores anything.
type NopAdapter struct{}

func (NopAdapter) Get(context.Context, string) (Entry, bool, error)         { return Entry{}, false, nil }
func (NopAdapter) Set(context.Context, string, Entry, time.Duration) error { return nil }
func (NopAdapter) Delete(context.Context, string) error                    { return nil }

var (
	_ Adapter = (*MemoryAdapter)(nil)
	_ Adapter = NopAdapter{}
)
