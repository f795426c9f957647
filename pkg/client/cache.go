package client

import (
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
)

const (
	entityPrefix = "Laptop:"
	listPrefix   = "laptops:"
)

// listEntry is a cached listing: references into the entity table, not copies.
type listEntry struct {
	IDs        []string
	TotalCount int
	seq        uint64
}

// normalizedCache stores each laptop once, keyed by id, and lists as id slices
// keyed by their variables. List writes are sequenced so that a response to
// an older request never replaces a newer one.
type normalizedCache struct {
	store *gocache.Cache

	mu sync.Mutex
	// next is the last issued request sequence number.
	next uint64
	// invalidatedAt discards list responses to requests issued before the last invalidation.
	invalidatedAt uint64
}

func newNormalizedCache(ttl time.Duration) *normalizedCache {
	return &normalizedCache{store: gocache.New(ttl, 2*ttl)}
}

func entityKey(id string) string {
	return entityPrefix + id
}

func listKey(vars ListVariables) string {
	raw, _ := json.Marshal(vars)
	return listPrefix + string(raw)
}

// begin issues the sequence number for a new list request.
func (c *normalizedCache) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	return c.next
}

func (c *normalizedCache) laptop(id string) (Laptop, bool) {
	v, ok := c.store.Get(entityKey(id))
	if !ok {
		return Laptop{}, false
	}
	return v.(Laptop), true
}

func (c *normalizedCache) putLaptop(l Laptop) {
	c.store.SetDefault(entityKey(l.ID), l)
}

func (c *normalizedCache) evictLaptop(id string) {
	c.store.Delete(entityKey(id))
}

// page rebuilds a cached list. A list whose entities were evicted is a miss.
func (c *normalizedCache) page(vars ListVariables) (*LaptopPage, bool) {
	v, ok := c.store.Get(listKey(vars))
	if !ok {
		return nil, false
	}
	entry := v.(listEntry)
	out := &LaptopPage{TotalCount: entry.TotalCount, Laptops: make([]Laptop, 0, len(entry.IDs))}
	for _, id := range entry.IDs {
		l, ok := c.laptop(id)
		if !ok {
			return nil, false
		}
		out.Laptops = append(out.Laptops, l)
	}
	return out, true
}

// putPage stores a list response issued with sequence number seq and reports
// whether it was kept.
func (c *normalizedCache) putPage(vars ListVariables, seq uint64, page *LaptopPage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq <= c.invalidatedAt {
		return false
	}
	key := listKey(vars)
	if v, ok := c.store.Get(key); ok && v.(listEntry).seq > seq {
		return false
	}

	entry := listEntry{IDs: make([]string, len(page.Laptops)), TotalCount: page.TotalCount, seq: seq}
	for i, l := range page.Laptops {
		entry.IDs[i] = l.ID
		c.putLaptop(l)
	}
	c.store.SetDefault(key, entry)
	return true
}

// invalidateLists drops every cached list and every in-flight list response.
func (c *normalizedCache) invalidateLists() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invalidatedAt = c.next
	for key := range c.store.Items() {
		if strings.HasPrefix(key, listPrefix) {
			c.store.Delete(key)
		}
	}
}

func (c *normalizedCache) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidatedAt = c.next
	c.store.Flush()
}
