// Package store keeps the bounded play history used to steer related-track suggestions.
package store

import (
	"net/url"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// History remembers the most recently played track URLs. The bloom filter short-circuits
// misses; the LRU is authoritative and evicts the oldest entry once size is exceeded.
// It satisfies core.History.
type History struct {
	mutex             sync.RWMutex
	bloom             *bloom.BloomFilter
	recent            *lru.Cache[string, struct{}]
	size              int
	falsePositiveRate float64
}

// NewHistory creates a history holding up to size URLs.
func NewHistory(size int, falsePositiveRate float64) *History {
	if size <= 0 || size > int(^uint(0)>>1) {
		panic("history size out of range")
	}
	recent, _ := lru.New[string, struct{}](size)

	return &History{
		bloom:             bloom.NewWithEstimates(uint(size), falsePositiveRate),
		recent:            recent,
		size:              size,
		falsePositiveRate: falsePositiveRate,
	}
}

// Add records url as played. Re-adding an URL refreshes it.
func (h *History) Add(trackURL string) {
	key := normalize(trackURL)
	if key == "" {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.bloom.AddString(key)
	h.recent.Add(key, struct{}{})
}

// Contains reports whether url was played recently.
func (h *History) Contains(trackURL string) bool {
	key := normalize(trackURL)
	if key == "" {
		return false
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if !h.bloom.TestString(key) {
		return false
	}
	return h.recent.Contains(key)
}

// Load replaces the history with urls, oldest first.
func (h *History) Load(urls []string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.reset()
	for _, u := range urls {
		if key := normalize(u); key != "" {
			h.bloom.AddString(key)
			h.recent.Add(key, struct{}{})
		}
	}
}

// Recent returns up to n URLs, most recently played first.
func (h *History) Recent(n int) []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	keys := h.recent.Keys()
	result := make([]string, 0, min(n, len(keys)))
	for i := len(keys) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, keys[i])
	}
	return result
}

// Len returns the number of URLs currently remembered.
func (h *History) Len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.recent.Len()
}

// Clear forgets everything.
func (h *History) Clear() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.reset()
}

// reset rebuilds the bloom filter, since entries cannot be removed from it.
func (h *History) reset() {
	h.bloom = bloom.NewWithEstimates(uint(h.size), h.falsePositiveRate)
	h.recent.Purge()
}

// normalize drops the query, fragment, trailing slash and mobile/www host prefixes so that
// the same track shared from different places maps to one key.
func normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	return "https://" + host + strings.TrimSuffix(u.Path, "/")
}
