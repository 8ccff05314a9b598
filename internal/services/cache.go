package services

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Memo is an unbounded process-lifetime memo. A miss runs load once per key
// even under concurrent callers; failed loads are not stored.
type Memo[K interface {
	comparable
	fmt.Stringer
}, V any] struct {
	mu      sync.Mutex
	entries map[K]V
	group   singleflight.Group
}

func NewMemo[K interface {
	comparable
	fmt.Stringer
}, V any]() *Memo[K, V] {
	return &Memo[K, V]{entries: make(map[K]V)}
}

func (m *Memo[K, V]) lookup(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

// Get returns the stored value for key, calling load on a miss.
func (m *Memo[K, V]) Get(key K, load func() (V, error)) (V, error) {
	if v, ok := m.lookup(key); ok {
		return v, nil
	}

	res, err, _ := m.group.Do(key.String(), func() (interface{}, error) {
		// A load that finished between lookup and Do has already stored its value.
		if v, ok := m.lookup(key); ok {
			return v, nil
		}

		v, err := load()
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.entries[key] = v
		m.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return res.(V), nil
}

func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// CacheKey identifies one LLM completion.
type CacheKey struct {
	Model       string
	Temperature float32
	Seed        int32
	Prompt      string
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s\x00%g\x00%d\x00%s", k.Model, k.Temperature, k.Seed, k.Prompt)
}

type embeddingKey struct {
	Model string
	Text  string
}

func (k embeddingKey) String() string {
	return k.Model + "\x00" + k.Text
}
