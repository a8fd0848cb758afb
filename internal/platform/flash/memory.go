package flash

import (
	"context"
	"sync"
	"time"
)

type memoryQueue struct {
	messages []Message
	expires  time.Time
}

// MemoryStore keeps messages in process. Used when no redis is configured.
type MemoryStore struct {
	mu     sync.Mutex
	queues map[string]*memoryQueue
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryStore creates an in-memory store with the default TTL
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithTTL(DefaultTTL)
}

// NewMemoryStoreWithTTL creates an in-memory store with a custom TTL
func NewMemoryStoreWithTTL(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		queues: make(map[string]*memoryQueue),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Push appends msg to the queue and refreshes its expiry
func (s *MemoryStore) Push(_ context.Context, key string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	q, ok := s.queues[key]
	if !ok || now.After(q.expires) {
		q = &memoryQueue{}
		s.queues[key] = q
	}
	q.messages = append(q.messages, msg)
	q.expires = now.Add(s.ttl)
	return nil
}

// Pop returns and removes all unexpired messages for key
func (s *MemoryStore) Pop(_ context.Context, key string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queues[key]
	delete(s.queues, key)
	if !ok || s.now().After(q.expires) {
		return nil, nil
	}
	return q.messages, nil
}

// Sweep drops expired queues
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, q := range s.queues {
		if now.After(q.expires) {
			delete(s.queues, key)
			removed++
		}
	}
	return removed
}
