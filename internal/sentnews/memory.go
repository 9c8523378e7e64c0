package sentnews

import (
	"context"
	"sync"
	"time"

	"github.com/rickgao/tickerwatch/internal/model"
)

type memKey struct {
	newsID    string
	channelID string
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	records map[memKey]model.SentNews
	now     Clock
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. A nil clock uses time.Now.
func NewMemoryStore(now Clock) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		records: make(map[memKey]model.SentNews),
		now:     now,
	}
}

func (s *MemoryStore) Init(ctx context.Context) error { return nil }

func (s *MemoryStore) WasSent(ctx context.Context, newsID, channelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.records[memKey{newsID, channelID}]
	return ok, nil
}

func (s *MemoryStore) RecordSent(ctx context.Context, newsID, symbol, channelID string) (Outcome, error) {
	if err := validateKey(newsID, channelID); err != nil {
		return Duplicate, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := memKey{newsID, channelID}
	if _, ok := s.records[key]; ok {
		return Duplicate, nil
	}
	s.records[key] = model.SentNews{
		NewsID:    newsID,
		ChannelID: channelID,
		Symbol:    symbol,
		SentAt:    s.now(),
	}
	return Recorded, nil
}

func (s *MemoryStore) EvictOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, rec := range s.records {
		if rec.SentAt.Before(cutoff) {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
