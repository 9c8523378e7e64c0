package sentnews

import (
	"context"
	"errors"
	"time"
)

// Outcome is the result of RecordSent.
type Outcome int

const (
	Recorded Outcome = iota
	Duplicate
)

func (o Outcome) String() string {
	if o == Recorded {
		return "recorded"
	}
	return "duplicate"
}

// ErrInvalidKey is returned when news_id or channel_id is empty.
var ErrInvalidKey = errors.New("news id and channel id are required")

// Store persists sent-news records.
type Store interface {
	// Init creates the backing schema. Safe to call repeatedly.
	Init(ctx context.Context) error

	// WasSent reports whether newsID was already delivered to channelID.
	WasSent(ctx context.Context, newsID, channelID string) (bool, error)

	// RecordSent inserts the record or reports Duplicate if the
	// (newsID, channelID) key already exists.
	RecordSent(ctx context.Context, newsID, symbol, channelID string) (Outcome, error)

	// EvictOlderThan deletes records whose sent_at precedes now - retention
	// and returns how many were removed.
	EvictOlderThan(ctx context.Context, retention time.Duration) (int64, error)

	// Ping checks the backing connection.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Clock returns the current time. Drivers use it to stamp sent_at and
// compute eviction cutoffs.
type Clock func() time.Time

func validateKey(newsID, channelID string) error {
	if newsID == "" || channelID == "" {
		return ErrInvalidKey
	}
	return nil
}
