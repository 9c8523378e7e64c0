package model

import (
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Market Data Types
// -----------------------------------------------------------------------------

// Quote is a point-in-time price observation for a symbol.
// Change and PercentChange are derived from CurrentPrice and PreviousClose.
type Quote struct {
	Symbol        string
	CurrentPrice  float64
	Change        float64 // CurrentPrice - PreviousClose, 0 when PreviousClose is unknown
	PercentChange float64 // Change / PreviousClose * 100, 0 when PreviousClose is unknown
	Open          float64
	High          float64
	Low           float64
	PreviousClose float64
	ObservedAt    time.Time
}

// Direction reports the sign of the change: 1 up, -1 down, 0 flat.
func (q Quote) Direction() int {
	switch {
	case q.Change > 0:
		return 1
	case q.Change < 0:
		return -1
	default:
		return 0
	}
}

// NewsItem is a company news article as returned by the provider.
type NewsItem struct {
	ID          string // Provider id, opaque
	Symbol      string
	Headline    string
	Summary     string // Optional
	Source      string
	URL         string
	PublishedAt time.Time
}

// -----------------------------------------------------------------------------
// Persisted Types
// -----------------------------------------------------------------------------

// SentNews records that a news item was delivered to a channel.
// (NewsID, ChannelID) is unique.
type SentNews struct {
	NewsID    string
	ChannelID string
	Symbol    string
	SentAt    time.Time
}

// NormalizeSymbol trims and uppercases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
