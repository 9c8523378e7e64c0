package subscription

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/rickgao/tickerwatch/internal/model"
)

// ErrInvalidSymbol is returned for blank symbols.
var ErrInvalidSymbol = errors.New("invalid symbol")

// SubscribeResult is the outcome of Subscribe.
type SubscribeResult int

const (
	Added SubscribeResult = iota
	AlreadyPresent
)

func (r SubscribeResult) String() string {
	if r == Added {
		return "added"
	}
	return "already_present"
}

// UnsubscribeResult is the outcome of Unsubscribe.
type UnsubscribeResult int

const (
	Removed UnsubscribeResult = iota
	NotFound
)

func (r UnsubscribeResult) String() string {
	if r == Removed {
		return "removed"
	}
	return "not_found"
}

// Stats summarizes registry contents.
type Stats struct {
	Channels int `json:"channels"`
	Symbols  int `json:"symbols"`
}

// Registry holds the thread-safe channel -> symbols mapping.
type Registry struct {
	mu sync.RWMutex

	// Symbols tracked per channel. No entry maps to an empty set.
	channels map[string]map[string]struct{}

	// Reverse index: channels per symbol. Kept in step with channels.
	symbols map[string]map[string]struct{}

	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		channels: make(map[string]map[string]struct{}),
		symbols:  make(map[string]map[string]struct{}),
		logger:   logger,
	}
}

// Subscribe adds symbol to the channel's set. Idempotent.
func (r *Registry) Subscribe(channelID, symbol string) (SubscribeResult, error) {
	symbol = model.NormalizeSymbol(symbol)
	if symbol == "" {
		return AlreadyPresent, ErrInvalidSymbol
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.channels[channelID]
	if !ok {
		set = make(map[string]struct{})
		r.channels[channelID] = set
	}
	if _, ok := set[symbol]; ok {
		return AlreadyPresent, nil
	}
	set[symbol] = struct{}{}

	subs, ok := r.symbols[symbol]
	if !ok {
		subs = make(map[string]struct{})
		r.symbols[symbol] = subs
	}
	subs[channelID] = struct{}{}

	r.logger.Info("tracking symbol", "symbol", symbol, "channel", channelID)
	return Added, nil
}

// Unsubscribe removes symbol from the channel's set, dropping the channel
// entry once its set is empty.
func (r *Registry) Unsubscribe(channelID, symbol string) UnsubscribeResult {
	symbol = model.NormalizeSymbol(symbol)

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.channels[channelID]
	if !ok {
		return NotFound
	}
	if _, ok := set[symbol]; !ok {
		return NotFound
	}

	delete(set, symbol)
	if len(set) == 0 {
		delete(r.channels, channelID)
	}

	if subs, ok := r.symbols[symbol]; ok {
		delete(subs, channelID)
		if len(subs) == 0 {
			delete(r.symbols, symbol)
		}
	}

	r.logger.Info("untracked symbol", "symbol", symbol, "channel", channelID)
	return Removed
}

// List returns the channel's symbols sorted, or nil if none.
func (r *Registry) List(channelID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.channels[channelID])
}

// AllTrackedSymbols returns the sorted union of symbols across all channels.
func (r *Registry) AllTrackedSymbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.symbols)
}

// ChannelsFor returns the sorted channel IDs subscribed to symbol.
func (r *Registry) ChannelsFor(symbol string) []string {
	symbol = model.NormalizeSymbol(symbol)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.symbols[symbol])
}

// Stats returns channel and distinct symbol counts.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Stats{
		Channels: len(r.channels),
		Symbols:  len(r.symbols),
	}
}

// Snapshot returns a copy of the full mapping for debugging endpoints.
func (r *Registry) Snapshot() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(r.channels))
	for ch, set := range r.channels {
		out[ch] = sortedKeys(set)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
