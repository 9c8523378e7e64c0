package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/tickerwatch/internal/chat"
	"github.com/rickgao/tickerwatch/internal/events"
	"github.com/rickgao/tickerwatch/internal/model"
	"github.com/rickgao/tickerwatch/internal/sentnews"
	"github.com/rickgao/tickerwatch/internal/subscription"
)

type sent struct {
	channelID, text string
}

// fakeSender records sends and fails channels listed in errs. Channels in
// missing do not resolve.
type fakeSender struct {
	mu      sync.Mutex
	errs    map[string]error
	missing map[string]error
	sent  []sent
	delay time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeSender) Send(ctx context.Context, channelID, text string) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[channelID]; err != nil {
		return err
	}
	f.sent = append(f.sent, sent{channelID, text})
	return nil
}

func (f *fakeSender) Channel(_ context.Context, channelID string) (chat.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.missing[channelID]; err != nil {
		return chat.Channel{}, err
	}
	return chat.Channel{ID: channelID}, nil
}

func (f *fakeSender) sentTo(channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.sent {
		if s.channelID == channelID {
			out = append(out, s.text)
		}
	}
	return out
}

func (f *fakeSender) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.DeliveryEvent
}

func (p *fakePublisher) Publish(_ context.Context, ev events.DeliveryEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// failingLookupStore wraps a store whose WasSent always fails.
type failingLookupStore struct {
	sentnews.Store
	err error
}

func (s failingLookupStore) WasSent(context.Context, string, string) (bool, error) {
	return false, s.err
}

type fakeQuotes struct {
	mu     sync.Mutex
	quotes map[string]model.Quote
	calls  []string
}

func (f *fakeQuotes) FetchQuote(_ context.Context, symbol string) (model.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, symbol)
	q, ok := f.quotes[symbol]
	if !ok {
		return model.Quote{}, errUnavailable
	}
	return q, nil
}

type fakeNews struct {
	mu    sync.Mutex
	items map[string][]model.NewsItem
	calls []string
}

func (f *fakeNews) FetchNews(_ context.Context, symbol string, _ int) ([]model.NewsItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, symbol)
	items, ok := f.items[symbol]
	if !ok {
		return nil, errUnavailable
	}
	return items, nil
}

type countingPacer struct {
	waits atomic.Int32
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits.Add(1)
	return ctx.Err()
}

type testEnv struct {
	registry   *subscription.Registry
	sender     *fakeSender
	store      *sentnews.MemoryStore
	publisher  *fakePublisher
	dispatcher *Dispatcher
}

func newTestEnv() *testEnv {
	env := &testEnv{
		registry:  subscription.NewRegistry(nil),
		sender:    &fakeSender{errs: map[string]error{}, missing: map[string]error{}},
		store:     sentnews.NewMemoryStore(nil),
		publisher: &fakePublisher{},
	}
	env.dispatcher = NewDispatcher(DefaultDispatcherConfig(), env.registry, env.sender, env.store, env.publisher, nil, nil)
	return env
}

func (e *testEnv) subscribe(channelID string, symbols ...string) {
	for _, s := range symbols {
		e.registry.Subscribe(channelID, s)
	}
}
