package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

type newsRequest struct {
	from, to string
}

// newsServer answers /company-news with body for the today-only window and
// widened for any other window.
func newsServer(t *testing.T, today, widened string) (*httptest.Server, func() []newsRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []newsRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/company-news" {
			t.Errorf("path = %q, want /company-news", r.URL.Path)
		}
		q := r.URL.Query()
		mu.Lock()
		seen = append(seen, newsRequest{from: q.Get("from"), to: q.Get("to")})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if q.Get("from") == q.Get("to") {
			w.Write([]byte(today))
			return
		}
		w.Write([]byte(widened))
	}))
	t.Cleanup(server.Close)

	return server, func() []newsRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]newsRequest(nil), seen...)
	}
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	return loc
}

const twoItems = `[
	{"id":101,"headline":"AAPL beats","summary":"Strong quarter","source":"Reuters","url":"https://example.com/1","datetime":1709640000},
	{"id":102,"headline":"AAPL guidance","source":"Bloomberg","url":"https://example.com/2","datetime":1709553600}
]`

func TestFetchNews(t *testing.T) {
	// 03:00 UTC on Mar 6 is still Mar 5 in New York.
	clock := func() time.Time { return time.Date(2024, 3, 6, 3, 0, 0, 0, time.UTC) }

	t.Run("today window has items", func(t *testing.T) {
		server, requests := newsServer(t, twoItems, `[]`)
		c := NewClient(server.URL, "key", WithClock(clock), WithLocation(newYork(t)))

		items, err := c.FetchNews(context.Background(), "AAPL", 2)
		if err != nil {
			t.Fatalf("FetchNews() error = %v", err)
		}

		assert.Equal(t, 2, len(items))
		assert.Equal(t, []newsRequest{{"2024-03-05", "2024-03-05"}}, requests())

		first := items[0]
		assert.Equal(t, "101", first.ID)
		assert.Equal(t, "AAPL", first.Symbol)
		assert.Equal(t, "AAPL beats", first.Headline)
		assert.Equal(t, "Strong quarter", first.Summary)
		assert.Equal(t, "Reuters", first.Source)
		assert.Equal(t, "https://example.com/1", first.URL)
		assert.Equal(t, int64(1709640000), first.PublishedAt.Unix())
		assert.Equal(t, "", items[1].Summary)
	})

	t.Run("falls back to lookback window", func(t *testing.T) {
		server, requests := newsServer(t, `[]`, twoItems)
		c := NewClient(server.URL, "key", WithClock(clock), WithLocation(newYork(t)))

		items, err := c.FetchNews(context.Background(), "AAPL", 2)
		if err != nil {
			t.Fatalf("FetchNews() error = %v", err)
		}

		assert.Equal(t, 2, len(items))
		assert.Equal(t, []newsRequest{
			{"2024-03-05", "2024-03-05"},
			{"2024-03-03", "2024-03-05"},
		}, requests())
	})

	t.Run("both windows empty", func(t *testing.T) {
		server, requests := newsServer(t, `[]`, `[]`)
		c := NewClient(server.URL, "key", WithClock(clock))

		items, err := c.FetchNews(context.Background(), "AAPL", 2)
		if err != nil {
			t.Fatalf("FetchNews() error = %v", err)
		}
		assert.Equal(t, 0, len(items))
		assert.Equal(t, 2, len(requests()))
	})

	t.Run("items without id are dropped", func(t *testing.T) {
		server, _ := newsServer(t, `[{"headline":"no id"},{"id":7,"headline":"ok"}]`, `[]`)
		c := NewClient(server.URL, "key", WithClock(clock))

		items, err := c.FetchNews(context.Background(), "AAPL", 2)
		if err != nil {
			t.Fatalf("FetchNews() error = %v", err)
		}
		assert.Equal(t, 1, len(items))
		assert.Equal(t, "7", items[0].ID)
	})

	t.Run("provider failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		c := NewClient(server.URL, "key", WithRetries(0, 0))
		_, err := c.FetchNews(context.Background(), "AAPL", 2)
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("err = %v, want ErrUnavailable", err)
		}
	})
}
