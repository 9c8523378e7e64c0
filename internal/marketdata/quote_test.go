package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestDeriveChange(t *testing.T) {
	tests := []struct {
		name        string
		current     float64
		prevClose   float64
		wantChange  float64
		wantPercent float64
	}{
		{"up five percent", 105, 100, 5, 5},
		{"down", 90, 100, -10, -10},
		{"flat", 100, 100, 0, 0},
		{"zero previous close", 105, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, percent := DeriveChange(tt.current, tt.prevClose)
			assert.Equal(t, tt.wantChange, change)
			assert.Equal(t, tt.wantPercent, percent)
		})
	}
}

func quoteServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchQuote(t *testing.T) {
	observed := time.Date(2024, 3, 5, 13, 30, 0, 0, time.UTC)

	t.Run("derives change fields", func(t *testing.T) {
		server := quoteServer(t, http.StatusOK, `{"c":105,"o":101,"h":106.5,"l":99.5,"pc":100}`)
		c := NewClient(server.URL, "key", WithClock(func() time.Time { return observed }))

		q, err := c.FetchQuote(context.Background(), "aapl")
		if err != nil {
			t.Fatalf("FetchQuote() error = %v", err)
		}

		assert.Equal(t, "AAPL", q.Symbol)
		assert.Equal(t, 105.0, q.CurrentPrice)
		assert.Equal(t, 5.0, q.Change)
		assert.Equal(t, 5.0, q.PercentChange)
		assert.Equal(t, 101.0, q.Open)
		assert.Equal(t, 106.5, q.High)
		assert.Equal(t, 99.5, q.Low)
		assert.Equal(t, 100.0, q.PreviousClose)
		assert.Equal(t, true, q.ObservedAt.Equal(observed))
	})

	t.Run("zero previous close", func(t *testing.T) {
		server := quoteServer(t, http.StatusOK, `{"c":105,"pc":0}`)
		c := NewClient(server.URL, "key")

		q, err := c.FetchQuote(context.Background(), "NEW")
		if err != nil {
			t.Fatalf("FetchQuote() error = %v", err)
		}
		assert.Equal(t, 0.0, q.Change)
		assert.Equal(t, 0.0, q.PercentChange)
	})

	t.Run("missing previous close", func(t *testing.T) {
		server := quoteServer(t, http.StatusOK, `{"c":105}`)
		c := NewClient(server.URL, "key")

		q, err := c.FetchQuote(context.Background(), "NEW")
		if err != nil {
			t.Fatalf("FetchQuote() error = %v", err)
		}
		assert.Equal(t, 0.0, q.Change)
		assert.Equal(t, 0.0, q.PercentChange)
	})

	unavailable := []struct {
		name   string
		status int
		body   string
	}{
		{"missing current price", http.StatusOK, `{"pc":100}`},
		{"unknown symbol", http.StatusOK, `{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0}`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"forbidden", http.StatusForbidden, `{"error":"You don't have access to this resource."}`},
	}
	for _, tt := range unavailable {
		t.Run(tt.name, func(t *testing.T) {
			server := quoteServer(t, tt.status, tt.body)
			c := NewClient(server.URL, "key", WithRetries(1, time.Millisecond))

			_, err := c.FetchQuote(context.Background(), "XXXX")
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("err = %v, want ErrUnavailable", err)
			}
		})
	}

	t.Run("transport failure", func(t *testing.T) {
		server := quoteServer(t, http.StatusOK, `{}`)
		url := server.URL
		server.Close()

		c := NewClient(url, "key", WithRetries(0, 0))
		_, err := c.FetchQuote(context.Background(), "AAPL")
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("err = %v, want ErrUnavailable", err)
		}
	})
}
