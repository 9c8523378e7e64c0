package marketdata

import (
	"context"
	"fmt"
	"net/http"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"github.com/rickgao/tickerwatch/internal/model"
)

// FetchQuote returns the latest quote for symbol. Change and percent change
// are derived locally from the current price and previous close. Every
// failure wraps ErrUnavailable.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	symbol = model.NormalizeSymbol(symbol)

	var raw finnhub.Quote
	err := c.doWithRetry(ctx, "quote", func(ctx context.Context) (*http.Response, error) {
		var (
			resp *http.Response
			err  error
		)
		raw, resp, err = c.api.Quote(ctx).Symbol(symbol).Execute()
		return resp, err
	})
	if err != nil {
		return model.Quote{}, fmt.Errorf("%w: quote %s: %w", ErrUnavailable, symbol, err)
	}

	// Finnhub answers unknown symbols with 200 and c=0 rather than omitting
	// c, so a zero price is treated the same as a missing one.
	if raw.C == nil || *raw.C == 0 {
		return model.Quote{}, fmt.Errorf("%w: quote %s: missing current price", ErrUnavailable, symbol)
	}

	q := model.Quote{
		Symbol:        symbol,
		CurrentPrice:  float64(*raw.C),
		Open:          optFloat(raw.O),
		High:          optFloat(raw.H),
		Low:           optFloat(raw.L),
		PreviousClose: optFloat(raw.Pc),
		ObservedAt:    c.now().In(c.location),
	}
	q.Change, q.PercentChange = DeriveChange(q.CurrentPrice, q.PreviousClose)

	return q, nil
}

// DeriveChange computes the absolute and percent change of current against
// previousClose. A zero previous close (the provider omits or zeroes it for
// unknown symbols) yields (0, 0).
func DeriveChange(current, previousClose float64) (change, percent float64) {
	if previousClose == 0 {
		return 0, 0
	}
	change = current - previousClose
	percent = change / previousClose * 100
	return change, percent
}

// optFloat widens an optional SDK price. The SDK decodes prices as float32,
// so values and DeriveChange results keep about 7 significant digits. That
// covers the two rendered decimals for prices below 100,000.
func optFloat(v *float32) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}
