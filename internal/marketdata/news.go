package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"github.com/rickgao/tickerwatch/internal/model"
)

// dateLayout is the from/to format accepted by /company-news.
const dateLayout = "2006-01-02"

// FetchNews returns recent company news for symbol. It first asks for
// today's items only; when that window is empty it widens to
// [today - lookbackDays, today]. Dates are computed in the client's market
// timezone. Every failure wraps ErrUnavailable.
func (c *Client) FetchNews(ctx context.Context, symbol string, lookbackDays int) ([]model.NewsItem, error) {
	symbol = model.NormalizeSymbol(symbol)
	today := c.now().In(c.location)
	to := today.Format(dateLayout)

	items, err := c.companyNews(ctx, symbol, to, to)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 || lookbackDays <= 0 {
		return items, nil
	}

	from := today.AddDate(0, 0, -lookbackDays).Format(dateLayout)
	c.logger.Debug("no news today, widening window",
		"symbol", symbol,
		"from", from,
		"to", to,
	)

	return c.companyNews(ctx, symbol, from, to)
}

func (c *Client) companyNews(ctx context.Context, symbol, from, to string) ([]model.NewsItem, error) {
	var raw []finnhub.CompanyNews
	err := c.doWithRetry(ctx, "company-news", func(ctx context.Context) (*http.Response, error) {
		var (
			resp *http.Response
			err  error
		)
		raw, resp, err = c.api.CompanyNews(ctx).Symbol(symbol).From(from).To(to).Execute()
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: news %s [%s, %s]: %w", ErrUnavailable, symbol, from, to, err)
	}

	items := make([]model.NewsItem, 0, len(raw))
	for _, n := range raw {
		item, ok := convertNews(symbol, n)
		if !ok {
			c.logger.Debug("dropping news item without id", "symbol", symbol)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// convertNews maps a provider article. Items without an id cannot be
// deduplicated and are rejected.
func convertNews(symbol string, n finnhub.CompanyNews) (model.NewsItem, bool) {
	if n.Id == nil {
		return model.NewsItem{}, false
	}

	item := model.NewsItem{
		ID:     strconv.FormatInt(*n.Id, 10),
		Symbol: symbol,
	}
	if n.Headline != nil {
		item.Headline = *n.Headline
	}
	if n.Summary != nil {
		item.Summary = *n.Summary
	}
	if n.Source != nil {
		item.Source = *n.Source
	}
	if n.Url != nil {
		item.URL = *n.Url
	}
	if n.Datetime != nil {
		item.PublishedAt = time.Unix(*n.Datetime, 0).UTC()
	}
	return item, true
}
