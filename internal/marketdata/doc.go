// Package marketdata wraps the Finnhub REST API for the two lookups the
// notifier needs: a latest quote per symbol and recent company news.
//
// Endpoints:
//   - Production: https://finnhub.io/api/v1
//   - /quote?symbol=AAPL
//   - /company-news?symbol=AAPL&from=2024-01-02&to=2024-01-02
//
// Any provider failure (transport error, non-2xx status, missing current
// price) is reported as ErrUnavailable. Callers skip the symbol for the
// current cycle.
package marketdata
