package notify

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks until the next provider request may be issued.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewPacer allows one request per interval. The first request passes
// immediately. A non-positive interval disables pacing.
func NewPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
