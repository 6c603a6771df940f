package generator

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks until the next insert may start.
type Pacer interface {
	Wait(ctx context.Context) error
}

// intervalPacer spaces inserts by a fixed interval using a rate.Limiter with
// a burst of one. The initial token is consumed so the first Wait also
// sleeps a full interval.
type intervalPacer struct {
	limiter *rate.Limiter
}

func NewIntervalPacer(interval time.Duration) Pacer {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	limiter.Allow()
	return &intervalPacer{limiter: limiter}
}

// Wait returns ctx.Err() as soon as ctx is done, giving the reserved token back.
func (p *intervalPacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r := p.limiter.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}
