// Package countdown drives the timer shown on timed category rounds.
package countdown

import (
	"context"
	"time"
)

type Countdown struct {
	Seconds  int
	Interval time.Duration // one tick; defaults to a second
}

// Run calls onTick with the remaining count, starting at Seconds and ending
// at zero. It returns true when the countdown reached zero and false when
// ctx was cancelled first.
func (c Countdown) Run(ctx context.Context, onTick func(remaining int)) bool {
	interval := c.Interval
	if interval <= 0 {
		interval = time.Second
	}
	remaining := c.Seconds
	if remaining < 0 {
		remaining = 0
	}
	if onTick != nil {
		onTick(remaining)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for remaining > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if ctx.Err() != nil {
				return false
			}
			remaining--
			if onTick != nil {
				onTick(remaining)
			}
		}
	}
	return ctx.Err() == nil
}
