package publisher

import "time"

// WithClock makes p stamp uploads with now.
func WithClock(p *Publisher, now func() time.Time) *Publisher {
	p.nowFn = now
	return p
}
