package ringmux

import (
	"time"

	"github.com/behrlich/ringmux/internal/logging"
)

// Option configures a Mux at construction time.
type Option func(*Mux)

// WithBacklogLimit caps the backlog at limit entries; a push that would
// exceed it fails instead of growing the backlog further. The default is
// uncapped.
func WithBacklogLimit(limit int) Option {
	return func(m *Mux) { m.backlog = newBacklog(limit) }
}

// WithDrainTimeout overrides the duration the shutdown coordinator's drain
// barrier waits when it must fall back to a counted timeout. The default is
// DefaultDrainTimeout.
func WithDrainTimeout(d time.Duration) Option {
	return func(m *Mux) { m.drainTimeout = d }
}

// WithLogger overrides the Mux's logger. The default is logging.Default().
func WithLogger(l *logging.Logger) Option {
	return func(m *Mux) { m.logger = l }
}

// WithObserver overrides the Mux's metrics observer. The default is
// NoOpObserver{}; a nil o keeps that default.
func WithObserver(o Observer) Option {
	return func(m *Mux) {
		if o == nil {
			o = NoOpObserver{}
		}
		m.observer = o
	}
}
