package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/enums"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
)

// SessionEvent announces a login or logout for one visitor session.
type SessionEvent struct {
	Kind       enums.SessionEventKind
	SessionID  string
	Token      string
	UserID     string
	OccurredAt time.Time
}

// Handler reacts to a session event. Returned errors are logged by the bus.
type Handler func(ctx context.Context, evt SessionEvent) error

type subscription struct {
	name    string
	handler Handler
}

// Bus delivers session events synchronously to subscribers in registration order.
type Bus struct {
	mtx  sync.RWMutex
	subs map[enums.SessionEventKind][]subscription
	logg *logger.Logger
}

func NewBus(logg *logger.Logger) *Bus {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Bus{subs: make(map[enums.SessionEventKind][]subscription), logg: logg}
}

// Subscribe registers handler for kind. name appears in logs when the handler fails.
func (b *Bus) Subscribe(kind enums.SessionEventKind, name string, handler Handler) {
	if handler == nil {
		return
	}
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.subs[kind] = append(b.subs[kind], subscription{name: name, handler: handler})
}

// Publish invokes every handler for evt.Kind once. A failing handler does not
// stop the rest; all failures are returned combined.
func (b *Bus) Publish(ctx context.Context, evt SessionEvent) error {
	if !evt.Kind.IsValid() {
		return fmt.Errorf("unknown session event kind %q", evt.Kind)
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	b.mtx.RLock()
	subs := append([]subscription(nil), b.subs[evt.Kind]...)
	b.mtx.RUnlock()

	var errs error
	for _, sub := range subs {
		if err := b.invoke(ctx, sub, evt); err != nil {
			hctx := b.logg.WithFields(ctx, map[string]any{"event": evt.Kind.String(), "handler": sub.name})
			b.logg.Error(hctx, "session event handler failed", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", sub.name, err))
		}
	}
	return errs
}

func (b *Bus) invoke(ctx context.Context, sub subscription, evt SessionEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return sub.handler(ctx, evt)
}
