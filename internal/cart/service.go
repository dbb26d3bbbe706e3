package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bhargavsatvara/zyqora-storefront/internal/visitor"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/enums"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/events"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/kvstore"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/metrics"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// Service exposes the visitor cart operations used by the HTTP layer and checkout.
type Service interface {
	Get(ctx context.Context, sessionID string) (types.Cart, error)
	Refresh(ctx context.Context, sessionID string) (types.Cart, error)
	Add(ctx context.Context, sessionID string, item types.CartLineItem) (types.Cart, error)
	Update(ctx context.Context, sessionID string, key types.LineKey, quantity int) (types.Cart, error)
	Remove(ctx context.Context, sessionID string, key types.LineKey) (types.Cart, error)
	Clear(ctx context.Context, sessionID string) (types.Cart, error)
	MergeLocal(ctx context.Context, sessionID string) (MergeReport, error)
	Invalidate(sessionID string)
	Sweep(idle time.Duration) int
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Store       kvstore.Store
	Remote      Remote
	TaxRate     decimal.Decimal
	GuestTTL    time.Duration
	Bus         *events.Bus
	Broadcaster *visitor.Broadcaster
	Logger      *logger.Logger
	Metrics     *metrics.Storefront
}

type service struct {
	reg       *visitor.Registry[*Reconciler]
	broadcast *visitor.Broadcaster
	logg      *logger.Logger
}

// NewService builds the cart service and, when a bus is given, subscribes it to
// login (merge) and logout (reset to guest) events.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("guest store required")
	}
	if params.Remote == nil {
		return nil, fmt.Errorf("cart backend required")
	}
	if params.TaxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate must not be negative")
	}
	taxRate := params.TaxRate
	if taxRate.IsZero() {
		taxRate = DefaultTaxRate
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	svc := &service{broadcast: params.Broadcaster, logg: logg}
	svc.reg = visitor.NewRegistry(func(sessionID string) *Reconciler {
		return newReconciler(kvstore.Scope(params.Store, sessionID), params.Remote, taxRate, params.GuestTTL, logg, params.Metrics)
	})

	if params.Bus != nil {
		params.Bus.Subscribe(enums.SessionEventLoggedIn, "cart.merge", svc.onLogin)
		params.Bus.Subscribe(enums.SessionEventLoggedOut, "cart.reset", svc.onLogout)
	}
	return svc, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (types.Cart, error) {
	return s.read(ctx, sessionID, (*Reconciler).Current)
}

func (s *service) Refresh(ctx context.Context, sessionID string) (types.Cart, error) {
	return s.read(ctx, sessionID, (*Reconciler).Fetch)
}

func (s *service) Add(ctx context.Context, sessionID string, item types.CartLineItem) (types.Cart, error) {
	return s.mutate(ctx, sessionID, func(r *Reconciler) (types.Cart, error) {
		return r.Add(ctx, item)
	})
}

func (s *service) Update(ctx context.Context, sessionID string, key types.LineKey, quantity int) (types.Cart, error) {
	return s.mutate(ctx, sessionID, func(r *Reconciler) (types.Cart, error) {
		return r.Update(ctx, key, quantity)
	})
}

func (s *service) Remove(ctx context.Context, sessionID string, key types.LineKey) (types.Cart, error) {
	return s.mutate(ctx, sessionID, func(r *Reconciler) (types.Cart, error) {
		return r.Remove(ctx, key)
	})
}

// Clear only errors when the session itself is unusable.
func (s *service) Clear(ctx context.Context, sessionID string) (types.Cart, error) {
	return s.mutate(ctx, sessionID, func(r *Reconciler) (types.Cart, error) {
		return r.Clear(ctx), nil
	})
}

func (s *service) MergeLocal(ctx context.Context, sessionID string) (MergeReport, error) {
	var report MergeReport
	var mergeErr error
	err := s.reg.With(ctx, sessionID, func(r *Reconciler, _ bool) error {
		report, mergeErr = r.MergeLocal(ctx)
		return nil
	})
	if err != nil {
		return MergeReport{}, err
	}
	s.broadcast.Changed(ctx, sessionID)
	return report, mergeErr
}

func (s *service) Invalidate(sessionID string) {
	s.reg.Invalidate(sessionID)
}

func (s *service) Sweep(idle time.Duration) int {
	return s.reg.Sweep(idle)
}

func (s *service) read(ctx context.Context, sessionID string, op func(*Reconciler, context.Context) (types.Cart, error)) (types.Cart, error) {
	var out types.Cart
	err := s.reg.With(ctx, sessionID, func(r *Reconciler, _ bool) error {
		var opErr error
		out, opErr = op(r, ctx)
		return opErr
	})
	return out, err
}

func (s *service) mutate(ctx context.Context, sessionID string, op func(*Reconciler) (types.Cart, error)) (types.Cart, error) {
	var out types.Cart
	err := s.reg.With(ctx, sessionID, func(r *Reconciler, _ bool) error {
		var opErr error
		out, opErr = op(r)
		return opErr
	})
	if err == nil {
		s.broadcast.Changed(ctx, sessionID)
	}
	return out, err
}

func (s *service) onLogin(ctx context.Context, evt events.SessionEvent) error {
	ctx = s.logg.WithSessionID(ctx, evt.SessionID)
	report, err := s.MergeLocal(ctx, evt.SessionID)
	if report.Attempted > 0 {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"attempted": report.Attempted,
			"merged":    report.Merged,
			"failed":    report.Failed,
		}), "guest cart merged")
	}
	return err
}

func (s *service) onLogout(ctx context.Context, evt events.SessionEvent) error {
	s.reg.Invalidate(evt.SessionID)
	s.broadcast.Changed(ctx, evt.SessionID)
	return nil
}
