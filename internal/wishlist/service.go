package wishlist

import (
	"context"
	"time"

	"github.com/bhargavsatvara/zyqora-storefront/internal/visitor"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/enums"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/events"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/kvstore"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/metrics"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// Service exposes visitor wishlist operations.
type Service interface {
	Get(ctx context.Context, sessionID string) (types.Wishlist, error)
	Refresh(ctx context.Context, sessionID string) (types.Wishlist, error)
	Contains(ctx context.Context, sessionID, productID string) (bool, error)
	Add(ctx context.Context, sessionID, productID string) (types.Wishlist, error)
	Remove(ctx context.Context, sessionID, productID string) (types.Wishlist, error)
	MergeLocal(ctx context.Context, sessionID string) (MergeReport, error)
	Invalidate(sessionID string)
	Sweep(idle time.Duration) int
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Store       kvstore.Store
	Remote      Remote
	Catalog     Catalog
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

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest store is required")
	}
	if params.Remote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist backend is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	svc := &service{broadcast: params.Broadcaster, logg: logg}
	svc.reg = visitor.NewRegistry(func(sessionID string) *Reconciler {
		return newReconciler(kvstore.Scope(params.Store, sessionID), params.Remote, params.Catalog, params.GuestTTL, logg, params.Metrics)
	})
	if params.Bus != nil {
		params.Bus.Subscribe(enums.SessionEventLoggedIn, "wishlist.merge", svc.onLogin)
		params.Bus.Subscribe(enums.SessionEventLoggedOut, "wishlist.reset", svc.onLogout)
	}
	return svc, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (types.Wishlist, error) {
	return s.run(ctx, sessionID, false, func(r *Reconciler) (types.Wishlist, error) {
		return r.Current(ctx)
	})
}

func (s *service) Refresh(ctx context.Context, sessionID string) (types.Wishlist, error) {
	return s.run(ctx, sessionID, false, func(r *Reconciler) (types.Wishlist, error) {
		return r.Refresh(ctx)
	})
}

func (s *service) Contains(ctx context.Context, sessionID, productID string) (bool, error) {
	var found bool
	err := s.reg.With(ctx, sessionID, func(r *Reconciler, _ bool) error {
		var err error
		found, err = r.Contains(ctx, productID)
		return err
	})
	return found, err
}

func (s *service) Add(ctx context.Context, sessionID, productID string) (types.Wishlist, error) {
	return s.run(ctx, sessionID, true, func(r *Reconciler) (types.Wishlist, error) {
		return r.Add(ctx, productID)
	})
}

func (s *service) Remove(ctx context.Context, sessionID, productID string) (types.Wishlist, error) {
	return s.run(ctx, sessionID, true, func(r *Reconciler) (types.Wishlist, error) {
		return r.Remove(ctx, productID)
	})
}

func (s *service) MergeLocal(ctx context.Context, sessionID string) (MergeReport, error) {
	var report MergeReport
	var mergeErr error
	if err := s.reg.With(ctx, sessionID, func(r *Reconciler, _ bool) error {
		report, mergeErr = r.MergeLocal(ctx)
		return nil
	}); err != nil {
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

func (s *service) run(ctx context.Context, sessionID string, mutation bool, op func(*Reconciler) (types.Wishlist, error)) (types.Wishlist, error) {
	var out types.Wishlist
	err := s.reg.With(ctx, sessionID, func(r *Reconciler, _ bool) error {
		var opErr error
		out, opErr = op(r)
		return opErr
	})
	if err == nil && mutation {
		s.broadcast.Changed(ctx, sessionID)
	}
	return out, err
}

func (s *service) onLogin(ctx context.Context, evt events.SessionEvent) error {
	_, err := s.MergeLocal(s.logg.WithSessionID(ctx, evt.SessionID), evt.SessionID)
	return err
}

func (s *service) onLogout(ctx context.Context, evt events.SessionEvent) error {
	s.reg.Invalidate(evt.SessionID)
	s.broadcast.Changed(ctx, evt.SessionID)
	return nil
}
