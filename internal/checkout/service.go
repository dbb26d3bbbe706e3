package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bhargavsatvara/zyqora-storefront/internal/visitor"
	pkgcheckout "github.com/bhargavsatvara/zyqora-storefront/pkg/checkout"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/enums"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/kvstore"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/metrics"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/storeapi"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/stripe"
)

// Service executes checkout orchestration for one visitor at a time.
type Service interface {
	Submit(ctx context.Context, sessionID string, req SubmitRequest) (*Attempt, error)
	Current(ctx context.Context, sessionID string) (*Attempt, error)
	Sweep(idle time.Duration) int
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Store         kvstore.Store
	Cart          Cart
	Orders        Orders
	Payments      PaymentConfirmer
	AttemptTTL    time.Duration
	RedirectDelay time.Duration
	Logger        *logger.Logger
	Metrics       *metrics.Storefront
	Now           func() time.Time
	NewKey        func() string
}

type service struct {
	store         kvstore.Store
	cart          Cart
	orders        Orders
	payments      PaymentConfirmer
	attemptTTL    time.Duration
	redirectDelay time.Duration
	logg          *logger.Logger
	metrics       *metrics.Storefront
	now           func() time.Time
	newKey        func() string
	locks         *visitor.Registry[struct{}]
}

// NewService validates dependencies and builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("guest store required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders backend required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment confirmer required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	newKey := params.NewKey
	if newKey == nil {
		newKey = uuid.NewString
	}
	return &service{
		store:         params.Store,
		cart:          params.Cart,
		orders:        params.Orders,
		payments:      params.Payments,
		attemptTTL:    params.AttemptTTL,
		redirectDelay: params.RedirectDelay,
		logg:          logg,
		metrics:       params.Metrics,
		now:           now,
		newKey:        newKey,
		locks:         visitor.NewRegistry(func(string) struct{} { return struct{}{} }),
	}, nil
}

// Submit walks the attempt from address collection to a placed order. A
// failure at any step returns the Failed attempt together with the error and
// leaves the cart untouched. A retry after a confirmed payment resumes at
// order creation with the same idempotency key.
func (s *service) Submit(ctx context.Context, sessionID string, req SubmitRequest) (*Attempt, error) {
	var out *Attempt
	err := s.locks.With(ctx, sessionID, func(struct{}, bool) error {
		var runErr error
		out, runErr = s.submit(s.logg.WithSessionID(ctx, sessionID), sessionID, req)
		return runErr
	})
	return out, err
}

func (s *service) submit(ctx context.Context, sessionID string, req SubmitRequest) (*Attempt, error) {
	scope := kvstore.Scope(s.store, sessionID)
	token, err := kvstore.GetString(ctx, scope, kvstore.KeyToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read token")
	}
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to check out")
	}

	prev, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	if prev != nil && prev.resumable() {
		s.logg.Info(s.logg.WithField(ctx, "attempt_id", prev.ID), "resuming checkout at order creation")
		return s.createOrder(ctx, sessionID, scope, token, prev)
	}

	if prev != nil && prev.State != enums.CheckoutStateDone && req.BillingAddress.IsEmpty() {
		req.BillingAddress = prev.BillingAddress
	}
	if err := pkgcheckout.ValidateAddress(&req.BillingAddress); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.PaymentMethodID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{
			"payment_method_id": "is required",
		})
	}

	if prev != nil && mayHaveCharged(prev) {
		conf, err := s.payments.Status(ctx, prev.PaymentIntentID)
		if err != nil {
			prev.State = enums.CheckoutStateConfirmingPayment
			return s.fail(ctx, scope, prev, err)
		}
		if conf.Succeeded() {
			prev.PaymentConfirmed = true
			s.logg.Info(s.logg.WithField(ctx, "attempt_id", prev.ID), "previous payment found confirmed")
			return s.createOrder(ctx, sessionID, scope, token, prev)
		}
	}

	cart, err := s.cart.Refresh(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.Stale {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart could not be loaded, try again")
	}
	if err := pkgcheckout.ValidateCart(cart.Items); err != nil {
		return nil, err
	}

	rec := &record{Attempt: Attempt{
		ID:             s.newKey(),
		BillingAddress: req.BillingAddress,
		Items:          cart.Items,
		Totals:         cart.Totals,
		IdempotencyKey: s.newKey(),
	}}
	ctx = s.logg.WithField(ctx, "attempt_id", rec.ID)

	if err := s.advance(ctx, scope, rec, enums.CheckoutStateCreatingPaymentIntent); err != nil {
		return nil, err
	}
	secret, err := s.orders.CreatePaymentIntent(ctx, token, snapshot(rec))
	if err != nil {
		return s.fail(ctx, scope, rec, err)
	}
	rec.ClientSecret = secret
	if id, err := stripe.IntentIDFromClientSecret(secret); err == nil {
		rec.PaymentIntentID = id
	}

	s.advanceOrLog(ctx, scope, rec, enums.CheckoutStateConfirmingPayment)
	conf, err := s.payments.Confirm(ctx, secret, req.PaymentMethodID, rec.BillingAddress.Email)
	if err != nil {
		return s.fail(ctx, scope, rec, err)
	}
	rec.PaymentConfirmed = true
	if conf.PaymentIntentID != "" {
		rec.PaymentIntentID = conf.PaymentIntentID
	}
	return s.createOrder(ctx, sessionID, scope, token, rec)
}

func (s *service) createOrder(ctx context.Context, sessionID string, scope kvstore.Store, token string, rec *record) (*Attempt, error) {
	s.advanceOrLog(ctx, scope, rec, enums.CheckoutStateCreatingOrder)
	order, err := s.orders.CreateOrder(ctx, token, rec.IdempotencyKey, snapshot(rec), rec.PaymentIntentID)
	if err != nil {
		return s.fail(ctx, scope, rec, err)
	}

	rec.Order = &order
	rec.RedirectAfterMS = s.redirectDelay.Milliseconds()
	rec.ClientSecret = ""
	s.advanceOrLog(ctx, scope, rec, enums.CheckoutStateDone)

	if _, err := s.cart.Clear(ctx, sessionID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "clearing cart after order failed")
	}
	s.metrics.IncCheckout(enums.CheckoutStateDone.String())
	s.logg.Info(s.logg.WithField(ctx, "order_id", order.ID), "checkout completed")

	out := rec.Attempt
	return &out, nil
}

// Current returns the stored attempt, or a fresh one collecting the address.
func (s *service) Current(ctx context.Context, sessionID string) (*Attempt, error) {
	var out *Attempt
	err := s.locks.With(ctx, sessionID, func(struct{}, bool) error {
		rec, err := s.load(ctx, kvstore.Scope(s.store, sessionID))
		if err != nil {
			return err
		}
		if rec == nil {
			out = &Attempt{State: enums.CheckoutStateCollectingAddress}
			return nil
		}
		attempt := rec.Attempt
		out = &attempt
		return nil
	})
	return out, err
}

func (s *service) Sweep(idle time.Duration) int {
	return s.locks.Sweep(idle)
}

func (s *service) load(ctx context.Context, scope kvstore.Store) (*record, error) {
	var rec record
	found, err := kvstore.GetJSON(ctx, scope, kvstore.KeyCheckoutAttempt, &rec)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read checkout attempt")
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

func (s *service) advance(ctx context.Context, scope kvstore.Store, rec *record, state enums.CheckoutState) error {
	rec.State = state
	rec.FailedStep = ""
	rec.FailureReason = ""
	rec.UpdatedAt = s.now().UTC()
	if err := kvstore.SetJSON(ctx, scope, kvstore.KeyCheckoutAttempt, rec, s.attemptTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist checkout attempt")
	}
	return nil
}

// advanceOrLog is used once money may have moved; losing the record must not
// abort the remaining steps.
func (s *service) advanceOrLog(ctx context.Context, scope kvstore.Store, rec *record, state enums.CheckoutState) {
	if err := s.advance(ctx, scope, rec, state); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "state", state.String()), "persist checkout attempt", err)
	}
}

func (s *service) fail(ctx context.Context, scope kvstore.Store, rec *record, cause error) (*Attempt, error) {
	rec.FailedStep = rec.State
	rec.State = enums.CheckoutStateFailed
	rec.FailureReason = reason(cause)
	rec.UpdatedAt = s.now().UTC()
	if err := kvstore.SetJSON(ctx, scope, kvstore.KeyCheckoutAttempt, rec, s.attemptTTL); err != nil {
		s.logg.Error(ctx, "persist failed checkout attempt", err)
	}
	s.metrics.IncCheckout(enums.CheckoutStateFailed.String())
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"step":   rec.FailedStep.String(),
		"reason": rec.FailureReason,
	}), "checkout failed")

	out := rec.Attempt
	return &out, cause
}

// mayHaveCharged reports whether an unconfirmed attempt stopped while the
// provider was confirming, so the intent must be checked before charging again.
func mayHaveCharged(rec *record) bool {
	if rec.PaymentConfirmed || rec.PaymentIntentID == "" {
		return false
	}
	return rec.State == enums.CheckoutStateConfirmingPayment ||
		(rec.State == enums.CheckoutStateFailed && rec.FailedStep == enums.CheckoutStateConfirmingPayment)
}

func snapshot(rec *record) storeapi.CheckoutRequest {
	return storeapi.CheckoutRequest{
		BillingAddress: rec.BillingAddress,
		Items:          rec.Items,
		Totals:         rec.Totals,
	}
}

func reason(err error) string {
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		return typed.Message()
	}
	return err.Error()
}
