package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/kvstore"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/metrics"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

// MergeReport summarizes a guest-to-account merge.
type MergeReport struct {
	Attempted int        `json:"attempted"`
	Merged    int        `json:"merged"`
	Failed    int        `json:"failed"`
	Cart      types.Cart `json:"cart"`
}

// Reconciler holds one visitor's cart and routes every operation to the
// backend when the visitor has a token, or to the guest store otherwise.
// It is not safe for concurrent use; the service serializes calls per visitor.
type Reconciler struct {
	store    kvstore.Store
	remote   Remote
	taxRate  decimal.Decimal
	guestTTL time.Duration
	logg     *logger.Logger
	metrics  *metrics.Storefront

	loaded        bool
	observedToken string
	items         []types.CartLineItem
	totals        types.CartTotals
	stale         bool
}

func newReconciler(store kvstore.Store, remote Remote, taxRate decimal.Decimal, guestTTL time.Duration, logg *logger.Logger, m *metrics.Storefront) *Reconciler {
	return &Reconciler{
		store:    store,
		remote:   remote,
		taxRate:  taxRate,
		guestTTL: guestTTL,
		logg:     logg,
		metrics:  m,
		items:    []types.CartLineItem{},
	}
}

// Snapshot returns a copy of the current in-memory cart.
func (r *Reconciler) Snapshot() types.Cart {
	items := make([]types.CartLineItem, len(r.items))
	copy(items, r.items)
	return types.Cart{
		Items:         items,
		Totals:        r.totals,
		Authenticated: r.observedToken != "",
		Stale:         r.stale,
	}
}

// Current serves the cached cart, fetching when nothing is loaded yet or the
// stored token no longer matches the one the cache was built for.
func (r *Reconciler) Current(ctx context.Context) (types.Cart, error) {
	token, err := r.token(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	if r.loaded && token == r.observedToken && !r.stale {
		return r.Snapshot(), nil
	}
	return r.Fetch(ctx)
}

// Fetch reloads the cart. A backend failure is not an error: the guest cart is
// served instead and the snapshot is flagged stale.
func (r *Reconciler) Fetch(ctx context.Context) (types.Cart, error) {
	token, err := r.token(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	if token == "" {
		return r.loadGuestState(ctx, "")
	}

	remoteCart, err := r.remote.GetCart(ctx, token)
	if err != nil {
		r.metrics.IncGuestFallback("cart")
		r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "remote cart unavailable, serving guest cart")
		cart, guestErr := r.loadGuestState(ctx, token)
		r.stale = true
		cart.Stale = true
		return cart, guestErr
	}

	r.observedToken = token
	r.items = remoteCart.Items
	if r.items == nil {
		r.items = []types.CartLineItem{}
	}
	if remoteCart.Totals != nil {
		r.totals = *remoteCart.Totals
	} else {
		r.totals = ComputeTotals(r.items, r.taxRate)
	}
	r.loaded = true
	r.stale = false
	return r.Snapshot(), nil
}

func (r *Reconciler) loadGuestState(ctx context.Context, token string) (types.Cart, error) {
	items, err := r.loadGuest(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	r.observedToken = token
	r.setLocal(items)
	return r.Snapshot(), nil
}

// Add puts item in the cart. Guest lines with the same product, size and color
// are combined by summing quantities.
func (r *Reconciler) Add(ctx context.Context, item types.CartLineItem) (types.Cart, error) {
	item.ProductID = strings.TrimSpace(item.ProductID)
	item.Size = strings.TrimSpace(item.Size)
	item.Color = strings.TrimSpace(item.Color)
	if item.ProductID == "" {
		return r.Snapshot(), pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if item.Quantity < 1 {
		return r.Snapshot(), pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if item.Price.IsNegative() {
		return r.Snapshot(), pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	token, err := r.token(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	if token != "" {
		if exceedsStock(item.Quantity, item.StockQuantity) {
			return r.Snapshot(), outOfStock(item.Name, *item.StockQuantity)
		}
		if err := r.remote.AddToCart(ctx, token, item); err != nil {
			return r.Snapshot(), err
		}
		return r.Fetch(ctx)
	}

	items, err := r.loadGuest(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	if idx := indexOf(items, item.Key()); idx >= 0 {
		stock := item.StockQuantity
		if stock == nil {
			stock = items[idx].StockQuantity
		}
		quantity := items[idx].Quantity + item.Quantity
		if exceedsStock(quantity, stock) {
			return r.Snapshot(), outOfStock(items[idx].Name, *stock)
		}
		items[idx].Quantity = quantity
		if item.StockQuantity != nil {
			items[idx].StockQuantity = item.StockQuantity
		}
	} else {
		if exceedsStock(item.Quantity, item.StockQuantity) {
			return r.Snapshot(), outOfStock(item.Name, *item.StockQuantity)
		}
		items = append(items, item)
	}
	return r.saveGuest(ctx, items)
}

// Update sets the quantity of the line identified by key. A quantity of zero
// or less removes the line.
func (r *Reconciler) Update(ctx context.Context, key types.LineKey, quantity int) (types.Cart, error) {
	key = types.NewLineKey(key.ProductID, key.Size, key.Color)
	if key.ProductID == "" {
		return r.Snapshot(), pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	token, err := r.token(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	if token != "" {
		if quantity <= 0 {
			err = r.remote.RemoveFromCart(ctx, token, key)
		} else {
			err = r.remote.UpdateCartItem(ctx, token, key, quantity)
		}
		if err != nil {
			return r.Snapshot(), err
		}
		return r.Fetch(ctx)
	}

	items, err := r.loadGuest(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	idx := indexOf(items, key)
	switch {
	case idx < 0 && quantity <= 0:
		r.observedToken = ""
		r.setLocal(items)
		return r.Snapshot(), nil
	case idx < 0:
		return r.Snapshot(), pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart")
	case quantity <= 0:
		items = append(items[:idx], items[idx+1:]...)
	default:
		if exceedsStock(quantity, items[idx].StockQuantity) {
			return r.Snapshot(), outOfStock(items[idx].Name, *items[idx].StockQuantity)
		}
		items[idx].Quantity = quantity
	}
	return r.saveGuest(ctx, items)
}

// Remove deletes the line identified by key.
func (r *Reconciler) Remove(ctx context.Context, key types.LineKey) (types.Cart, error) {
	return r.Update(ctx, key, 0)
}

// Clear empties the cart. Local state is zeroed even when the backend call fails.
func (r *Reconciler) Clear(ctx context.Context) types.Cart {
	token, err := r.token(ctx)
	if err != nil {
		r.logg.Error(ctx, "reading visitor token for cart clear", err)
	}

	if token != "" {
		if err := r.remote.ClearCart(ctx, token); err != nil {
			r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "remote cart clear failed, clearing local state anyway")
		}
	} else if err := r.store.Delete(ctx, kvstore.KeyGuestCart); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		r.logg.Error(ctx, "deleting guest cart", err)
	}

	r.observedToken = token
	r.setLocal(nil)
	return r.Snapshot()
}

// MergeLocal pushes every guest line to the backend one at a time, then drops
// the guest cart whatever the outcome and refetches. Item failures are
// returned combined but never stop the loop.
func (r *Reconciler) MergeLocal(ctx context.Context) (MergeReport, error) {
	token, err := r.token(ctx)
	if err != nil {
		return MergeReport{}, err
	}
	if token == "" {
		return MergeReport{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "merging a cart requires a signed-in visitor")
	}

	items, err := r.loadGuest(ctx)
	if err != nil {
		r.logg.Error(ctx, "reading guest cart for merge", err)
		items = nil
	}

	report := MergeReport{Attempted: len(items)}
	var errs error
	for _, item := range items {
		if err := r.remote.AddToCart(ctx, token, item); err != nil {
			report.Failed++
			r.metrics.IncMergeItem("cart", false)
			errs = multierr.Append(errs, fmt.Errorf("merge %s: %w", item.ProductID, err))
			r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
				"product_id": item.ProductID,
				"error":      err.Error(),
			}), "guest cart item not merged")
			continue
		}
		report.Merged++
		r.metrics.IncMergeItem("cart", true)
	}

	if err := r.store.Delete(ctx, kvstore.KeyGuestCart); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		r.logg.Error(ctx, "clearing guest cart after merge", err)
	}

	cart, fetchErr := r.Fetch(ctx)
	report.Cart = cart
	return report, multierr.Append(errs, fetchErr)
}

func (r *Reconciler) token(ctx context.Context) (string, error) {
	token, err := kvstore.GetString(ctx, r.store, kvstore.KeyToken)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading visitor session")
	}
	return strings.TrimSpace(token), nil
}

func (r *Reconciler) loadGuest(ctx context.Context) ([]types.CartLineItem, error) {
	var items []types.CartLineItem
	if _, err := kvstore.GetJSON(ctx, r.store, kvstore.KeyGuestCart, &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading guest cart")
	}
	return sanitize(items), nil
}

func (r *Reconciler) saveGuest(ctx context.Context, items []types.CartLineItem) (types.Cart, error) {
	var err error
	if len(items) == 0 {
		err = r.store.Delete(ctx, kvstore.KeyGuestCart)
		if errors.Is(err, kvstore.ErrNotFound) {
			err = nil
		}
	} else {
		err = kvstore.SetJSON(ctx, r.store, kvstore.KeyGuestCart, items, r.guestTTL)
	}
	if err != nil {
		return r.Snapshot(), pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving guest cart")
	}
	r.observedToken = ""
	r.setLocal(items)
	return r.Snapshot(), nil
}

func (r *Reconciler) setLocal(items []types.CartLineItem) {
	if items == nil {
		items = []types.CartLineItem{}
	}
	r.items = items
	r.totals = ComputeTotals(items, r.taxRate)
	r.loaded = true
	r.stale = false
}

func outOfStock(name string, stock int) error {
	label := name
	if label == "" {
		label = "this item"
	}
	return pkgerrors.Newf(pkgerrors.CodeOutOfStock, "only %d of %s in stock", stock, label).
		WithDetails(map[string]any{"available": stock})
}
