package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/kvstore"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/metrics"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

const resolveConcurrency = 8

// MergeReport summarizes a guest-to-account wishlist merge.
type MergeReport struct {
	Attempted int            `json:"attempted"`
	Merged    int            `json:"merged"`
	Failed    int            `json:"failed"`
	Wishlist  types.Wishlist `json:"wishlist"`
}

// Reconciler holds one visitor's wishlist. Entries share one shape in both
// modes; missing display fields are filled from the catalog on read.
type Reconciler struct {
	store    kvstore.Store
	remote   Remote
	catalog  Catalog
	guestTTL time.Duration
	logg     *logger.Logger
	metrics  *metrics.Storefront

	loaded        bool
	observedToken string
	items         []types.WishlistEntry
	stale         bool
	resolved      map[string]types.WishlistEntry
}

func newReconciler(store kvstore.Store, remote Remote, catalog Catalog, guestTTL time.Duration, logg *logger.Logger, m *metrics.Storefront) *Reconciler {
	return &Reconciler{
		store:    store,
		remote:   remote,
		catalog:  catalog,
		guestTTL: guestTTL,
		logg:     logg,
		metrics:  m,
		items:    []types.WishlistEntry{},
		resolved: make(map[string]types.WishlistEntry),
	}
}

func (r *Reconciler) Snapshot() types.Wishlist {
	items := make([]types.WishlistEntry, len(r.items))
	copy(items, r.items)
	return types.Wishlist{Items: items, Authenticated: r.observedToken != "", Stale: r.stale}
}

// Current serves the cached wishlist unless the stored token changed.
func (r *Reconciler) Current(ctx context.Context) (types.Wishlist, error) {
	token, err := r.token(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	if r.loaded && token == r.observedToken && !r.stale {
		return r.Snapshot(), nil
	}
	return r.Refresh(ctx)
}

// Refresh reloads from the backend or the guest store. Backend failures fall
// back to guest data.
func (r *Reconciler) Refresh(ctx context.Context) (types.Wishlist, error) {
	token, err := r.token(ctx)
	if err != nil {
		return r.Snapshot(), err
	}

	var items []types.WishlistEntry
	stale := false
	if token != "" {
		items, err = r.remote.GetWishlist(ctx, token)
		if err != nil {
			r.metrics.IncGuestFallback("wishlist")
			r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "remote wishlist unavailable, serving guest wishlist")
			stale = true
		}
	}
	if token == "" || stale {
		if items, err = r.loadGuest(ctx); err != nil {
			return r.Snapshot(), err
		}
	}

	r.observedToken = token
	r.setLocal(r.resolve(ctx, dedupe(items)))
	r.stale = stale
	return r.Snapshot(), nil
}

// Contains reports whether productID is on the wishlist.
func (r *Reconciler) Contains(ctx context.Context, productID string) (bool, error) {
	list, err := r.Current(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(list.Items, strings.TrimSpace(productID)) >= 0, nil
}

// Add puts productID on the wishlist. Adding an entry that is already present is a no-op.
func (r *Reconciler) Add(ctx context.Context, productID string) (types.Wishlist, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return r.Snapshot(), pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	token, err := r.token(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	if token != "" {
		if err := r.remote.AddToWishlist(ctx, token, productID); err != nil {
			return r.Snapshot(), err
		}
		return r.Refresh(ctx)
	}

	items, err := r.loadGuest(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	if indexOf(items, productID) < 0 {
		items = append(items, r.resolveOne(ctx, types.WishlistEntry{ID: productID}))
	}
	return r.saveGuest(ctx, items)
}

func (r *Reconciler) Remove(ctx context.Context, productID string) (types.Wishlist, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return r.Snapshot(), pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	token, err := r.token(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	if token != "" {
		if err := r.remote.RemoveFromWishlist(ctx, token, productID); err != nil {
			return r.Snapshot(), err
		}
		return r.Refresh(ctx)
	}

	items, err := r.loadGuest(ctx)
	if err != nil {
		return r.Snapshot(), err
	}
	if idx := indexOf(items, productID); idx >= 0 {
		items = append(items[:idx], items[idx+1:]...)
	}
	return r.saveGuest(ctx, items)
}

// MergeLocal posts every guest entry to the backend sequentially, then drops
// the guest wishlist and refreshes.
func (r *Reconciler) MergeLocal(ctx context.Context) (MergeReport, error) {
	token, err := r.token(ctx)
	if err != nil {
		return MergeReport{}, err
	}
	if token == "" {
		return MergeReport{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "merging a wishlist requires a signed-in visitor")
	}

	items, err := r.loadGuest(ctx)
	if err != nil {
		r.logg.Error(ctx, "reading guest wishlist for merge", err)
		items = nil
	}

	report := MergeReport{Attempted: len(items)}
	var errs error
	for _, item := range items {
		if err := r.remote.AddToWishlist(ctx, token, item.ID); err != nil {
			report.Failed++
			r.metrics.IncMergeItem("wishlist", false)
			errs = multierr.Append(errs, fmt.Errorf("merge %s: %w", item.ID, err))
			r.logg.Warn(r.logg.WithFields(ctx, map[string]any{"product_id": item.ID, "error": err.Error()}), "guest wishlist entry not merged")
			continue
		}
		report.Merged++
		r.metrics.IncMergeItem("wishlist", true)
	}

	if err := r.store.Delete(ctx, kvstore.KeyGuestWishlist); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		r.logg.Error(ctx, "clearing guest wishlist after merge", err)
	}

	list, refreshErr := r.Refresh(ctx)
	report.Wishlist = list
	return report, multierr.Append(errs, refreshErr)
}

// resolve fills display fields concurrently. Entries the catalog cannot
// resolve are returned as they are. A successful lookup is cached for the
// session even when the product has no image.
func (r *Reconciler) resolve(ctx context.Context, items []types.WishlistEntry) []types.WishlistEntry {
	out := make([]types.WishlistEntry, len(items))
	found := make([]bool, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, item := range items {
		if item.Resolved() {
			out[i] = item
			continue
		}
		if cached, ok := r.resolved[item.ID]; ok {
			out[i] = cached
			continue
		}
		g.Go(func() error {
			out[i], found[i] = r.lookup(gctx, item)
			return nil
		})
	}
	_ = g.Wait()

	for i, item := range out {
		if found[i] || item.Resolved() {
			r.resolved[item.ID] = item
		}
	}
	return out
}

func (r *Reconciler) resolveOne(ctx context.Context, item types.WishlistEntry) types.WishlistEntry {
	resolved := r.resolve(ctx, []types.WishlistEntry{item})
	return resolved[0]
}

func (r *Reconciler) lookup(ctx context.Context, item types.WishlistEntry) (types.WishlistEntry, bool) {
	if r.catalog == nil {
		return item, false
	}
	product, err := r.catalog.GetProduct(ctx, item.ID)
	if err != nil {
		r.logg.Warn(r.logg.WithFields(ctx, map[string]any{"product_id": item.ID, "error": err.Error()}), "wishlist entry not resolved")
		return item, false
	}
	resolved := types.WishlistEntryFromProduct(product)
	resolved.ID = item.ID
	if item.CachedName != "" {
		resolved.CachedName = item.CachedName
	}
	if item.CachedImage != "" {
		resolved.CachedImage = item.CachedImage
	}
	if item.CachedPrice != nil {
		resolved.CachedPrice = item.CachedPrice
	}
	return resolved, true
}

func (r *Reconciler) token(ctx context.Context) (string, error) {
	token, err := kvstore.GetString(ctx, r.store, kvstore.KeyToken)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading visitor session")
	}
	return strings.TrimSpace(token), nil
}

func (r *Reconciler) loadGuest(ctx context.Context) ([]types.WishlistEntry, error) {
	var items []types.WishlistEntry
	if _, err := kvstore.GetJSON(ctx, r.store, kvstore.KeyGuestWishlist, &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading guest wishlist")
	}
	return dedupe(items), nil
}

func (r *Reconciler) saveGuest(ctx context.Context, items []types.WishlistEntry) (types.Wishlist, error) {
	var err error
	if len(items) == 0 {
		err = r.store.Delete(ctx, kvstore.KeyGuestWishlist)
		if errors.Is(err, kvstore.ErrNotFound) {
			err = nil
		}
	} else {
		err = kvstore.SetJSON(ctx, r.store, kvstore.KeyGuestWishlist, items, r.guestTTL)
	}
	if err != nil {
		return r.Snapshot(), pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving guest wishlist")
	}
	r.observedToken = ""
	r.setLocal(items)
	r.stale = false
	return r.Snapshot(), nil
}

func (r *Reconciler) setLocal(items []types.WishlistEntry) {
	if items == nil {
		items = []types.WishlistEntry{}
	}
	r.items = items
	r.loaded = true
}

func indexOf(items []types.WishlistEntry, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func dedupe(items []types.WishlistEntry) []types.WishlistEntry {
	out := make([]types.WishlistEntry, 0, len(items))
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" || indexOf(out, item.ID) >= 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}
