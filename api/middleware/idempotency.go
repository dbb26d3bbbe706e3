package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/bhargavsatvara/zyqora-storefront/api/responses"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
	pkgredis "github.com/bhargavsatvara/zyqora-storefront/pkg/redis"
)

const (
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
)

type routeMatcher func(string) bool

type idempotencyRule struct {
	method  string
	matcher routeMatcher
	ttl     time.Duration
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchExact("/api/v1/auth/signup"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchPrefix("/api/v1/reviews/"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchExact("/api/v1/checkout"), ttl: criticalIdempotencyTTL},
}

// pendingTTL bounds how long an in-flight reservation blocks the key if the
// gateway dies before finishing the request.
const pendingTTL = 2 * time.Minute

type idempotencyRecord struct {
	Pending     bool              `json:"pending,omitempty"`
	Status      int               `json:"status,omitempty"`
	Body        string            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency guards the order-placing and account-creating routes against
// double submits. The first request with a key reserves it; a concurrent
// duplicate gets 409 until the first finishes. A 2xx response is stored and
// replayed for later requests with the same key and body; any other outcome
// releases the key so the visitor can retry. checkoutTTL overrides the
// retention of checkout responses when positive.
func Idempotency(store pkgredis.IdempotencyStore, checkoutTTL time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := routeTTL(r.Method, routePattern(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if idempotencyKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}
			if ttl == criticalIdempotencyTTL && checkoutTTL > 0 {
				ttl = checkoutTTL
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), idempotencyKey)

			existing, err := loadRecord(ctx, store, key)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if existing == nil {
				reserved, err := reserve(ctx, store, key, requestHash)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
					return
				}
				if !reserved {
					// Lost the race to a concurrent duplicate.
					existing = &idempotencyRecord{Pending: true, RequestHash: requestHash}
				}
			}
			if existing != nil {
				replayOrReject(ctx, logg, w, existing, requestHash)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			// The reservation is dropped in every case; SetNX then stores the final record.
			if err := store.Del(ctx, key); err != nil {
				logError(ctx, logg, "release idempotency key", err)
			}
			status := defaultStatus(rec.status)
			if status < 200 || status >= 300 {
				return
			}

			record := idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}
			payload, err := json.Marshal(record)
			if err != nil {
				logError(ctx, logg, "marshal idempotency record", err)
				return
			}
			if _, err := store.SetNX(ctx, key, string(payload), ttl); err != nil {
				logError(ctx, logg, "persist idempotency record", err)
			}
		})
	}
}

func loadRecord(ctx context.Context, store pkgredis.IdempotencyStore, key string) (*idempotencyRecord, error) {
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) || (err == nil && stored == "") {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func reserve(ctx context.Context, store pkgredis.IdempotencyStore, key, requestHash string) (bool, error) {
	payload, err := json.Marshal(idempotencyRecord{Pending: true, RequestHash: requestHash})
	if err != nil {
		return false, err
	}
	return store.SetNX(ctx, key, string(payload), pendingTTL)
}

func replayOrReject(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, record *idempotencyRecord, requestHash string) {
	switch {
	case record.RequestHash != requestHash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case record.Pending:
		w.Header().Set("Retry-After", "1")
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "this request is still being processed"))
	default:
		writeStoredResponse(w, record)
	}
}

func buildScope(r *http.Request) string {
	parts := []string{
		SessionIDFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}
	return strings.Join(parts, "|")
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if record == nil {
		return
	}
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func routeTTL(method, pattern string) (time.Duration, bool) {
	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if pattern == "" {
		return 0, false
	}
	for _, rule := range idempotencyRules {
		if rule.method != method {
			continue
		}
		if rule.matcher(pattern) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func matchExact(path string) routeMatcher {
	return func(pattern string) bool {
		return pattern == path
	}
}

func matchPrefix(prefix string) routeMatcher {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix)
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
