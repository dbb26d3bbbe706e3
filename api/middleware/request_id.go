package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bhargavsatvara/zyqora-storefront/api/responses"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
)

const maxRequestIDLen = 64

// RequestID accepts a caller supplied id made of letters, digits, '-' and '_'
// and mints a uuid otherwise. The id is echoed on the response.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(responses.RequestIDHeader)
			if !validRequestID(reqID) {
				reqID = uuid.NewString()
			}

			w.Header().Set(responses.RequestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
