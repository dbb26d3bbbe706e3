package middleware

import (
	"net/http"
	"time"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/auth/session"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/config"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
)

// Session identifies the visitor by the X-Session-Id header or the session
// cookie. Visitors without a valid id get a new one, echoed in both.
func Session(cfg config.SessionConfig, cookieTTL time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "zq_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(session.HeaderName)
			if !session.Valid(id) {
				id = ""
				if c, err := r.Cookie(cookieName); err == nil && session.Valid(c.Value) {
					id = c.Value
				}
			}

			if id == "" {
				fresh, err := session.NewID()
				if err != nil {
					logError(r.Context(), logg, "generate session id", err)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				id = fresh
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(session.HeaderName, id)

			ctx := WithSessionID(r.Context(), id)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
