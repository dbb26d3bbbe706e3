package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/bhargavsatvara/zyqora-storefront/pkg/auth"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/enums"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/events"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/kvstore"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/validate"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, sessionID string, req LoginRequest) (*SessionView, error)
	Signup(ctx context.Context, sessionID string, req SignupRequest) (*SessionView, error)
	Logout(ctx context.Context, sessionID string) error
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, resetToken string, req ResetPasswordRequest) error
	Me(ctx context.Context, sessionID string) (*SessionView, error)
}

// Backend is the subset of the commerce API used for authentication.
type Backend interface {
	Login(ctx context.Context, email, password string) (types.AuthSession, error)
	Signup(ctx context.Context, name, email, password string) (types.AuthSession, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, password string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Store         kvstore.Store
	Backend       Backend
	Bus           *events.Bus
	PersistentTTL time.Duration
	SessionTTL    time.Duration
	Logger        *logger.Logger
	Now           func() time.Time
}

type service struct {
	store         kvstore.Store
	backend       Backend
	bus           *events.Bus
	persistentTTL time.Duration
	sessionTTL    time.Duration
	logg          *logger.Logger
	now           func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("guest store is required")
	}
	if params.Backend == nil {
		return nil, fmt.Errorf("auth backend is required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus is required")
	}
	if params.PersistentTTL <= 0 || params.SessionTTL <= 0 {
		return nil, fmt.Errorf("session TTLs must be positive")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:         params.Store,
		backend:       params.Backend,
		bus:           params.Bus,
		persistentTTL: params.PersistentTTL,
		sessionTTL:    params.SessionTTL,
		logg:          logg,
		now:           now,
	}, nil
}

func (s *service) Login(ctx context.Context, sessionID string, req LoginRequest) (*SessionView, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	session, err := s.backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, sessionID, session, req.RememberMe)
}

func (s *service) Signup(ctx context.Context, sessionID string, req SignupRequest) (*SessionView, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	session, err := s.backend.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, sessionID, session, req.RememberMe)
}

// establish stores the backend session in the visitor scope and announces the
// login once.
func (s *service) establish(ctx context.Context, sessionID string, session types.AuthSession, remember bool) (*SessionView, error) {
	if strings.TrimSpace(session.Token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "authentication response did not include a token")
	}
	ttl := s.sessionTTL
	if remember {
		ttl = s.persistentTTL
	}
	now := s.now()
	ttl, ok := pkgauth.CapTTL(session.Token, ttl, now)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication token already expired")
	}

	scope := kvstore.Scope(s.store, sessionID)
	if err := kvstore.SetJSON(ctx, scope, kvstore.KeyUser, session.User, ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist user")
	}
	if err := scope.Set(ctx, kvstore.KeyToken, []byte(session.Token), ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist token")
	}

	ctx = s.logg.WithUserID(s.logg.WithSessionID(ctx, sessionID), session.User.ID)
	s.logg.Info(s.logg.WithField(ctx, "remember_me", remember), "visitor signed in")
	s.publish(ctx, events.SessionEvent{
		Kind:      enums.SessionEventLoggedIn,
		SessionID: sessionID,
		Token:     session.Token,
		UserID:    session.User.ID,
	})

	user := session.User
	expiresAt := now.Add(ttl).UTC()
	return &SessionView{Authenticated: true, User: &user, ExpiresAt: &expiresAt}, nil
}

// Logout forgets the backend session. Visitors that were not signed in get a
// no-op and no event.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	scope := kvstore.Scope(s.store, sessionID)
	token, err := kvstore.GetString(ctx, scope, kvstore.KeyToken)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read token")
	}
	for _, key := range []string{kvstore.KeyToken, kvstore.KeyUser, kvstore.KeyCheckoutAttempt} {
		if err := scope.Delete(ctx, key); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear "+key)
		}
	}
	if token == "" {
		return nil
	}
	ctx = s.logg.WithSessionID(ctx, sessionID)
	s.logg.Info(ctx, "visitor signed out")
	s.publish(ctx, events.SessionEvent{
		Kind:      enums.SessionEventLoggedOut,
		SessionID: sessionID,
		Token:     token,
	})
	return nil
}

func (s *service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return err
	}
	return s.backend.ForgotPassword(ctx, req.Email)
}

func (s *service) ResetPassword(ctx context.Context, resetToken string, req ResetPasswordRequest) error {
	resetToken = strings.TrimSpace(resetToken)
	if resetToken == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reset token is required")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	return s.backend.ResetPassword(ctx, resetToken, req.Password)
}

// Me reports the stored sign-in state. Guests get Authenticated=false, not an error.
func (s *service) Me(ctx context.Context, sessionID string) (*SessionView, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	scope := kvstore.Scope(s.store, sessionID)
	token, err := kvstore.GetString(ctx, scope, kvstore.KeyToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read token")
	}
	if token == "" {
		return &SessionView{}, nil
	}
	var user types.User
	if _, err := kvstore.GetJSON(ctx, scope, kvstore.KeyUser, &user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read user")
	}
	view := &SessionView{Authenticated: true, User: &user}
	if claims, err := pkgauth.InspectToken(token); err == nil && claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.UTC()
		view.ExpiresAt = &exp
	}
	return view, nil
}

func (s *service) publish(ctx context.Context, evt events.SessionEvent) {
	evt.OccurredAt = s.now().UTC()
	// handler failures are already logged by the bus
	_ = s.bus.Publish(ctx, evt)
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
