package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/config"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
)

const appName = "zyqora-storefront"

// keyPrefixes lists the secret and restricted key prefixes accepted per environment.
var keyPrefixes = map[string][2]string{
	"test": {"sk_test_", "rk_test_"},
	"live": {"sk_live_", "rk_live_"},
}

var errAPIKeyRequired = errors.New("stripe api key is required")

// Client records which Stripe account mode the gateway confirms payments in.
type Client struct {
	environment string
	restricted  bool
}

// NewClient checks the key against the environment and installs it for the
// payment intent calls made by Payments.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env := cfg.Environment()
	prefixes, ok := keyPrefixes[env]
	if !ok {
		return nil, fmt.Errorf("stripe environment must be test or live (got %q)", env)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	var restricted bool
	switch {
	case strings.HasPrefix(apiKey, prefixes[0]):
	case strings.HasPrefix(apiKey, prefixes[1]):
		restricted = true
	default:
		return nil, fmt.Errorf("stripe %s environment needs a %s or %s key", env, prefixes[0], prefixes[1])
	}

	stripe.Key = apiKey
	stripe.SetAppInfo(&stripe.AppInfo{Name: appName})

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"stripe_env": env, "restricted_key": restricted})
		logg.Info(ctx, "stripe payments enabled")
	}
	return &Client{environment: env, restricted: restricted}, nil
}

// Environment reports "test" or "live".
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// Restricted reports whether a restricted (rk_) key is in use.
func (c *Client) Restricted() bool {
	return c != nil && c.restricted
}
