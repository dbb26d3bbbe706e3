package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryPrice reads a non-negative amount; "" when absent.
func ParseQueryPrice(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a non-negative amount").WithDetails(map[string]any{"field": key})
	}
	return value.String(), nil
}

// QueryString returns the trimmed value of key capped at maxLen.
func QueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}
