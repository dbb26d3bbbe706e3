package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body the storefront UI turns into a toast or inline message.
// Retryable drives the "try again" affordance.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
