// Package types holds wire shapes shared by the API layer and backends.
package types

// SuccessEnvelope wraps every 2xx payload the storefront returns.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
