package types

// SuccessEnvelope wraps every 2xx body.
type SuccessEnvelope struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// APIError is the public half of a typed error. RequestID echoes X-Request-Id so
// operators can find the matching log line.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type ErrorEnvelope struct {
	OK    bool     `json:"ok"`
	Error APIError `json:"error"`
}
