package types

// MessageResponse acknowledges a write.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse acknowledges a write that produced a new row.
type CreatedResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// APIError is the body of every failed request.
type APIError struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// StatusResponse is returned by health probes.
type StatusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
