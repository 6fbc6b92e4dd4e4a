package api

// ErrorResponse is the envelope for plain error replies. Handlers that need
// extra fields alongside the message (capacity numbers, re-lock guidance)
// build their own payload with the same "error" key.
type ErrorResponse struct {
	Error string `json:"error" example:"insufficient rooms available"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
