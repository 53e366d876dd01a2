package models

// ChatRequest is the payload sent to the direct chat endpoint.
type ChatRequest struct {
	Question string `json:"question"`
}

// AnswerResponse carries the first candidate's text back to the caller.
type AnswerResponse struct {
	Answer string `json:"answer"`
}

// HealthResponse reports configuration presence without leaking the key.
type HealthResponse struct {
	Status       string `json:"status"`
	APIKeyLoaded bool   `json:"api_key_loaded"`
	APIKeyLength int    `json:"api_key_length"`
}

// API Error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
