package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"medtutor-backend/internal/models"
	"medtutor-backend/internal/services"
)

type tutorService interface {
	Ask(ctx context.Context, question string) (string, error)
	AskDocument(ctx context.Context, question string, document []byte) (string, error)
}

type ChatHandler struct {
	tutor          tutorService
	apiKey         string
	maxUploadBytes int64
}

func NewChatHandler(tutor tutorService, apiKey string, maxUploadBytes int64) *ChatHandler {
	return &ChatHandler{
		tutor:          tutor,
		apiKey:         apiKey,
		maxUploadBytes: maxUploadBytes,
	}
}

// Health reports whether the API key is configured. Only presence and length
// are exposed, never the value.
func (h *ChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:       "ok",
		APIKeyLoaded: h.apiKey != "",
		APIKeyLength: len(h.apiKey),
	})
}

// Chat answers a bare question through the tutoring persona.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Question is required", r))
		return
	}

	answer, err := h.tutor.Ask(r.Context(), req.Question)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AnswerResponse{Answer: answer})
}

// Ask answers a question grounded on an uploaded PDF. Multipart form: one
// "pdf" file plus a "question" field.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart form", r))
		return
	}

	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Question is required", r))
		return
	}

	file, _, err := r.FormFile("pdf")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "PDF file is required", r))
		return
	}
	defer file.Close()

	document, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Could not read uploaded file", r))
		return
	}

	answer, err := h.tutor.AskDocument(r.Context(), question, document)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AnswerResponse{Answer: answer})
}

// handleServiceError is the single point mapping tagged service errors to
// HTTP responses. Full detail is logged server-side; the caller only ever
// sees the fixed message for the error's kind.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("request %s failed: %v", r.Header.Get("X-Request-ID"), err)

	switch services.KindOf(err) {
	case services.KindInvalidInput:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid input", r))
	case services.KindExtraction:
		writeJSON(w, http.StatusInternalServerError, errorResp("EXTRACTION_ERROR", "Could not extract text from the uploaded document", r))
	case services.KindContentBlocked:
		writeJSON(w, http.StatusInternalServerError, errorResp("CONTENT_BLOCKED", "The request was blocked by content safety filters", r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("UPSTREAM_ERROR", "Failed to get AI response", r))
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}
