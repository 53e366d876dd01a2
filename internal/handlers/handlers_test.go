package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medtutor-backend/internal/models"
	"medtutor-backend/internal/services"
)

const testAPIKey = "AIzaSyD-test-key-1234567890"

type stubTutor struct {
	askCalls         int
	askDocumentCalls int
	lastQuestion     string
	lastDocument     []byte
	answer           string
	err              error
}

func (s *stubTutor) Ask(ctx context.Context, question string) (string, error) {
	s.askCalls++
	s.lastQuestion = question
	return s.answer, s.err
}

func (s *stubTutor) AskDocument(ctx context.Context, question string, document []byte) (string, error) {
	s.askDocumentCalls++
	s.lastQuestion = question
	s.lastDocument = document
	return s.answer, s.err
}

func newTestHandler(tutor *stubTutor, apiKey string) *ChatHandler {
	return NewChatHandler(tutor, apiKey, 20<<20)
}

func decodeError(t *testing.T, body *bytes.Buffer) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

// ─── Health ───

func TestHealth_KeyLoaded(t *testing.T) {
	h := newTestHandler(&stubTutor{}, testAPIKey)

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp models.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.APIKeyLoaded {
		t.Errorf("expected api_key_loaded=true")
	}
	if resp.APIKeyLength != len(testAPIKey) {
		t.Errorf("expected api_key_length %d, got %d", len(testAPIKey), resp.APIKeyLength)
	}
}

func TestHealth_KeyMissing(t *testing.T) {
	h := newTestHandler(&stubTutor{}, "")

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp models.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.APIKeyLoaded {
		t.Errorf("expected api_key_loaded=false")
	}
	if resp.APIKeyLength != 0 {
		t.Errorf("expected api_key_length 0, got %d", resp.APIKeyLength)
	}
}

// ─── Chat ───

func TestChat_InvalidInputNeverCallsService(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing question", `{}`},
		{"empty question", `{"question":""}`},
		{"whitespace question", `{"question":"  \n "}`},
		{"invalid json", `{question`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tutor := &stubTutor{answer: "unused"}
			h := newTestHandler(tutor, testAPIKey)

			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			h.Chat(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			if tutor.askCalls != 0 {
				t.Errorf("service was called for invalid input")
			}
		})
	}
}

func TestChat_Success(t *testing.T) {
	tutor := &stubTutor{answer: "Hypertension is persistently elevated arterial blood pressure."}
	h := newTestHandler(tutor, testAPIKey)

	body := `{"question":"What is hypertension?"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.Chat(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.AnswerResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != tutor.answer {
		t.Errorf("answer not relayed verbatim: %q", resp.Answer)
	}
	if tutor.askCalls != 1 {
		t.Errorf("expected one service call, got %d", tutor.askCalls)
	}
}

func TestChat_UpstreamFailureIsGeneric(t *testing.T) {
	tutor := &stubTutor{
		err: services.WrapError(services.KindUpstream, "Gemini API error",
			&urlError{detail: "Post https://generativelanguage.googleapis.com/?key=" + testAPIKey + ": timeout"}),
	}
	h := newTestHandler(tutor, testAPIKey)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"question":"anything"}`))
	rr := httptest.NewRecorder()

	h.Chat(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), testAPIKey) {
		t.Errorf("response body leaks the API key")
	}
	if strings.Contains(rr.Body.String(), "generativelanguage") {
		t.Errorf("response body leaks upstream detail")
	}

	resp := decodeError(t, rr.Body)
	if resp.Error.Code != "UPSTREAM_ERROR" {
		t.Errorf("expected UPSTREAM_ERROR, got %s", resp.Error.Code)
	}
}

type urlError struct{ detail string }

func (e *urlError) Error() string { return e.detail }

func TestChat_ContentBlockedHasDistinctCode(t *testing.T) {
	tutor := &stubTutor{err: services.NewError(services.KindContentBlocked, "prompt blocked by safety filters")}
	h := newTestHandler(tutor, testAPIKey)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"question":"anything"}`))
	rr := httptest.NewRecorder()

	h.Chat(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	resp := decodeError(t, rr.Body)
	if resp.Error.Code != "CONTENT_BLOCKED" {
		t.Errorf("expected CONTENT_BLOCKED, got %s", resp.Error.Code)
	}
}

// ─── Ask ───

func multipartBody(t *testing.T, question string, pdfData []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if question != "" {
		if err := w.WriteField("question", question); err != nil {
			t.Fatalf("failed to write question field: %v", err)
		}
	}
	if pdfData != nil {
		fw, err := w.CreateFormFile("pdf", "notes.pdf")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		fw.Write(pdfData)
	}
	w.Close()

	return buf, w.FormDataContentType()
}

func TestAsk_MissingPartsNeverCallService(t *testing.T) {
	tests := []struct {
		name     string
		question string
		pdfData  []byte
	}{
		{"missing file", "What is it?", nil},
		{"missing question", "", []byte("%PDF-1.4 fake")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tutor := &stubTutor{answer: "unused"}
			h := newTestHandler(tutor, testAPIKey)

			body, contentType := multipartBody(t, tc.question, tc.pdfData)
			req := httptest.NewRequest(http.MethodPost, "/ask", body)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()

			h.Ask(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if tutor.askDocumentCalls != 0 {
				t.Errorf("service was called for invalid input")
			}
		})
	}
}

func TestAsk_Success(t *testing.T) {
	tutor := &stubTutor{answer: "The document says hypertension is high blood pressure."}
	h := newTestHandler(tutor, testAPIKey)

	pdfData := []byte("%PDF-1.4 fake content")
	body, contentType := multipartBody(t, "What is hypertension?", pdfData)
	req := httptest.NewRequest(http.MethodPost, "/ask", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.Ask(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.AnswerResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != tutor.answer {
		t.Errorf("answer not relayed verbatim: %q", resp.Answer)
	}
	if tutor.lastQuestion != "What is hypertension?" {
		t.Errorf("question not forwarded: %q", tutor.lastQuestion)
	}
	if !bytes.Equal(tutor.lastDocument, pdfData) {
		t.Errorf("document bytes not forwarded intact")
	}
}

func TestAsk_ExtractionFailure(t *testing.T) {
	tutor := &stubTutor{err: services.NewError(services.KindExtraction, "no extractable text found in pdf")}
	h := newTestHandler(tutor, testAPIKey)

	body, contentType := multipartBody(t, "What is it?", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/ask", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.Ask(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	resp := decodeError(t, rr.Body)
	if resp.Error.Code != "EXTRACTION_ERROR" {
		t.Errorf("expected EXTRACTION_ERROR, got %s", resp.Error.Code)
	}
}
