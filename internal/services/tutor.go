package services

import (
	"context"
	"strings"
	"time"

	"medtutor-backend/internal/metrics"
)

type answerGenerator interface {
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}

type documentExtractor interface {
	ExtractPDF(data []byte) (string, error)
}

// TutorService runs the one request workflow shared by both chat variants:
// validate, (extract, bound,) compose, invoke, relay. All state lives within
// a single call; nothing persists across requests.
type TutorService struct {
	generator answerGenerator
	extractor documentExtractor
	maxChars  int
}

func NewTutorService(generator answerGenerator, extractor documentExtractor, maxDocumentChars int) *TutorService {
	return &TutorService{
		generator: generator,
		extractor: extractor,
		maxChars:  maxDocumentChars,
	}
}

// Ask answers a bare question through the tutoring persona.
func (s *TutorService) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", NewError(KindInvalidInput, "question is required")
	}

	return s.answer(ctx, VariantChat, question, "")
}

// AskDocument answers a question grounded on an uploaded PDF. Extracted text
// beyond the configured bound is silently dropped before composing the
// prompt.
func (s *TutorService) AskDocument(ctx context.Context, question string, document []byte) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", NewError(KindInvalidInput, "question is required")
	}
	if len(document) == 0 {
		return "", NewError(KindInvalidInput, "pdf file is required")
	}

	start := time.Now()
	text, err := s.extractor.ExtractPDF(document)
	if err != nil {
		metrics.ExtractionObserve("error", time.Since(start))
		return "", err
	}
	metrics.ExtractionObserve("success", time.Since(start))

	if strings.TrimSpace(text) == "" {
		return "", NewError(KindExtraction, "document contains no extractable text")
	}

	text = BoundDocumentText(text, s.maxChars)

	return s.answer(ctx, VariantDocument, question, text)
}

// answer is the single invocation point shared by both chat variants; the
// variant tag selects the template instead of duplicated call paths.
func (s *TutorService) answer(ctx context.Context, variant PromptVariant, question, documentText string) (string, error) {
	var prompt string
	switch variant {
	case VariantDocument:
		prompt = BuildDocumentPrompt(documentText, question)
	default:
		prompt = BuildChatPrompt(question)
	}

	return s.generator.GenerateAnswer(ctx, prompt)
}
