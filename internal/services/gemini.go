package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"medtutor-backend/internal/metrics"
)

// GeminiService wraps the generative-language client. The client is safe for
// concurrent use; no other state is shared across requests.
type GeminiService struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

func NewGeminiService(apiKey, modelName string, timeout time.Duration) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	return &GeminiService{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// GenerateAnswer sends one prompt and returns the first candidate's text.
// The call carries an explicit timeout; there are no retries, so any remote
// failure is terminal for the request that issued it.
func (s *GeminiService) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		metrics.GenerationObserve("error", time.Since(start))
		return "", WrapError(KindUpstream, "Gemini API error", err)
	}

	answer, err := answerFromResponse(resp)
	if err != nil {
		outcome := "error"
		if KindOf(err) == KindContentBlocked {
			outcome = "blocked"
		}
		metrics.GenerationObserve(outcome, time.Since(start))
		return "", err
	}

	metrics.GenerationObserve("success", time.Since(start))
	return answer, nil
}

// answerFromResponse extracts the first candidate's text, classifying empty
// responses. Safety-block detection is best effort: block-reason and
// finish-reason metadata is not uniformly present across API versions, so an
// unclassified empty response degrades to an upstream failure.
func answerFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return "", NewError(KindContentBlocked, fmt.Sprintf("prompt blocked by safety filters (%v)", resp.PromptFeedback.BlockReason))
		}
		return "", NewError(KindUpstream, "Gemini returned no candidates")
	}

	// Only the first candidate is used.
	cand := resp.Candidates[0]
	if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonUnspecified {
		log.Printf("Gemini candidate finished with reason %v", cand.FinishReason)
	}
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", NewError(KindContentBlocked, fmt.Sprintf("candidate blocked by safety filters (%v)", cand.FinishReason))
	}

	text := candidateText(cand)
	if strings.TrimSpace(text) == "" {
		for _, rating := range cand.SafetyRatings {
			if rating != nil && rating.Blocked {
				return "", NewError(KindContentBlocked, fmt.Sprintf("candidate blocked on %v", rating.Category))
			}
		}
		return "", NewError(KindUpstream, "Gemini returned an empty candidate")
	}

	return text, nil
}

func candidateText(cand *genai.Candidate) string {
	if cand.Content == nil {
		return ""
	}

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String()
}
