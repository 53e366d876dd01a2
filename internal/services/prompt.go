package services

import (
	"strings"
	"unicode/utf8"
)

// PromptVariant selects which instructional template wraps the question.
type PromptVariant string

const (
	VariantChat     PromptVariant = "chat"
	VariantDocument PromptVariant = "document"
)

const chatPersona = `You are MedTutor, a patient and precise medical tutor for students.
Explain concepts clearly, define technical terms on first use, and keep answers focused on the question asked.
Do not invent citations. If a question is outside medicine, answer briefly and steer back to the study topic.`

// FallbackAnswer is the exact sentence the model is instructed to emit when
// the supplied document does not contain the answer.
const FallbackAnswer = "The provided document does not contain the answer to this question."

// BuildChatPrompt wraps a bare question in the tutoring persona.
func BuildChatPrompt(question string) string {
	var b strings.Builder

	b.WriteString(chatPersona)
	b.WriteString("\n\nStudent question:\n")
	b.WriteString(question)
	b.WriteString("\n")

	return b.String()
}

// BuildDocumentPrompt embeds extracted document text (already bounded by the
// caller) and the question, instructing the model to answer only from the
// supplied text.
func BuildDocumentPrompt(documentText, question string) string {
	var b strings.Builder

	b.WriteString(chatPersona)
	b.WriteString("\n\nAnswer the question using ONLY the document text below.\n")
	b.WriteString("If the document does not contain the answer, reply with exactly this sentence: ")
	b.WriteString(FallbackAnswer)
	b.WriteString("\n\n---DOCUMENT START---\n")
	b.WriteString(documentText)
	b.WriteString("\n---DOCUMENT END---\n\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n")

	return b.String()
}

// BoundDocumentText truncates extracted text to at most maxChars characters,
// counted from the start. Truncation is lossy and silent: anything past the
// bound is dropped, including the part of the document that may hold the
// answer. No summarization is attempted. The cut never splits a rune; a
// prompt must stay valid UTF-8 or the upstream call rejects it outright.
func BoundDocumentText(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}

	cut := text[:maxChars]
	for i := 0; i < utf8.UTFMax-1 && len(cut) > 0; i++ {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r != utf8.RuneError || size != 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}
