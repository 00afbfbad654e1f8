// Package responder orchestrates one retrieval-augmented exchange: retrieve
// the chunks nearest the question, hand them to the model together with the
// prior turns, and append the exchange to the history.
package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"docchat/internal/index"
	"docchat/internal/models"
)

// ErrEmptyQuestion is returned when Answer is called with a blank question.
var ErrEmptyQuestion = errors.New("question must not be empty")

// Completer is the language-model capability the responder needs.
type Completer interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent) (string, error)
	Complete(ctx context.Context, prompt string) (string, error)
}

// Responder binds one index handle, an embedder and a model client. It is
// invalidated together with its index: rebuilding the index replaces both.
type Responder struct {
	index    index.Index
	embedder embeddings.Embedder
	llm      Completer
	topK     int
}

func New(idx index.Index, embedder embeddings.Embedder, llm Completer, topK int) *Responder {
	return &Responder{index: idx, embedder: embedder, llm: llm, topK: topK}
}

// Answer runs one retrieval-augmented exchange. On success the returned
// history is the input history plus exactly one user turn and one assistant
// turn; on any error the input history is returned unchanged so the caller
// can retry the same question.
func (r *Responder) Answer(ctx context.Context, question string, history []models.Turn) (string, []models.Turn, error) {
	if strings.TrimSpace(question) == "" {
		return "", history, ErrEmptyQuestion
	}
	if r == nil || r.index == nil {
		return "", history, index.ErrIndexUnavailable
	}

	queryVector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return "", history, fmt.Errorf("embedding question: %w", err)
	}

	contexts, err := r.index.Query(ctx, queryVector, r.topK)
	if err != nil {
		return "", history, fmt.Errorf("retrieving context: %w", err)
	}
	log.Debug().Int("chunks", len(contexts)).Msg("Retrieved context")

	var contextBlock strings.Builder
	for _, chunk := range contexts {
		contextBlock.WriteString(chunk)
		contextBlock.WriteString("\n\n")
	}

	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, textMessage(schema.ChatMessageTypeSystem, models.RAGSystemPrompt))
	for _, turn := range history {
		role := schema.ChatMessageTypeHuman
		if turn.Role == models.RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		messages = append(messages, textMessage(role, turn.Content))
	}
	messages = append(messages, textMessage(
		schema.ChatMessageTypeHuman,
		fmt.Sprintf(models.RAGUserPromptTemplate, contextBlock.String(), question),
	))

	answer, err := r.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", history, err
	}

	return answer, models.AppendExchange(history, question, answer), nil
}

// WebAnswer produces an unrestricted answer with no document context. Used
// once per accepted fallback offer.
func (r *Responder) WebAnswer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}
	return r.llm.Complete(ctx, fmt.Sprintf(models.WebSearchPromptTemplate, question))
}

func textMessage(role schema.ChatMessageType, text string) llms.MessageContent {
	return llms.MessageContent{
		Role:  role,
		Parts: []llms.ContentPart{llms.TextContent{Text: text}},
	}
}
