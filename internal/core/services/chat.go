package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService runs retrieval-augmented chat turns: retrieve context for
// the user's message, generate a reply, persist both as an atomic pair.
type ChatService struct {
	sessions  driven.SessionStore
	docStore  driven.DocumentStore
	embedder  driven.EmbeddingService
	generator driven.Generator
	topK      int
	threshold float64
}

// NewChatService creates a new chat service. topK and threshold bound
// context retrieval; non-positive values fall back to the defaults.
func NewChatService(
	sessions driven.SessionStore,
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	generator driven.Generator,
	topK int,
	threshold float64,
) *ChatService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	if threshold <= 0 {
		threshold = domain.DefaultThreshold
	}
	return &ChatService{
		sessions:  sessions,
		docStore:  docStore,
		embedder:  embedder,
		generator: generator,
		topK:      topK,
		threshold: threshold,
	}
}

// Send processes one chat turn. A failed turn persists nothing: the
// user message and assistant reply are written together only after the
// generator succeeds.
func (s *ChatService) Send(ctx context.Context, sessionID, message string) (*domain.Message, error) {
	logger.Section("Chat Turn")

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}
	if s.generator == nil {
		return nil, fmt.Errorf("%w: no generation provider configured", domain.ErrGeneratorUnavailable)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	retrieved, err := s.retrieve(ctx, message)
	if err != nil {
		return nil, err
	}

	history, err := s.history(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	reply, err := s.generator.Reply(ctx, message, retrieved, history)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Sender:    domain.SenderUser,
		Content:   message,
		CreatedAt: now,
	}
	assistant := &domain.Message{
		ID:               uuid.New().String(),
		SessionID:        sessionID,
		Sender:           domain.SenderAssistant,
		Content:          reply,
		RetrievedContext: retrieved,
		CreatedAt:        now,
	}

	if err := s.sessions.AppendExchange(ctx, sessionID, user, assistant); err != nil {
		return nil, err
	}

	logger.Info("Chat turn complete for session %s", sessionID)
	return assistant, nil
}

// retrieve embeds the message and collects the matching chunk texts,
// best match first, joined by blank lines. An empty corpus or no hits
// above threshold yields an empty context; the turn still proceeds.
func (s *ChatService) retrieve(ctx context.Context, message string) (string, error) {
	vec, err := s.embedder.Embed(ctx, message)
	if err != nil {
		return "", fmt.Errorf("embed message: %w", err)
	}

	results, err := s.docStore.Search(ctx, vec, s.topK, s.threshold)
	if err != nil {
		return "", err
	}
	logger.Debug("Retrieved %d context chunks", len(results))

	if len(results) == 0 {
		return "", nil
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Content
	}
	return strings.Join(texts, "\n\n"), nil
}

// history loads the session's prior turns in creation order.
func (s *ChatService) history(ctx context.Context, sessionID string) ([]driven.Exchange, error) {
	messages, err := s.sessions.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history := make([]driven.Exchange, len(messages))
	for i, m := range messages {
		history[i] = driven.Exchange{Role: m.Sender, Content: m.Content}
	}
	return history, nil
}
