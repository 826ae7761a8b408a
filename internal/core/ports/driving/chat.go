package driving

import (
	"context"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// ChatService runs retrieval-augmented chat turns.
type ChatService interface {
	// Send processes one chat turn: retrieves context for the message,
	// generates an assistant reply, and persists both messages as an
	// atomic pair. Returns the persisted assistant message.
	Send(ctx context.Context, sessionID, message string) (*domain.Message, error)
}

// SessionService exposes session and message CRUD to the transport layer.
type SessionService interface {
	// Create starts a new session with the given title.
	Create(ctx context.Context, title string) (*domain.ChatSession, error)

	// Get retrieves a session by id.
	Get(ctx context.Context, id string) (*domain.ChatSession, error)

	// List returns all sessions, favourites first.
	List(ctx context.Context) ([]domain.ChatSession, error)

	// Rename changes a session's title.
	Rename(ctx context.Context, id, title string) error

	// SetFavorite toggles the favourite flag.
	SetFavorite(ctx context.Context, id string, favorite bool) error

	// Delete removes a session and all of its messages.
	Delete(ctx context.Context, id string) error

	// Messages returns a session's history in creation order.
	Messages(ctx context.Context, sessionID string) ([]domain.Message, error)

	// EditMessage rewrites a message's content.
	EditMessage(ctx context.Context, id, content string) error

	// DeleteMessage removes a single message.
	DeleteMessage(ctx context.Context, id string) error
}
