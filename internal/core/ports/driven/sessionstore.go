package driven

import (
	"context"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// SessionStore persists chat sessions and their ordered message history.
// Two invariants hold: deleting a session is the only operation that
// removes its messages (and removes all of them), and messages for a
// session are always returned in creation order.
type SessionStore interface {
	// CreateSession stores a new session.
	CreateSession(ctx context.Context, session *domain.ChatSession) error

	// GetSession retrieves a session by id. Unknown ids fail with
	// domain.ErrSessionNotFound.
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)

	// ListSessions returns all sessions, favourites first, then most
	// recently updated.
	ListSessions(ctx context.Context) ([]domain.ChatSession, error)

	// UpdateSession persists title and favourite changes and touches
	// updated_at.
	UpdateSession(ctx context.Context, session *domain.ChatSession) error

	// DeleteSession removes a session and cascades to its messages.
	DeleteSession(ctx context.Context, id string) error

	// ListMessages returns a session's messages in creation order.
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)

	// AppendExchange persists a user message and the generated assistant
	// reply in one transaction, touching the session's updated_at.
	// Both messages appear or neither does.
	AppendExchange(ctx context.Context, sessionID string, user, assistant *domain.Message) error

	// GetMessage retrieves a single message by id.
	GetMessage(ctx context.Context, id string) (*domain.Message, error)

	// UpdateMessage rewrites a message's content.
	UpdateMessage(ctx context.Context, message *domain.Message) error

	// DeleteMessage removes a single message.
	DeleteMessage(ctx context.Context, id string) error
}
