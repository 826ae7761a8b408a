package domain

import "time"

// Message sender roles.
const (
	// SenderUser marks a message written by the user.
	SenderUser = "user"

	// SenderAssistant marks a generated reply.
	SenderAssistant = "assistant"
)

// ChatSession represents a conversation. Deleting a session cascades to
// its messages; no other operation removes messages implicitly.
type ChatSession struct {
	// ID is the unique identifier for the session.
	ID string

	// Title is the human-readable session name.
	Title string

	// Favorite marks the session as pinned.
	Favorite bool

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	// UpdatedAt is touched on every completed chat turn.
	UpdatedAt time.Time
}

// Message is a single turn within a chat session. Message order within a
// session is creation order, which the chat service relies on when it
// builds generation history.
type Message struct {
	// ID is the unique identifier for the message.
	ID string

	// SessionID links to the parent ChatSession.
	SessionID string

	// Sender is SenderUser or SenderAssistant.
	Sender string

	// Content is the message text.
	Content string

	// RetrievedContext is the context snapshot a generated reply was
	// conditioned on. Empty on user messages and on assistant replies
	// produced without retrieval hits.
	RetrievedContext string

	// CreatedAt is when the message was persisted.
	CreatedAt time.Time
}
