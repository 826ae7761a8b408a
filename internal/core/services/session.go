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
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// DefaultSessionTitle is used when a session is created without one.
const DefaultSessionTitle = "New Chat"

// SessionService exposes session and message CRUD to the transport layer.
type SessionService struct {
	store driven.SessionStore
}

// NewSessionService creates a new session service.
func NewSessionService(store driven.SessionStore) *SessionService {
	return &SessionService{store: store}
}

// Create starts a new session with the given title.
func (s *SessionService) Create(ctx context.Context, title string) (*domain.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultSessionTitle
	}

	now := time.Now().UTC()
	session := &domain.ChatSession{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get retrieves a session by id.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.ChatSession, error) {
	return s.store.GetSession(ctx, id)
}

// List returns all sessions, favourites first.
func (s *SessionService) List(ctx context.Context) ([]domain.ChatSession, error) {
	return s.store.ListSessions(ctx)
}

// Rename changes a session's title.
func (s *SessionService) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: session title is empty", domain.ErrInvalidInput)
	}

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return err
	}

	session.Title = title
	return s.store.UpdateSession(ctx, session)
}

// SetFavorite toggles the favourite flag.
func (s *SessionService) SetFavorite(ctx context.Context, id string, favorite bool) error {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return err
	}

	session.Favorite = favorite
	return s.store.UpdateSession(ctx, session)
}

// Delete removes a session and all of its messages.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteSession(ctx, id)
}

// Messages returns a session's history in creation order.
func (s *SessionService) Messages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	// Resolve the session first so an unknown id fails with
	// ErrSessionNotFound rather than an empty history.
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, sessionID)
}

// EditMessage rewrites a message's content.
func (s *SessionService) EditMessage(ctx context.Context, id, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("%w: message content is empty", domain.ErrInvalidInput)
	}

	message, err := s.store.GetMessage(ctx, id)
	if err != nil {
		return err
	}

	message.Content = content
	return s.store.UpdateMessage(ctx, message)
}

// DeleteMessage removes a single message.
func (s *SessionService) DeleteMessage(ctx context.Context, id string) error {
	return s.store.DeleteMessage(ctx, id)
}
