package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// Ensure sessionStore implements the interface.
var _ driven.SessionStore = (*sessionStore)(nil)

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

// CreateSession stores a new session.
func (s *sessionStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, title, is_favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, session.ID, session.Title, session.Favorite, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: creating session: %v", domain.ErrStore, err)
	}
	return nil
}

// GetSession retrieves a session by id.
func (s *sessionStore) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, is_favorite, created_at, updated_at
		FROM chat_sessions WHERE id = ?
	`, id)

	var session domain.ChatSession
	if err := row.Scan(&session.ID, &session.Title, &session.Favorite,
		&session.CreatedAt, &session.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: scanning session: %v", domain.ErrStore, err)
	}
	return &session, nil
}

// ListSessions returns all sessions, favourites first, then most recently
// updated.
func (s *sessionStore) ListSessions(ctx context.Context) ([]domain.ChatSession, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, is_favorite, created_at, updated_at
		FROM chat_sessions
		ORDER BY is_favorite DESC, updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sessions: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var sessions []domain.ChatSession //nolint:prealloc // size unknown from query
	for rows.Next() {
		var session domain.ChatSession
		if err := rows.Scan(&session.ID, &session.Title, &session.Favorite,
			&session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning session: %v", domain.ErrStore, err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sessions: %v", domain.ErrStore, err)
	}
	return sessions, nil
}

// UpdateSession persists title and favourite changes.
func (s *sessionStore) UpdateSession(ctx context.Context, session *domain.ChatSession) error {
	session.UpdatedAt = time.Now().UTC()
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE chat_sessions SET title = ?, is_favorite = ?, updated_at = ?
		WHERE id = ?
	`, session.Title, session.Favorite, session.UpdatedAt, session.ID)
	if err != nil {
		return fmt.Errorf("%w: updating session: %v", domain.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking update result: %v", domain.ErrStore, err)
	}
	if affected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// DeleteSession removes a session; messages go with it via the foreign key.
func (s *sessionStore) DeleteSession(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM chat_sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting session: %v", domain.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking delete result: %v", domain.ErrStore, err)
	}
	if affected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// ListMessages returns a session's messages in creation order. Equal
// timestamps fall back to insertion order.
func (s *sessionStore) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, session_id, sender, content, retrieved_context, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at, rowid
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying messages: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var messages []domain.Message //nolint:prealloc // size unknown from query
	for rows.Next() {
		msg, err := scanMessageRows(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating messages: %v", domain.ErrStore, err)
	}
	return messages, nil
}

// AppendExchange persists the user message and the assistant reply in one
// transaction, touching the session's updated_at. Both appear or neither.
func (s *sessionStore) AppendExchange(ctx context.Context, sessionID string, user, assistant *domain.Message) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Touch the session first: an unknown session fails the whole
	// exchange before any message row exists.
	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"UPDATE chat_sessions SET updated_at = ? WHERE id = ?", now, sessionID)
	if err != nil {
		return fmt.Errorf("%w: touching session: %v", domain.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking session touch: %v", domain.ErrStore, err)
	}
	if affected == 0 {
		return domain.ErrSessionNotFound
	}

	for _, msg := range []*domain.Message{user, assistant} {
		if msg.ID == "" {
			msg.ID = uuid.New().String()
		}
		msg.SessionID = sessionID
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = now
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO messages (id, session_id, sender, content, retrieved_context, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, msg.ID, msg.SessionID, msg.Sender, msg.Content,
			nullString(msg.RetrievedContext), msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("%w: inserting %s message: %v", domain.ErrStore, msg.Sender, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing exchange: %v", domain.ErrStore, err)
	}
	return nil
}

// GetMessage retrieves a single message by id.
func (s *sessionStore) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, session_id, sender, content, retrieved_context, created_at
		FROM messages WHERE id = ?
	`, id)

	msg, err := scanMessageRow(row)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// UpdateMessage rewrites a message's content.
func (s *sessionStore) UpdateMessage(ctx context.Context, message *domain.Message) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE messages SET content = ? WHERE id = ?", message.Content, message.ID)
	if err != nil {
		return fmt.Errorf("%w: updating message: %v", domain.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking update result: %v", domain.ErrStore, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteMessage removes a single message.
func (s *sessionStore) DeleteMessage(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting message: %v", domain.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking delete result: %v", domain.ErrStore, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for message scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(sc scanner) (*domain.Message, error) {
	var msg domain.Message
	var retrieved sql.NullString
	if err := sc.Scan(&msg.ID, &msg.SessionID, &msg.Sender, &msg.Content,
		&retrieved, &msg.CreatedAt); err != nil {
		return nil, err
	}
	msg.RetrievedContext = retrieved.String
	return &msg, nil
}

func scanMessageRow(row *sql.Row) (*domain.Message, error) {
	msg, err := scanMessage(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning message: %v", domain.ErrStore, err)
	}
	return msg, nil
}

func scanMessageRows(rows *sql.Rows) (*domain.Message, error) {
	msg, err := scanMessage(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning message: %v", domain.ErrStore, err)
	}
	return msg, nil
}

// nullString maps "" to NULL for nullable text columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
