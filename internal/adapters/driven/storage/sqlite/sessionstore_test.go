package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// createSession is a helper that stores a session with the given title.
func createSession(t *testing.T, sessions driven.SessionStore, title string) *domain.ChatSession {
	t.Helper()
	session := &domain.ChatSession{Title: title}
	require.NoError(t, sessions.CreateSession(context.Background(), session))
	return session
}

// exchange builds a user/assistant message pair for AppendExchange.
func exchange(userText, assistantText, retrieved string) (*domain.Message, *domain.Message) {
	user := &domain.Message{Sender: domain.SenderUser, Content: userText}
	assistant := &domain.Message{
		Sender:           domain.SenderAssistant,
		Content:          assistantText,
		RetrievedContext: retrieved,
	}
	return user, assistant
}

func TestSessionStore_Sessions(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and retrieves a session", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()

		created := createSession(t, sessions, "Project questions")

		require.NotEmpty(t, created.ID)

		got, err := sessions.GetSession(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Project questions", got.Title)
		assert.False(t, got.Favorite)
	})

	t.Run("unknown id fails with ErrSessionNotFound", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()

		_, err := sessions.GetSession(ctx, "missing")

		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("lists favourites first then recently updated", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()

		older := createSession(t, sessions, "older")
		favorite := createSession(t, sessions, "favorite")
		newest := createSession(t, sessions, "newest")

		favorite.Favorite = true
		require.NoError(t, sessions.UpdateSession(ctx, favorite))

		// Touch newest last so it sorts above older.
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, sessions.UpdateSession(ctx, newest))

		list, err := sessions.ListSessions(ctx)
		require.NoError(t, err)

		require.Len(t, list, 3)
		assert.Equal(t, favorite.ID, list[0].ID)
		assert.Equal(t, newest.ID, list[1].ID)
		assert.Equal(t, older.ID, list[2].ID)
	})

	t.Run("updates title and favourite flag", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()
		session := createSession(t, sessions, "before")

		session.Title = "after"
		session.Favorite = true
		require.NoError(t, sessions.UpdateSession(ctx, session))

		got, err := sessions.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, "after", got.Title)
		assert.True(t, got.Favorite)
	})

	t.Run("updating unknown session fails", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()

		err := sessions.UpdateSession(ctx, &domain.ChatSession{ID: "missing", Title: "x"})

		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("delete cascades to messages", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()
		session := createSession(t, sessions, "doomed")

		user, assistant := exchange("hi", "hello", "")
		require.NoError(t, sessions.AppendExchange(ctx, session.ID, user, assistant))

		require.NoError(t, sessions.DeleteSession(ctx, session.ID))

		_, err := sessions.GetSession(ctx, session.ID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		_, err = sessions.GetMessage(ctx, user.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = sessions.GetMessage(ctx, assistant.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("deleting unknown session fails", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()

		err := sessions.DeleteSession(ctx, "missing")

		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestSessionStore_AppendExchange(t *testing.T) {
	ctx := context.Background()

	t.Run("persists both messages in order", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()
		session := createSession(t, sessions, "chat")

		user, assistant := exchange("question", "answer", "some context")
		require.NoError(t, sessions.AppendExchange(ctx, session.ID, user, assistant))

		messages, err := sessions.ListMessages(ctx, session.ID)
		require.NoError(t, err)

		require.Len(t, messages, 2)
		assert.Equal(t, domain.SenderUser, messages[0].Sender)
		assert.Equal(t, "question", messages[0].Content)
		assert.Empty(t, messages[0].RetrievedContext)
		assert.Equal(t, domain.SenderAssistant, messages[1].Sender)
		assert.Equal(t, "answer", messages[1].Content)
		assert.Equal(t, "some context", messages[1].RetrievedContext)
	})

	t.Run("touches the session timestamp", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()
		session := createSession(t, sessions, "chat")
		before, err := sessions.GetSession(ctx, session.ID)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)
		user, assistant := exchange("q", "a", "")
		require.NoError(t, sessions.AppendExchange(ctx, session.ID, user, assistant))

		after, err := sessions.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	})

	t.Run("unknown session persists nothing", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()

		user, assistant := exchange("q", "a", "")
		err := sessions.AppendExchange(ctx, "missing", user, assistant)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		_, err = sessions.GetMessage(ctx, user.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("keeps history in creation order across turns", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()
		session := createSession(t, sessions, "chat")

		for i, texts := range [][2]string{{"one", "1"}, {"two", "2"}, {"three", "3"}} {
			user, assistant := exchange(texts[0], texts[1], "")
			require.NoError(t, sessions.AppendExchange(ctx, session.ID, user, assistant), "turn %d", i)
		}

		messages, err := sessions.ListMessages(ctx, session.ID)
		require.NoError(t, err)

		require.Len(t, messages, 6)
		contents := make([]string, len(messages))
		for i, m := range messages {
			contents[i] = m.Content
		}
		assert.Equal(t, []string{"one", "1", "two", "2", "three", "3"}, contents)
	})
}

func TestSessionStore_Messages(t *testing.T) {
	ctx := context.Background()

	t.Run("updates message content", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()
		session := createSession(t, sessions, "chat")

		user, assistant := exchange("typo", "reply", "")
		require.NoError(t, sessions.AppendExchange(ctx, session.ID, user, assistant))

		user.Content = "fixed"
		require.NoError(t, sessions.UpdateMessage(ctx, user))

		got, err := sessions.GetMessage(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "fixed", got.Content)
	})

	t.Run("deletes a single message", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()
		session := createSession(t, sessions, "chat")

		user, assistant := exchange("q", "a", "")
		require.NoError(t, sessions.AppendExchange(ctx, session.ID, user, assistant))

		require.NoError(t, sessions.DeleteMessage(ctx, user.ID))

		messages, err := sessions.ListMessages(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, assistant.ID, messages[0].ID)
	})

	t.Run("unknown message ids fail with ErrNotFound", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()

		_, err := sessions.GetMessage(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		err = sessions.UpdateMessage(ctx, &domain.Message{ID: "missing", Content: "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		err = sessions.DeleteMessage(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty history is an empty slice", func(t *testing.T) {
		sessions := newTestStore(t).SessionStore()
		session := createSession(t, sessions, "chat")

		messages, err := sessions.ListMessages(ctx, session.ID)

		require.NoError(t, err)
		assert.Empty(t, messages)
	})
}
