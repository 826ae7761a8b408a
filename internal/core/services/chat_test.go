package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// newChatFixture wires a chat service around fresh fakes and one session.
func newChatFixture(t *testing.T) (*ChatService, *fakeSessionStore, *fakeDocStore, *fakeGenerator, string) {
	t.Helper()

	sessions := newFakeSessionStore()
	docs := newFakeDocStore()
	gen := &fakeGenerator{reply: "generated answer"}
	svc := NewChatService(sessions, docs, &fakeEmbedder{}, gen, 5, 0.1)

	session := &domain.ChatSession{ID: "session-1", Title: "Test"}
	require.NoError(t, sessions.CreateSession(context.Background(), session))

	return svc, sessions, docs, gen, session.ID
}

func TestChatService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the user and assistant pair on success", func(t *testing.T) {
		svc, sessions, docs, gen, sid := newChatFixture(t)
		docs.searchResults = []domain.SearchResult{
			{Content: "first chunk", Similarity: 0.9},
			{Content: "second chunk", Similarity: 0.7},
		}

		reply, err := svc.Send(ctx, sid, "what do the docs say?")

		require.NoError(t, err)
		assert.Equal(t, "generated answer", reply.Content)
		assert.Equal(t, domain.SenderAssistant, reply.Sender)
		assert.Equal(t, "first chunk\n\nsecond chunk", reply.RetrievedContext)
		assert.Equal(t, "first chunk\n\nsecond chunk", gen.lastContext)

		messages, err := sessions.ListMessages(ctx, sid)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, domain.SenderUser, messages[0].Sender)
		assert.Equal(t, "what do the docs say?", messages[0].Content)
		assert.Empty(t, messages[0].RetrievedContext)
		assert.Equal(t, reply.ID, messages[1].ID)
	})

	t.Run("empty corpus still completes the turn", func(t *testing.T) {
		svc, sessions, _, gen, sid := newChatFixture(t)

		reply, err := svc.Send(ctx, sid, "anything ingested yet?")

		require.NoError(t, err)
		assert.Empty(t, reply.RetrievedContext)
		assert.Empty(t, gen.lastContext)

		messages, err := sessions.ListMessages(ctx, sid)
		require.NoError(t, err)
		assert.Len(t, messages, 2)
	})

	t.Run("history is passed in creation order without the current message", func(t *testing.T) {
		svc, _, _, gen, sid := newChatFixture(t)

		_, err := svc.Send(ctx, sid, "first question")
		require.NoError(t, err)

		_, err = svc.Send(ctx, sid, "second question")
		require.NoError(t, err)

		require.Len(t, gen.lastHistory, 2)
		assert.Equal(t, driven.Exchange{Role: domain.SenderUser, Content: "first question"}, gen.lastHistory[0])
		assert.Equal(t, driven.Exchange{Role: domain.SenderAssistant, Content: "generated answer"}, gen.lastHistory[1])
		assert.Equal(t, "second question", gen.lastMessage)
	})

	t.Run("generation failure persists nothing", func(t *testing.T) {
		svc, sessions, _, gen, sid := newChatFixture(t)
		gen.err = errors.New("model unavailable")

		_, err := svc.Send(ctx, sid, "hello")

		require.Error(t, err)
		messages, lerr := sessions.ListMessages(ctx, sid)
		require.NoError(t, lerr)
		assert.Empty(t, messages)
	})

	t.Run("embedding failure persists nothing", func(t *testing.T) {
		sessions := newFakeSessionStore()
		embedder := &fakeEmbedder{embedErr: errors.New("backend down")}
		svc := NewChatService(sessions, newFakeDocStore(), embedder, &fakeGenerator{reply: "x"}, 5, 0.1)
		require.NoError(t, sessions.CreateSession(ctx, &domain.ChatSession{ID: "s1"}))

		_, err := svc.Send(ctx, "s1", "hello")

		require.Error(t, err)
		messages, lerr := sessions.ListMessages(ctx, "s1")
		require.NoError(t, lerr)
		assert.Empty(t, messages)
	})

	t.Run("blank message fails with ErrInvalidInput", func(t *testing.T) {
		svc, _, _, gen, sid := newChatFixture(t)

		_, err := svc.Send(ctx, sid, "   \n ")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, gen.calls)
	})

	t.Run("unknown session fails before generating", func(t *testing.T) {
		svc, _, _, gen, _ := newChatFixture(t)

		_, err := svc.Send(ctx, "no-such-session", "hello")

		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		assert.Zero(t, gen.calls)
	})

	t.Run("missing generator fails with ErrGeneratorUnavailable", func(t *testing.T) {
		sessions := newFakeSessionStore()
		svc := NewChatService(sessions, newFakeDocStore(), &fakeEmbedder{}, nil, 5, 0.1)

		_, err := svc.Send(ctx, "s1", "hello")

		assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
	})

	t.Run("missing embedder fails with ErrEmbeddingUnavailable", func(t *testing.T) {
		sessions := newFakeSessionStore()
		svc := NewChatService(sessions, newFakeDocStore(), nil, &fakeGenerator{reply: "x"}, 5, 0.1)

		_, err := svc.Send(ctx, "s1", "hello")

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("retrieval uses the configured bounds", func(t *testing.T) {
		sessions := newFakeSessionStore()
		docs := newFakeDocStore()
		svc := NewChatService(sessions, docs, &fakeEmbedder{}, &fakeGenerator{reply: "x"}, 3, 0.25)
		require.NoError(t, sessions.CreateSession(ctx, &domain.ChatSession{ID: "s1"}))

		_, err := svc.Send(ctx, "s1", "hello")

		require.NoError(t, err)
		assert.Equal(t, 3, docs.lastTopK)
		assert.InDelta(t, 0.25, docs.lastThreshold, 1e-9)
	})
}
