package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// fakeEmbedder is an in-memory EmbeddingService producing fixed-size
// vectors derived from the input length, so distinct texts stay
// distinguishable in assertions.
type fakeEmbedder struct {
	mu         sync.Mutex
	embedCalls int
	batchCalls int
	embedErr   error
	batchErr   error
}

func (f *fakeEmbedder) vectorFor(text string) []float32 {
	return []float32{float32(len(text)), 1, 0}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is empty", domain.ErrInvalidInput)
	}
	return f.vectorFor(text), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([]driven.BatchEmbedding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	var results []driven.BatchEmbedding
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		results = append(results, driven.BatchEmbedding{Index: i, Vector: f.vectorFor(text)})
	}
	return results, nil
}

func (f *fakeEmbedder) Dimensions() int              { return 3 }
func (f *fakeEmbedder) ModelName() string            { return "fake-embedder" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

// storedDoc captures what the fake store was asked to persist.
type storedDoc struct {
	id        string
	name      string
	content   string
	pageCount int
	chunks    []domain.Chunk
}

// fakeDocStore is an in-memory DocumentStore safe for concurrent use.
type fakeDocStore struct {
	mu            sync.Mutex
	docs          map[string]*storedDoc // keyed by name
	searchResults []domain.SearchResult
	searchErr     error
	upsertErr     error
	replaceErr    error
	lastQuery     []float32
	lastTopK      int
	lastThreshold float64
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[string]*storedDoc)}
}

func (f *fakeDocStore) UpsertDocument(_ context.Context, name, content string, pageCount int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	doc, ok := f.docs[name]
	if !ok {
		doc = &storedDoc{id: uuid.New().String(), name: name}
		f.docs[name] = doc
	}
	doc.content = content
	doc.pageCount = pageCount
	return doc.id, nil
}

func (f *fakeDocStore) ReplaceChunks(_ context.Context, documentID string, chunks []domain.Chunk) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return 0, f.replaceErr
	}
	for _, doc := range f.docs {
		if doc.id == documentID {
			doc.chunks = append([]domain.Chunk{}, chunks...)
			return len(chunks), nil
		}
	}
	return 0, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
}

func (f *fakeDocStore) Search(_ context.Context, query []float32, topK int, threshold float64) ([]domain.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = query
	f.lastTopK = topK
	f.lastThreshold = threshold
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.searchResults == nil {
		return []domain.SearchResult{}, nil
	}
	return f.searchResults, nil
}

func (f *fakeDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.docs {
		if doc.id == id {
			return &domain.Document{ID: doc.id, Name: doc.name, Content: doc.content}, nil
		}
	}
	return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
}

func (f *fakeDocStore) GetDocumentByName(_ context.Context, name string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: document %q", domain.ErrNotFound, name)
	}
	return &domain.Document{ID: doc.id, Name: doc.name, Content: doc.content}, nil
}

func (f *fakeDocStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.docs {
		if doc.id == documentID {
			return append([]domain.Chunk{}, doc.chunks...), nil
		}
	}
	return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
}

func (f *fakeDocStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := make([]domain.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		docs = append(docs, domain.Document{ID: doc.id, Name: doc.name, Content: doc.content})
	}
	return docs, nil
}

func (f *fakeDocStore) DeleteDocument(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, doc := range f.docs {
		if doc.id == id {
			delete(f.docs, name)
			return nil
		}
	}
	return fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
}

// fakeExtractor serves canned extractions keyed by base filename and
// fails the paths listed in failPaths.
type fakeExtractor struct {
	texts     map[string]string // base name -> content
	failNames map[string]bool
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{texts: make(map[string]string), failNames: make(map[string]bool)}
}

func (f *fakeExtractor) Supported(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".txt")
}

func (f *fakeExtractor) Extract(_ context.Context, path string) (*driven.Extracted, error) {
	name := filepath.Base(path)
	if f.failNames[name] {
		return nil, fmt.Errorf("%w: cannot read %s", domain.ErrExtraction, name)
	}
	content, ok := f.texts[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown file %s", domain.ErrExtraction, name)
	}
	return &driven.Extracted{Name: name, Content: content, PageCount: 1}, nil
}

// fakeSessionStore is an in-memory SessionStore.
type fakeSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*domain.ChatSession
	messages  map[string][]domain.Message // keyed by session id
	appendErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: make(map[string]*domain.ChatSession),
		messages: make(map[string][]domain.Message),
	}
}

func (f *fakeSessionStore) CreateSession(_ context.Context, session *domain.ChatSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionStore) GetSession(_ context.Context, id string) (*domain.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionStore) ListSessions(_ context.Context) ([]domain.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sessions := make([]domain.ChatSession, 0, len(f.sessions))
	for _, s := range f.sessions {
		sessions = append(sessions, *s)
	}
	return sessions, nil
}

func (f *fakeSessionStore) UpdateSession(_ context.Context, session *domain.ChatSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[session.ID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, session.ID)
	}
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	delete(f.sessions, id)
	delete(f.messages, id)
	return nil
}

func (f *fakeSessionStore) ListMessages(_ context.Context, sessionID string) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Message{}, f.messages[sessionID]...), nil
}

func (f *fakeSessionStore) AppendExchange(_ context.Context, sessionID string, user, assistant *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	if _, ok := f.sessions[sessionID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	f.messages[sessionID] = append(f.messages[sessionID], *user, *assistant)
	return nil
}

func (f *fakeSessionStore) GetMessage(_ context.Context, id string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, msgs := range f.messages {
		for _, m := range msgs {
			if m.ID == id {
				copied := m
				return &copied, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: message %s", domain.ErrNotFound, id)
}

func (f *fakeSessionStore) UpdateMessage(_ context.Context, message *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sid, msgs := range f.messages {
		for i, m := range msgs {
			if m.ID == message.ID {
				f.messages[sid][i] = *message
				return nil
			}
		}
	}
	return fmt.Errorf("%w: message %s", domain.ErrNotFound, message.ID)
}

func (f *fakeSessionStore) DeleteMessage(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sid, msgs := range f.messages {
		for i, m := range msgs {
			if m.ID == id {
				f.messages[sid] = append(msgs[:i:i], msgs[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: message %s", domain.ErrNotFound, id)
}

// fakeGenerator records what it was asked to generate from.
type fakeGenerator struct {
	mu          sync.Mutex
	reply       string
	err         error
	lastMessage string
	lastContext string
	lastHistory []driven.Exchange
	calls       int
}

func (f *fakeGenerator) Reply(_ context.Context, userMessage, retrievedContext string, history []driven.Exchange) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastMessage = userMessage
	f.lastContext = retrievedContext
	f.lastHistory = append([]driven.Exchange{}, history...)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) ModelName() string            { return "fake-generator" }
func (f *fakeGenerator) Ping(_ context.Context) error { return nil }
func (f *fakeGenerator) Close() error                 { return nil }
