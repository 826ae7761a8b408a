package driven

import "context"

// Exchange is a single prior turn handed to the generator as history.
type Exchange struct {
	// Role is domain.SenderUser or domain.SenderAssistant.
	Role string

	// Content is the message text.
	Content string
}

// Generator produces a natural-language reply conditioned on retrieved
// context and prior conversation history. This is an optional service -
// when nil, chat turns are disabled.
//
// Implementations may include:
//   - Ollama (local models)
//   - OpenAI (GPT-4o, GPT-4o-mini)
type Generator interface {
	// Reply generates an assistant reply. Context holds the retrieved
	// chunk texts ordered by descending similarity; it may be empty,
	// in which case the reply is based on history alone. History is in
	// creation order and does not include the current user message.
	Reply(ctx context.Context, userMessage, retrievedContext string, history []Exchange) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
