package llm

import "context"

// Response is the provider-independent result of one completion call.
type Response struct {
	Content    string
	Model      string
	TokensUsed *int
}

// Options tune a single completion call.
type Options struct {
	Temperature float32
	MaxTokens   int32
}

// Client is a text-completion client. Implementations must be safe for
// concurrent use.
type Client interface {
	Complete(ctx context.Context, prompt string, opts Options) (Response, error)
	ProviderName() string
}
