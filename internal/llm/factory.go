package llm

import "context"

// Factory builds a fresh Client for each call. Collaborators hold a Factory
// instead of a shared client.
type Factory interface {
	NewClient(ctx context.Context) (Client, error)
}

// ConfigFactory builds clients from a fixed configuration.
type ConfigFactory struct {
	Config *Config
	APIKey string
}

// NewClient implements Factory.
func (f ConfigFactory) NewClient(ctx context.Context) (Client, error) {
	return NewClient(ctx, f.Config, f.APIKey)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context) (Client, error)

// NewClient implements Factory.
func (f FactoryFunc) NewClient(ctx context.Context) (Client, error) {
	return f(ctx)
}

// StaticFactory returns a Factory that always yields c. Close on the yielded
// client is forwarded, so callers that close per call must not share c across
// goroutines with a real provider.
func StaticFactory(c Client) Factory {
	return FactoryFunc(func(context.Context) (Client, error) { return c, nil })
}
