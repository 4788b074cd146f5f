package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFactory_RequiresAPIKey(t *testing.T) {
	f := ConfigFactory{Config: DefaultConfig()}

	_, err := f.NewClient(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestConfigFactory_VertexRequiresProject(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderVertex

	_, err := ConfigFactory{Config: cfg}.NewClient(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertex project is required")
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "openai"

	_, err := NewClient(context.Background(), cfg, "key")
	assert.Error(t, err)
}

type stubClient struct{}

func (stubClient) GenerateContent(context.Context, string, ModelTier) (string, error) { return "", nil }
func (stubClient) GenerateJSON(context.Context, string, ModelTier) (string, error)    { return "{}", nil }
func (stubClient) GetModel(ModelTier) string                                          { return "stub" }
func (stubClient) Close() error                                                       { return nil }

func TestStaticFactory(t *testing.T) {
	f := StaticFactory(stubClient{})

	c, err := f.NewClient(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stub", c.GetModel(TierLite))
}
