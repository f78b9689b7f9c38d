package llmfactory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/stickynotes/llmfactory"
	"github.com/effective-security/stickynotes/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		llmfactory.EnvAzureAPIKey,
		llmfactory.EnvAzureEndpoint,
		llmfactory.EnvAzureDeployment,
		llmfactory.EnvAzureAPIVersion,
		llmfactory.EnvOpenAIAPIKey,
		llmfactory.EnvOpenAIBaseURL,
		llmfactory.EnvOpenAIModel,
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func Test_LoadConfig_Azure(t *testing.T) {
	clearEnv(t)
	t.Setenv(llmfactory.EnvAzureAPIKey, "test-key")
	t.Setenv(llmfactory.EnvAzureEndpoint, "https://example.openai.azure.com")
	t.Setenv(llmfactory.EnvAzureDeployment, "gpt-4o")

	cfg, err := llmfactory.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "azure", cfg.Provider)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "https://example.openai.azure.com", cfg.Endpoint)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Empty(t, cfg.APIVersion)

	model, err := llmfactory.New(cfg)
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderAzure, model.GetProviderType())
	assert.Equal(t, "gpt-4o", model.GetName())
}

func Test_LoadConfig_Azure_MissingEndpoint(t *testing.T) {
	clearEnv(t)
	t.Setenv(llmfactory.EnvAzureAPIKey, "test-key")
	t.Setenv(llmfactory.EnvAzureDeployment, "gpt-4o")

	_, err := llmfactory.LoadConfig()
	assert.ErrorIs(t, err, llmfactory.ErrConfiguration)
}

func Test_LoadConfig_Azure_MissingDeployment(t *testing.T) {
	clearEnv(t)
	t.Setenv(llmfactory.EnvAzureAPIKey, "test-key")
	t.Setenv(llmfactory.EnvAzureEndpoint, "https://example.openai.azure.com")

	_, err := llmfactory.LoadConfig()
	assert.ErrorIs(t, err, llmfactory.ErrConfiguration)
}

func Test_LoadConfig_Azure_MissingKey(t *testing.T) {
	clearEnv(t)
	// The endpoint alone selects Azure mode; the key is still required.
	t.Setenv(llmfactory.EnvAzureEndpoint, "https://example.openai.azure.com")
	t.Setenv(llmfactory.EnvAzureDeployment, "gpt-4o")

	_, err := llmfactory.LoadConfig()
	assert.ErrorIs(t, err, llmfactory.ErrConfiguration)
}

func Test_LoadConfig_OpenAI(t *testing.T) {
	clearEnv(t)
	t.Setenv(llmfactory.EnvOpenAIAPIKey, "sk-test")

	cfg, err := llmfactory.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "sk-test", cfg.APIKey)

	model, err := llmfactory.New(cfg)
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderOpenAI, model.GetProviderType())
}

func Test_LoadConfig_NoKey(t *testing.T) {
	clearEnv(t)

	_, err := llmfactory.LoadConfig()
	assert.ErrorIs(t, err, llmfactory.ErrConfiguration)
}

func Test_LoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "llm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: azure
api_key: file-key
endpoint: https://example.openai.azure.com
model: gpt-4o
api_version: "2025-01-01"
`), 0644))

	cfg, err := llmfactory.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "azure", cfg.Provider)
	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, "2025-01-01", cfg.APIVersion)

	_, err = llmfactory.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, llmfactory.ErrConfiguration)
}
