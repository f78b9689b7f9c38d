// Package llmfactory builds chat model clients from configuration. It fails
// fast: any missing or inconsistent setting is reported before the first
// query is attempted.
package llmfactory

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration indicates the model client cannot be constructed from
// the available settings. It is fatal at startup.
var ErrConfiguration = errors.New("invalid configuration")

// Environment variables read by LoadConfig. Azure settings take precedence
// when the Azure key is present.
const (
	EnvAzureAPIKey     = "AZURE_OPENAI_API_KEY"
	EnvAzureEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvAzureDeployment = "AZURE_OPENAI_DEPLOYMENT_NAME"
	EnvAzureAPIVersion = "AZURE_OPENAI_API_VERSION"

	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvOpenAIModel   = "OPENAI_MODEL"
)

var validate = validator.New()

// Config selects the provider and carries its credentials.
type Config struct {
	// Provider is "azure" or "openai".
	Provider string `json:"provider" yaml:"provider" validate:"required,oneof=azure openai"`

	// APIKey authenticates with the provider.
	APIKey string `json:"api_key" yaml:"api_key" validate:"required"`

	// Model is the model name, or the deployment name on Azure.
	Model string `json:"model" yaml:"model"`

	// Endpoint is the Azure resource endpoint. Required for Azure.
	Endpoint string `json:"endpoint" yaml:"endpoint" validate:"required_if=Provider azure"`

	// APIVersion is the Azure API version. Defaults to
	// openai.DefaultAzureAPIVersion when empty.
	APIVersion string `json:"api_version" yaml:"api_version"`

	// BaseURL overrides the OpenAI API base URL. Ignored on Azure.
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// Validate checks the configuration for completeness.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.WithMessagef(ErrConfiguration, "%s", err.Error())
	}
	if c.Provider == "azure" && c.Model == "" {
		return errors.WithMessage(ErrConfiguration, "deployment name is required for Azure")
	}
	return nil
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory is loaded first when present. Azure mode is chosen
// when AZURE_OPENAI_API_KEY is set, otherwise OpenAI mode.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if os.Getenv(EnvAzureAPIKey) != "" || os.Getenv(EnvAzureEndpoint) != "" {
		cfg.Provider = "azure"
		cfg.APIKey = os.Getenv(EnvAzureAPIKey)
		cfg.Endpoint = os.Getenv(EnvAzureEndpoint)
		cfg.Model = os.Getenv(EnvAzureDeployment)
		cfg.APIVersion = os.Getenv(EnvAzureAPIVersion)
	} else {
		cfg.Provider = "openai"
		cfg.APIKey = os.Getenv(EnvOpenAIAPIKey)
		cfg.BaseURL = os.Getenv(EnvOpenAIBaseURL)
		cfg.Model = os.Getenv(EnvOpenAIModel)
	}

	if cfg.APIKey == "" {
		return nil, errors.WithMessagef(ErrConfiguration,
			"no API key: set %s or %s", EnvAzureAPIKey, EnvOpenAIAPIKey)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile reads the configuration from a YAML file, then applies
// environment overrides for any field the file leaves empty.
func LoadConfigFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessagef(ErrConfiguration, "failed to read %s: %s", path, err.Error())
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.WithMessagef(ErrConfiguration, "failed to parse %s: %s", path, err.Error())
	}

	env, err := LoadConfig()
	if err == nil {
		if cfg.APIKey == "" && env.Provider == cfg.Provider {
			cfg.APIKey = env.APIKey
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
