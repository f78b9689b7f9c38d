package openai

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/stickynotes/pkg/llms"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
)

const (
	// DefaultModel is used when no model name is configured.
	DefaultModel = "gpt-5-mini"
	// DefaultAzureAPIVersion is used when no API version is configured for
	// an Azure endpoint.
	DefaultAzureAPIVersion = "2025-01-01"
)

// ErrMissingToken is returned when the API token is not set.
var ErrMissingToken = errors.New("missing API token")

type options struct {
	provider   llms.ProviderType
	token      string
	model      string
	baseURL    string
	apiVersion string
}

// Option is an option for the OpenAI LLM.
type Option func(*options)

// WithToken passes the API token (or Azure API key) to the client.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithModel passes the model name, or the deployment name for Azure.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithBaseURL passes a custom API endpoint to the client.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithAzure routes requests to an Azure OpenAI resource endpoint.
// The deployment name set with WithModel selects the deployed model.
func WithAzure(endpoint, apiVersion string) Option {
	return func(o *options) {
		o.provider = llms.ProviderAzure
		o.baseURL = endpoint
		o.apiVersion = apiVersion
	}
}

func newOptions(opts ...Option) (*options, error) {
	o := &options{
		provider: llms.ProviderOpenAI,
		model:    DefaultModel,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.token == "" {
		return nil, errors.WithStack(ErrMissingToken)
	}
	if o.provider == llms.ProviderAzure {
		if o.baseURL == "" {
			return nil, errors.New("missing Azure endpoint")
		}
		if o.apiVersion == "" {
			o.apiVersion = DefaultAzureAPIVersion
		}
	}
	return o, nil
}

func (o *options) clientOptions() []option.RequestOption {
	if o.provider == llms.ProviderAzure {
		return []option.RequestOption{
			azure.WithEndpoint(o.baseURL, o.apiVersion),
			azure.WithAPIKey(o.token),
		}
	}
	clientOpts := []option.RequestOption{option.WithAPIKey(o.token)}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(o.baseURL))
	}
	return clientOpts
}
