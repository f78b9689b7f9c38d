package llmfactory

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/stickynotes/pkg/llms"
	"github.com/effective-security/stickynotes/pkg/llms/openai"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/stickynotes", "llmfactory")

// New constructs the chat model client described by the configuration.
func New(cfg *Config) (llms.Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []openai.Option
	switch cfg.Provider {
	case "azure":
		opts = append(opts,
			openai.WithAzure(cfg.Endpoint, cfg.APIVersion),
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		)
	case "openai":
		opts = append(opts, openai.WithToken(cfg.APIKey))
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
	default:
		return nil, errors.WithMessagef(ErrConfiguration, "unsupported provider: %s", cfg.Provider)
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, errors.WithMessagef(ErrConfiguration, "%s", err.Error())
	}

	logger.KV(xlog.INFO,
		"provider", cfg.Provider,
		"model", model.GetName(),
	)
	return model, nil
}
