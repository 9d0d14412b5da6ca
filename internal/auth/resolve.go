package auth

import (
	"context"
	"fmt"

	"github.com/danielchristiancazares/forge/internal/config"
	"github.com/danielchristiancazares/forge/internal/domain"
)

// Resolver produces the domain.ApiKey a provideradapter needs to start
// a stream, trying (in order) the config file / environment variable
// pair config.ResolveCredential already checks, then — for
// domain.ProviderClaude only — an OAuth access token from a
// TokenProvider backed by a claude.ai subscription login. No other
// provider has an OAuth equivalent in this package.
type Resolver struct {
	keys   config.ApiKeysConfig
	tokens *TokenProvider
}

// NewResolver builds a Resolver. tokens may be nil when OAuth login has
// never been configured; the Claude fallback is then skipped.
func NewResolver(keys config.ApiKeysConfig, tokens *TokenProvider) *Resolver {
	return &Resolver{keys: keys, tokens: tokens}
}

// Resolve returns provider's credential, or an error naming every
// source it tried.
func (r *Resolver) Resolve(ctx context.Context, provider domain.Provider) (domain.ApiKey, error) {
	configValue := r.configValue(provider)
	if value, ok := config.ResolveCredential(configValue, provider.CredentialEnvVar()); ok {
		return domain.NewApiKey(provider, value), nil
	}

	if provider == domain.ProviderClaude && r.tokens != nil {
		token, err := r.tokens.GetAccessToken(ctx)
		if err == nil {
			return domain.NewApiKey(provider, token), nil
		}
	}

	return domain.ApiKey{}, fmt.Errorf(
		"no credential for %s: set %s, add it to config.toml, or run :login",
		provider, provider.CredentialEnvVar(),
	)
}

func (r *Resolver) configValue(provider domain.Provider) string {
	switch provider {
	case domain.ProviderClaude:
		return r.keys.Anthropic
	case domain.ProviderOpenAI:
		return r.keys.OpenAI
	case domain.ProviderGemini:
		return r.keys.Google
	default:
		return ""
	}
}
