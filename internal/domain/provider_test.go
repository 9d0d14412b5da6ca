package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewModelNameKnownCatalogEntry(t *testing.T) {
	m, err := NewModelName(ProviderClaude, "claude-sonnet-4-20250514")
	require.NoError(t, err)
	require.Equal(t, ProviderClaude, m.Provider())
	require.Equal(t, "Sonnet 4", m.DisplayName())
}

func TestNewModelNamePrefixFallback(t *testing.T) {
	m, err := NewModelName(ProviderClaude, "claude-opus-5-future")
	require.NoError(t, err)
	require.Equal(t, "claude-opus-5-future", m.DisplayName())
}

func TestNewModelNameRejectsCrossProviderId(t *testing.T) {
	_, err := NewModelName(ProviderOpenAI, "claude-sonnet-4-20250514")
	require.Error(t, err)
}

func TestApiKeyNeverPrintsSecret(t *testing.T) {
	k := NewApiKey(ProviderClaude, "sk-super-secret")
	require.NotContains(t, k.String(), "sk-super-secret")
	require.NotContains(t, k.GoString(), "sk-super-secret")
	require.Equal(t, "sk-super-secret", k.ExposeSecret())
}
