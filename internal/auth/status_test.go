package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAuthEnv(t *testing.T) {
	t.Setenv("FORGE_OAUTH_TOKEN", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
}

func TestGetAuthStatusNotAuthenticated(t *testing.T) {
	clearAuthEnv(t)

	dir := t.TempDir()
	store := &CredentialStore{dir: dir, path: filepath.Join(dir, ".credentials.json")}

	status := GetAuthStatus(store)

	assert.False(t, status.LoggedIn)
	assert.Equal(t, AuthMethodNone, status.AuthMethod)
}

func TestGetAuthStatusOAuthTokenEnvVar(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("FORGE_OAUTH_TOKEN", "test-token-123")

	status := GetAuthStatus(nil)

	assert.True(t, status.LoggedIn)
	assert.Equal(t, AuthMethodOAuthToken, status.AuthMethod)
	assert.Equal(t, "FORGE_OAUTH_TOKEN", status.APIKeySource)
}

func TestGetAuthStatusAPIKeyEnvVar(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test-key")

	status := GetAuthStatus(nil)

	assert.True(t, status.LoggedIn)
	assert.Equal(t, AuthMethodAPIKey, status.AuthMethod)
	assert.Equal(t, "ANTHROPIC_API_KEY", status.APIKeySource)
}

func TestGetAuthStatusClaudeAIStoredCredentials(t *testing.T) {
	clearAuthEnv(t)

	dir := t.TempDir()
	store := &CredentialStore{dir: dir, path: filepath.Join(dir, ".credentials.json")}

	creds := credentialsFile{
		ClaudeAiOauth: &OAuthTokens{
			AccessToken:      "test-access-token",
			RefreshToken:     "test-refresh-token",
			ExpiresAt:        9999999999999,
			SubscriptionType: "pro",
		},
		OAuthAccount: &OAuthAccount{
			EmailAddress:     "user@example.com",
			OrganizationUUID: "org-uuid-123",
			OrganizationName: "Test Org",
		},
	}
	data, err := json.Marshal(creds)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.path, data, 0600))

	status := GetAuthStatus(store)

	assert.True(t, status.LoggedIn)
	assert.Equal(t, AuthMethodClaudeAI, status.AuthMethod)
	require.NotNil(t, status.Email)
	assert.Equal(t, "user@example.com", *status.Email)
	require.NotNil(t, status.OrgID)
	assert.Equal(t, "org-uuid-123", *status.OrgID)
	require.NotNil(t, status.OrgName)
	assert.Equal(t, "Test Org", *status.OrgName)
	require.NotNil(t, status.SubscriptionType)
	assert.Equal(t, "Claude Pro", *status.SubscriptionType)
}

func TestGetAuthStatusOAuthTokenTakesPriorityOverAPIKey(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("FORGE_OAUTH_TOKEN", "oauth-token")
	t.Setenv("ANTHROPIC_API_KEY", "api-key")

	status := GetAuthStatus(nil)

	assert.Equal(t, AuthMethodOAuthToken, status.AuthMethod)
}

func TestFormatStatusJSONRoundTrips(t *testing.T) {
	email := "user@example.com"
	orgName := "Test Org"
	subType := "Claude Pro"
	status := &AuthStatus{
		LoggedIn:         true,
		AuthMethod:       AuthMethodClaudeAI,
		Email:            &email,
		OrgName:          &orgName,
		SubscriptionType: &subType,
	}

	output, err := FormatStatusJSON(status)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &parsed))

	assert.Equal(t, true, parsed["loggedIn"])
	assert.Equal(t, "claude.ai", parsed["authMethod"])
	assert.Equal(t, "user@example.com", parsed["email"])
}

func TestFormatStatusTextLoggedIn(t *testing.T) {
	email := "user@example.com"
	orgName := "Test Org"
	subType := "Claude Pro"
	status := &AuthStatus{
		LoggedIn:         true,
		AuthMethod:       AuthMethodClaudeAI,
		Email:            &email,
		OrgName:          &orgName,
		SubscriptionType: &subType,
	}

	output := FormatStatusText(status)

	assert.Contains(t, output, "Claude Pro Account")
	assert.Contains(t, output, "Organization: Test Org")
	assert.Contains(t, output, "Email: user@example.com")
}

func TestFormatStatusTextNotLoggedIn(t *testing.T) {
	status := &AuthStatus{LoggedIn: false, AuthMethod: AuthMethodNone}

	output := FormatStatusText(status)

	assert.Contains(t, output, "Not logged in")
}

func TestFormatStatusTextAPIKey(t *testing.T) {
	status := &AuthStatus{
		LoggedIn:     true,
		AuthMethod:   AuthMethodAPIKey,
		APIKeySource: "ANTHROPIC_API_KEY",
	}

	output := FormatStatusText(status)

	assert.Contains(t, output, "Login method: API Key")
	assert.Contains(t, output, "API key source: ANTHROPIC_API_KEY")
}

func TestSubscriptionDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"enterprise", "Claude Enterprise"},
		{"team", "Claude Team"},
		{"max", "Claude Max"},
		{"pro", "Claude Pro"},
		{"Pro", "Claude Pro"},
		{"unknown", "Claude API"},
		{"", "Claude API"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, subscriptionDisplayName(tt.input))
		})
	}
}

func TestFormatStatusJSONNotLoggedIn(t *testing.T) {
	status := &AuthStatus{LoggedIn: false, AuthMethod: AuthMethodNone}

	output, err := FormatStatusJSON(status)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &parsed))

	assert.Equal(t, false, parsed["loggedIn"])
	assert.Equal(t, "none", parsed["authMethod"])
	assert.Nil(t, parsed["email"])
}
