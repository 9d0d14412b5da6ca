package domain

import "fmt"

// Secret wraps a credential string so it never prints in logs, error
// messages, or %v/%+v formatting by accident. The only way to retrieve
// the underlying value is ExposeSecret.
type Secret struct {
	value string
}

// NewSecret wraps a raw credential string.
func NewSecret(value string) Secret { return Secret{value: value} }

// ExposeSecret returns the underlying credential. Every call site of
// this method is a deliberate boundary crossing (building an HTTP
// Authorization header, for example) and should be named as such in
// review.
func (s Secret) ExposeSecret() string { return s.value }

// String implements fmt.Stringer with a redacted placeholder so secrets
// never leak into %s/%v formatting or accidental log lines.
func (s Secret) String() string { return "[redacted]" }

// GoString implements fmt.GoStringer for the same reason as String.
func (s Secret) GoString() string { return "domain.Secret{[redacted]}" }

// ApiKey is a provider-scoped credential. Each variant holds a Secret;
// the provider it was constructed for travels with the value so a
// Claude key can never be handed to the OpenAI adapter by mistake.
type ApiKey struct {
	provider Provider
	secret   Secret
}

// NewApiKey wraps value as a credential scoped to provider.
func NewApiKey(provider Provider, value string) ApiKey {
	return ApiKey{provider: provider, secret: NewSecret(value)}
}

// Provider returns the provider this key is scoped to.
func (k ApiKey) Provider() Provider { return k.provider }

// ExposeSecret returns the raw credential string. Named explicitly so
// every call site reads as a deliberate boundary crossing.
func (k ApiKey) ExposeSecret() string { return k.secret.ExposeSecret() }

// String implements fmt.Stringer with a redacted placeholder.
func (k ApiKey) String() string {
	return fmt.Sprintf("ApiKey{provider:%s, secret:[redacted]}", k.provider)
}

// GoString implements fmt.GoStringer for the same reason as String.
func (k ApiKey) GoString() string { return k.String() }
