package domain

import (
	"fmt"
	"log/slog"
)

const redacted = "[REDACTED]"

// SecretRef is an opaque reference to an encrypted credential. The core never
// interprets it; it is handed to a ports.SecretResolver as is.
type SecretRef struct {
	value string
}

// NewSecretRef wraps a raw reference.
func NewSecretRef(ref string) SecretRef {
	return SecretRef{value: ref}
}

// IsZero reports whether no reference is set.
func (r SecretRef) IsZero() bool {
	return r.value == ""
}

// Raw returns the reference for resolvers. The reference itself is ciphertext
// or a pointer, never plaintext.
func (r SecretRef) Raw() string {
	return r.value
}

// String implements fmt.Stringer without revealing the reference.
func (r SecretRef) String() string {
	if r.value == "" {
		return ""
	}
	return "secret-ref"
}

// Secret is resolved credential material. It renders as redacted through every
// formatting path; only release transports call Expose.
type Secret struct {
	value string
}

// NewSecret wraps resolved plaintext.
func NewSecret(plaintext string) Secret {
	return Secret{value: plaintext}
}

// Expose returns the plaintext. It must only be used to authenticate a
// transport request.
func (s Secret) Expose() string {
	return s.value
}

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool {
	return s.value == ""
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	return redacted
}

// GoString implements fmt.GoStringer.
func (s Secret) GoString() string {
	return redacted
}

// Format implements fmt.Formatter so that %v, %+v, %#v and %s never print the value.
func (s Secret) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(redacted))
}

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// MarshalJSON implements json.Marshaler.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}
