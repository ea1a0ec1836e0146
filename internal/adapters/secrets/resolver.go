// Package secrets resolves deploy credential references.
package secrets

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"os"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// IdentityFileEnv names the variable holding the path of the age identity
// file used to decrypt "secure:" references.
const IdentityFileEnv = "FERRY_AGE_IDENTITY_FILE"

// Reference schemes understood by the Resolver.
const (
	SchemeSecure = "secure:"
	SchemeEnv    = "env:"
)

// Resolver implements ports.SecretResolver. "secure:" references hold age
// ciphertext, either ASCII armored or base64 encoded; "env:" references name
// a variable of the controller's environment.
type Resolver struct {
	identityFile string
	lookupEnv    func(string) (string, bool)
}

var _ ports.SecretResolver = (*Resolver)(nil)

// NewResolver creates a Resolver decrypting with the identities in
// identityFile and reading env references through lookupEnv.
func NewResolver(identityFile string, lookupEnv func(string) (string, bool)) *Resolver {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	return &Resolver{identityFile: identityFile, lookupEnv: lookupEnv}
}

// NewFromEnvironment creates a Resolver configured from the process environment.
func NewFromEnvironment() *Resolver {
	return NewResolver(os.Getenv(IdentityFileEnv), os.LookupEnv)
}

// Resolve returns the credential behind ref. A zero ref resolves to a zero
// secret for providers that need no token.
func (r *Resolver) Resolve(_ context.Context, ref domain.SecretRef) (domain.Secret, error) {
	raw := ref.Raw()
	switch {
	case raw == "":
		return domain.Secret{}, nil
	case strings.HasPrefix(raw, SchemeEnv):
		name := strings.TrimPrefix(raw, SchemeEnv)
		value, ok := r.lookupEnv(name)
		if !ok || value == "" {
			return domain.Secret{}, domain.Classify(domain.ErrSecretResolveFailed,
				zerr.With(zerr.New("environment variable is not set"), "variable", name))
		}
		return domain.NewSecret(value), nil
	case strings.HasPrefix(raw, SchemeSecure):
		plaintext, err := r.decrypt(strings.TrimPrefix(raw, SchemeSecure))
		if err != nil {
			return domain.Secret{}, domain.Classify(domain.ErrSecretResolveFailed, err)
		}
		return domain.NewSecret(plaintext), nil
	default:
		return domain.Secret{}, domain.Classify(domain.ErrSecretResolveFailed,
			zerr.New("unsupported secret reference, expected 'secure:' or 'env:'"))
	}
}

func (r *Resolver) decrypt(payload string) (string, error) {
	if r.identityFile == "" {
		return "", zerr.With(zerr.New("no age identity configured"), "variable", IdentityFileEnv)
	}

	identities, err := r.identities()
	if err != nil {
		return "", err
	}

	var ciphertext io.Reader
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, armor.Header) {
		ciphertext = armor.NewReader(strings.NewReader(payload))
	} else {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", zerr.Wrap(err, "failed to decode base64 ciphertext")
		}
		ciphertext = bytes.NewReader(decoded)
	}

	reader, err := age.Decrypt(ciphertext, identities...)
	if err != nil {
		return "", zerr.Wrap(err, "failed to decrypt secret")
	}

	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return "", zerr.Wrap(err, "failed to read decrypted secret")
	}
	return strings.TrimRight(string(plaintext), "\r\n"), nil
}

func (r *Resolver) identities() ([]age.Identity, error) {
	f, err := os.Open(r.identityFile)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open age identity file"), "path", r.identityFile)
	}
	defer func() { _ = f.Close() }()

	identities, err := age.ParseIdentities(bufio.NewReader(f))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse age identity file"), "path", r.identityFile)
	}
	return identities, nil
}
