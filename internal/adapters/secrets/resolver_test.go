package secrets_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"
	"filippo.io/age/armor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/secrets"
	"go.trai.ch/ferry/internal/core/domain"
)

func writeIdentity(t *testing.T) (string, *age.X25519Identity) {
	t.Helper()
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "identity.txt")
	require.NoError(t, os.WriteFile(path, []byte("# ferry\n"+identity.String()+"\n"), 0o600))
	return path, identity
}

func encrypt(t *testing.T, recipient age.Recipient, plaintext string, armored bool) string {
	t.Helper()
	var buf bytes.Buffer

	var dst io.Writer = &buf
	var aw io.WriteCloser
	if armored {
		aw = armor.NewWriter(&buf)
		dst = aw
	}

	w, err := age.Encrypt(dst, recipient)
	require.NoError(t, err)
	_, err = io.WriteString(w, plaintext)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	if armored {
		require.NoError(t, aw.Close())
		return buf.String()
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestResolve_SecureBase64(t *testing.T) {
	path, identity := writeIdentity(t)
	payload := encrypt(t, identity.Recipient(), "ghp_token\n", false)

	r := secrets.NewResolver(path, nil)
	secret, err := r.Resolve(context.Background(), domain.NewSecretRef(secrets.SchemeSecure+payload))
	require.NoError(t, err)
	assert.Equal(t, "ghp_token", secret.Expose())
}

func TestResolve_SecureArmored(t *testing.T) {
	path, identity := writeIdentity(t)
	payload := encrypt(t, identity.Recipient(), "ghp_token", true)

	r := secrets.NewResolver(path, nil)
	secret, err := r.Resolve(context.Background(), domain.NewSecretRef(secrets.SchemeSecure+payload))
	require.NoError(t, err)
	assert.Equal(t, "ghp_token", secret.Expose())
}

func TestResolve_WrongIdentity(t *testing.T) {
	path, _ := writeIdentity(t)
	other, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	payload := encrypt(t, other.Recipient(), "ghp_token", false)

	r := secrets.NewResolver(path, nil)
	_, err = r.Resolve(context.Background(), domain.NewSecretRef(secrets.SchemeSecure+payload))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSecretResolveFailed)
	assert.NotContains(t, err.Error(), "ghp_token")
}

func TestResolve_NoIdentity(t *testing.T) {
	r := secrets.NewResolver("", nil)
	_, err := r.Resolve(context.Background(), domain.NewSecretRef("secure:AAAA"))
	assert.ErrorIs(t, err, domain.ErrSecretResolveFailed)
}

func TestResolve_Env(t *testing.T) {
	env := map[string]string{"RELEASE_TOKEN": "s3cr3t"}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
	r := secrets.NewResolver("", lookup)

	secret, err := r.Resolve(context.Background(), domain.NewSecretRef("env:RELEASE_TOKEN"))
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", secret.Expose())

	_, err = r.Resolve(context.Background(), domain.NewSecretRef("env:MISSING"))
	assert.ErrorIs(t, err, domain.ErrSecretResolveFailed)
}

func TestResolve_ZeroAndUnknown(t *testing.T) {
	r := secrets.NewResolver("", nil)

	secret, err := r.Resolve(context.Background(), domain.SecretRef{})
	require.NoError(t, err)
	assert.True(t, secret.IsZero())

	_, err = r.Resolve(context.Background(), domain.NewSecretRef("vault:kv/ferry"))
	assert.ErrorIs(t, err, domain.ErrSecretResolveFailed)
}
