package release

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// Filesystem copies assets into <root>/<tag>/<name>. It serves air-gapped
// mirrors and local dry runs of the deploy stage.
type Filesystem struct {
	root string
}

var _ ports.ReleaseTransport = (*Filesystem)(nil)

// NewFilesystem creates a transport writing below root.
func NewFilesystem(root string) *Filesystem {
	return &Filesystem{root: filepath.Clean(root)}
}

// Upload copies the asset. An existing asset of the same name is never
// overwritten.
func (f *Filesystem) Upload(ctx context.Context, asset domain.Asset, _ domain.Secret) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(f.root, asset.Tag)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create release directory"), "path", dir)
	}

	dst := filepath.Join(dir, asset.Name)
	if _, err := os.Stat(dst); err == nil {
		return &APIError{StatusCode: http.StatusUnprocessableEntity, Message: "asset already exists: " + dst}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to stat release asset"), "path", dst)
	}

	//nolint:gosec // Path comes from the publisher's glob expansion
	src, err := os.Open(asset.Path)
	if err != nil {
		return domain.Classify(domain.ErrAssetInvalid, zerr.With(zerr.Wrap(err, "failed to open asset"), "path", asset.Path))
	}
	defer func() { _ = src.Close() }()

	tmp, err := os.CreateTemp(dir, "."+asset.Name+".*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create release asset"), "path", dst)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy release asset"), "path", dst)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to copy release asset"), "path", dst)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to publish release asset"), "path", dst)
	}
	return nil
}
