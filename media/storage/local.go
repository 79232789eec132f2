package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/leeforge/picture/errors"
)

// LocalProvider stores files below a base directory on the local filesystem.
type LocalProvider struct {
	basePath string
	baseURL  string
}

// NewLocalProvider creates the base directory if needed. basePath is made
// absolute so that Object.Path can be projected relative to a web root.
func NewLocalProvider(basePath, baseURL string) (*LocalProvider, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalProvider{
		basePath: abs,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// BasePath returns the absolute base directory.
func (p *LocalProvider) BasePath() string {
	return p.basePath
}

func (p *LocalProvider) object(key string, size int64) Object {
	return Object{
		Name: key,
		URL:  p.baseURL + "/" + key,
		Path: filepath.Join(p.basePath, filepath.FromSlash(key)),
		Size: size,
	}
}

// Put writes the file through a temporary file and renames it into place, so
// readers never observe a partially written variant.
func (p *LocalProvider) Put(ctx context.Context, name string, r io.Reader) (Object, error) {
	key, err := cleanName(name)
	if err != nil {
		return Object{}, err
	}
	obj := p.object(key, 0)

	dir := filepath.Dir(obj.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Object{}, apperrors.NewStorage(err, "failed to create directory")
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return Object{}, apperrors.NewStorage(err, "failed to create file")
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Object{}, apperrors.NewStorage(err, "failed to write file content")
	}

	if err := os.Rename(tmp.Name(), obj.Path); err != nil {
		return Object{}, apperrors.NewStorage(err, "failed to move file into place")
	}

	obj.Size = size
	return obj, nil
}

// Stat checks if a file exists
func (p *LocalProvider) Stat(ctx context.Context, name string) (Object, bool, error) {
	key, err := cleanName(name)
	if err != nil {
		return Object{}, false, err
	}
	obj := p.object(key, 0)

	info, err := os.Stat(obj.Path)
	if os.IsNotExist(err) {
		return Object{}, false, nil
	}
	if err != nil {
		return Object{}, false, apperrors.NewStorage(err, "failed to stat file")
	}
	obj.Size = info.Size()
	return obj, true, nil
}

func (p *LocalProvider) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p.object(key, 0).Path)
	if err != nil {
		return nil, apperrors.NewStorage(err, "failed to open file")
	}
	return f, nil
}

// Delete removes a file from the local filesystem
func (p *LocalProvider) Delete(ctx context.Context, name string) error {
	key, err := cleanName(name)
	if err != nil {
		return err
	}
	err = os.Remove(p.object(key, 0).Path)
	if err != nil && !os.IsNotExist(err) {
		return apperrors.NewStorage(err, "failed to delete file")
	}
	return nil
}

func (p *LocalProvider) Name() string {
	return "local"
}

var _ Provider = (*LocalProvider)(nil)
