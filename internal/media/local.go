package media

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdobak/go-xerrors"
)

// LocalStorage keeps files under Root and serves them below URLPrefix.
type LocalStorage struct {
	Root      string
	URLPrefix string
}

func NewLocalStorage(root, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, xerrors.Newf("could not create media root %s: %w", root, err)
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &LocalStorage{Root: root, URLPrefix: urlPrefix}, nil
}

func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, "..") {
		return "", xerrors.Newf("invalid media key %q", key)
	}
	return filepath.Join(s.Root, clean), nil
}

func (s *LocalStorage) Save(ctx context.Context, dir, filename string, r io.Reader) (string, error) {
	key := GenerateKey(dir, filename)
	filePath, err := s.path(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return "", xerrors.Newf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", xerrors.Newf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(filePath)
		return "", xerrors.Newf("failed to save file: %w", err)
	}

	return key, nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	filePath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return xerrors.New(err)
	}
	return nil
}

func (s *LocalStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.URLPrefix + key
}
