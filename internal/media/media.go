package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mdobak/go-xerrors"
)

// PostsDir is the storage directory for post images.
const PostsDir = "posts"

var (
	ErrInvalidImageType = xerrors.Message("Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	ErrImageTooLarge    = xerrors.Message("Uploaded image is too large")
)

var validExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Storage persists uploaded files and maps their keys to public URLs.
type Storage interface {
	// Save stores r under dir and returns the key of the stored file.
	Save(ctx context.Context, dir, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Upload is a validated image ready to be saved.
type Upload struct {
	Filename string
	Data     []byte
}

// ValidateImage reads at most maxBytes from r and checks that the content
// decodes as one of the supported image formats.
func ValidateImage(filename string, r io.Reader, maxBytes int64) (*Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !validExtensions[ext] {
		return nil, xerrors.New(ErrInvalidImageType)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, xerrors.New(err)
	}
	if int64(len(data)) > maxBytes {
		return nil, xerrors.New(ErrImageTooLarge)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, xerrors.New(ErrInvalidImageType)
	}

	return &Upload{Filename: filename, Data: data}, nil
}

// GenerateKey builds a collision-free key under dir keeping the original extension.
func GenerateKey(dir, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	return path.Join(dir, name)
}
