package localfs

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/Chaithz/thinkTree/internal/core/domain"
)

// Source opens documents from the local filesystem. Relative names resolve
// against basePath.
type Source struct {
	basePath string
}

func New(basePath string) *Source {
	if basePath == "" {
		basePath = "."
	}
	return &Source{basePath: basePath}
}

// Open declares the content type from the file extension, the way a browser
// labels a file it uploads.
func (s *Source) Open(_ context.Context, name string) (domain.Document, io.ReadCloser, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.basePath, name)
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.Document{}, nil, fmt.Errorf("open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return domain.Document{}, nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return domain.Document{}, nil, domain.WrapError(domain.ErrInvalidInput, "open file", fmt.Errorf("%s is a directory", name))
	}

	doc := domain.Document{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Size:        info.Size(),
	}
	return doc, f, nil
}
