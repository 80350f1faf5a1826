// Package media validates uploads and stores them in a local directory.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadSize caps a single upload.
const MaxUploadSize = 20 << 20

// URLPrefix is where stored files are served from.
const URLPrefix = "/api/uploads/"

var (
	ErrTypeNotAllowed = errors.New("file type not allowed")
	ErrTooLarge       = errors.New("file too large")
	ErrInvalidName    = errors.New("invalid file name")
)

var allowed = map[string]string{
	"image/jpeg": "image",
	"image/png":  "image",
	"image/gif":  "image",
	"image/webp": "image",
	"video/mp4":  "video",
	"video/webm": "video",
}

var defaultExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
}

type Upload struct {
	URL       string `json:"url"`
	MediaType string `json:"media_type"`
	Filename  string `json:"filename"`
}

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// MediaType maps an allowed content type to "image" or "video".
func MediaType(contentType string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	kind, ok := allowed[ct]
	return kind, ok
}

// Save writes r under a fresh uuid name, keeping the extension of
// originalName when it has one.
func (s *Store) Save(r io.Reader, originalName, contentType string) (Upload, error) {
	kind, ok := MediaType(contentType)
	if !ok {
		return Upload{}, ErrTypeNotAllowed
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" || len(ext) > 8 {
		ext = defaultExt[strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))]
	}
	name := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return Upload{}, fmt.Errorf("create file: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, MaxUploadSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxUploadSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return Upload{}, err
	}
	return Upload{URL: URLPrefix + name, MediaType: kind, Filename: name}, nil
}

// Path resolves a stored file name, rejecting anything that would escape the
// upload directory.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}
