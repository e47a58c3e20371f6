// Package media stores uploaded gallery files in an object store and maps
// their keys to public URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"cloudeng.io/file"
	"cloudeng.io/file/localfs"
	"github.com/iwvelando/temple-portal/pkg/constants"
	"go.uber.org/zap"
)

// ErrInvalidKey is returned for keys that would escape the storage root.
var ErrInvalidKey = errors.New("invalid media key")

// Object describes a stored file.
type Object struct {
	// FullPath is the storage key, e.g. gallery/1700000000000000000_gopuram.jpg.
	FullPath string
	URL      string
	Size     int
}

// Storage keeps media objects under a root directory of an ObjectFS.
type Storage struct {
	fs        file.ObjectFS
	root      string
	urlPrefix string
	logger    *zap.Logger
	now       func() time.Time
}

// NewLocalStorage returns Storage backed by the local filesystem under dir,
// serving objects under urlPrefix.
func NewLocalStorage(ctx context.Context, dir, urlPrefix string, logger *zap.Logger) (*Storage, error) {
	return NewStorage(ctx, localfs.New(), dir, urlPrefix, logger)
}

// NewStorage returns Storage over any ObjectFS.
func NewStorage(ctx context.Context, ofs file.ObjectFS, root, urlPrefix string, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if root == "" {
		root = constants.DefaultMediaDir
	}
	if urlPrefix == "" {
		urlPrefix = "/media/"
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	if err := ofs.EnsurePrefix(ctx, filepath.Join(root, constants.GalleryPrefix), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", root, err)
	}
	return &Storage{fs: ofs, root: root, urlPrefix: urlPrefix, logger: logger, now: time.Now}, nil
}

// Root returns the directory objects are stored under.
func (s *Storage) Root() string {
	return s.root
}

// Put stores data as a new gallery object named after the uploaded file.
func (s *Storage) Put(ctx context.Context, filename string, data []byte) (Object, error) {
	key := path.Join(constants.GalleryPrefix, fmt.Sprintf("%d_%s", s.now().UnixNano(), SanitizeName(filename)))
	if err := s.fs.Put(ctx, s.localPath(key), 0o644, data); err != nil {
		return Object{}, fmt.Errorf("failed to store %s: %w", key, err)
	}
	s.logger.Info("stored media object",
		zap.String("op", "media.Put"),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return Object{FullPath: key, URL: s.URL(key), Size: len(data)}, nil
}

// Get returns the contents of a stored object.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	return s.fs.Get(ctx, s.localPath(key))
}

// Delete removes a stored object. Deleting a missing object is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := s.fs.Delete(ctx, s.localPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// URL returns the public URL of key.
func (s *Storage) URL(key string) string {
	return s.urlPrefix + key
}

func (s *Storage) localPath(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func validKey(key string) error {
	clean := path.Clean(key)
	if key == "" || clean != key || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// SanitizeName reduces an uploaded file name to a safe single path element.
func SanitizeName(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}
