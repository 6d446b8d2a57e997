package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LocalStore keeps uploads on the local disk under a root directory. A file
// in folder "images" is written to <root>/images and served as /images/<name>.
type LocalStore struct {
	root   string
	logger *zap.Logger
	now    func() time.Time
}

func NewLocalStore(root string, logger *zap.Logger) *LocalStore {
	return &LocalStore{root: root, logger: logger, now: time.Now}
}

// Root is the directory uploads are written under.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(_ context.Context, folder Folder, fh *multipart.FileHeader) (string, error) {
	img, err := validate(folder, fh, s.now())
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, filepath.FromSlash(folder.Name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	dest := filepath.Join(dir, img.name)
	if err := os.WriteFile(dest, img.data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload %s: %w", dest, err)
	}

	url := urlPath(folder, img.name)
	s.logger.Info("stored upload", zap.String("url", url), zap.Int("bytes", len(img.data)))
	return url, nil
}

// Delete removes the file behind url. A file that is already gone is not an
// error. URLs that resolve outside the root are rejected.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	rel := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(url, "/")))
	if rel == "." || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("refusing to delete %q outside upload root", url)
	}
	err := os.Remove(filepath.Join(s.root, rel))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete upload %s: %w", url, err)
	}
	return nil
}
