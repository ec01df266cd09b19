package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Local keeps images on disk under root and serves them from urlPrefix.
// The public id is the path relative to root, e.g. "products/<uuid>.png".
type Local struct {
	root      string
	urlPrefix string
}

func NewLocal(root, urlPrefix string) *Local {
	return &Local{root: filepath.Clean(root), urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

func (l *Local) Upload(ctx context.Context, img Image, folder string) (Asset, error) {
	extension, err := Validate(img)
	if err != nil {
		return Asset{}, err
	}

	folder = strings.Trim(path.Clean("/"+folder), "/")
	dir := filepath.Join(l.root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		zap.L().Error("local upload: failed to create directory", zap.String("dir", dir), zap.Error(err))
		return Asset{}, err
	}

	filename := uuid.NewString() + extension
	fullPath := filepath.Join(dir, filename)

	out, err := os.Create(fullPath)
	if err != nil {
		zap.L().Error("local upload: failed to create file", zap.String("path", fullPath), zap.Error(err))
		return Asset{}, err
	}
	defer out.Close()

	if _, err := io.Copy(out, img.Body); err != nil {
		_ = os.Remove(fullPath)
		return Asset{}, err
	}

	publicID := path.Join(folder, filename)
	return Asset{URL: l.urlPrefix + "/" + publicID, PublicID: publicID}, nil
}

// Delete removes a stored image. Ids that escape root are refused and a
// file that is already gone is not an error.
func (l *Local) Delete(ctx context.Context, publicID string) error {
	trimmed := strings.TrimSpace(publicID)
	if trimmed == "" {
		return nil
	}

	cleanRel := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(trimmed, "/")), "/")
	target := filepath.Clean(filepath.Join(l.root, filepath.FromSlash(cleanRel)))
	if target == l.root || !strings.HasPrefix(target, l.root+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload root: %s", publicID)
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
