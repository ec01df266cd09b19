package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

const maxImageSize = 5 << 20

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// Image is an uploaded file ready to be stored.
type Image struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// Asset is a stored image: the URL saved on the document and the id needed
// to delete it later.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type Uploader interface {
	Upload(ctx context.Context, img Image, folder string) (Asset, error)
	Delete(ctx context.Context, publicID string) error
}

// Validate checks extension and size before anything is sent to the host.
func Validate(img Image) (string, error) {
	extension := strings.ToLower(filepath.Ext(img.Filename))
	if extension == "" {
		return "", fmt.Errorf("image file extension is required")
	}
	if _, ok := allowedExtensions[extension]; !ok {
		return "", fmt.Errorf("unsupported image type: %s", extension)
	}
	if img.Size > maxImageSize {
		return "", fmt.Errorf("image file too large (max 5MB)")
	}
	return extension, nil
}
