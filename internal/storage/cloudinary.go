package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary stores images on the Cloudinary asset host.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary takes a CLOUDINARY_URL
// (cloudinary://<key>:<secret>@<cloud name>).
func NewCloudinary(url string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, img Image, folder string) (Asset, error) {
	if _, err := Validate(img); err != nil {
		return Asset{}, err
	}

	resp, err := c.cld.Upload.Upload(ctx, img.Body, uploader.UploadParams{Folder: folder})
	if err != nil {
		return Asset{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return Asset{}, fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return Asset{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", resp.Error.Message)
	}
	return nil
}
