// Package storage uploads room images to Cloudinary.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryUploader stores images in one Cloudinary folder.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader builds an uploader from account credentials.
func NewCloudinaryUploader(cloud, key, secret, folder string) (*CloudinaryUploader, error) {
	if cloud == "" || key == "" || secret == "" {
		return nil, errors.New("cloudinary credentials are incomplete")
	}
	cld, err := cloudinary.NewFromParams(cloud, key, secret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

// Upload streams r to Cloudinary and returns the secure URL.  Cloudinary
// assigns the public id, so name only shows up in errors.
func (u *CloudinaryUploader) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: u.folder})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", name, resp.Error.Message)
	}
	return resp.SecureURL, nil
}
