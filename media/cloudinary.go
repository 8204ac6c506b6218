// Package media stores product images on Cloudinary.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"storefront/api/apperr"
	"storefront/api/config"
)

var AllowedFormats = []string{"jpg", "jpeg", "png", "webp"}

type Uploaded struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
	log    *zap.Logger
}

func NewCloudinary(cfg config.CloudinaryConfig, log *zap.Logger) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &Cloudinary{cld: cld, folder: cfg.Folder, log: log}, nil
}

// IsAllowedFormat reports whether filename carries one of AllowedFormats.
func IsAllowedFormat(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, f := range AllowedFormats {
		if ext == f {
			return true
		}
	}
	return false
}

func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, filename string) (*Uploaded, error) {
	if !IsAllowedFormat(filename) {
		return nil, apperr.Validation("Unsupported image format. Allowed: " + strings.Join(AllowedFormats, ", "))
	}

	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         c.folder,
		AllowedFormats: api.CldAPIArray(AllowedFormats),
	})
	if err != nil {
		return nil, apperr.Unavailable("Image upload failed", fmt.Errorf("upload %s: %w", filename, err))
	}
	if resp.Error.Message != "" {
		return nil, apperr.Internal(resp.Error.Message, errors.New(resp.Error.Message))
	}

	c.log.Info("Uploaded image", zap.String("public_id", resp.PublicID))
	return &Uploaded{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

// Destroy returns Cloudinary's result string, "ok" or "not found".
func (c *Cloudinary) Destroy(ctx context.Context, publicID string) (string, error) {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return "", apperr.Unavailable("Image delete failed", fmt.Errorf("destroy %s: %w", publicID, err))
	}
	if resp.Error.Message != "" {
		return "", apperr.Internal(resp.Error.Message, errors.New(resp.Error.Message))
	}

	c.log.Info("Deleted image", zap.String("public_id", publicID), zap.String("result", resp.Result))
	return resp.Result, nil
}
