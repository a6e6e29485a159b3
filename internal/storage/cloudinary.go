package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/aimd54/rocase/internal/config"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/pkg/logger"
)

// Cloudinary stores evidence in a Cloudinary media library.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
	log    *logger.Logger
}

// NewCloudinary creates a Cloudinary store from a cloudinary:// URL.
func NewCloudinary(cfg *config.CloudinaryConfig, log *logger.Logger) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}

	return &Cloudinary{cld: cld, folder: cfg.Folder, log: log}, nil
}

// Put uploads r under a random public id and returns its secure URL.
func (c *Cloudinary) Put(ctx context.Context, name, contentType string, r io.Reader) (*Object, error) {
	publicID := uuid.NewString()
	if base := strings.TrimSuffix(path.Base(name), path.Ext(name)); base != "" && base != "." && base != "/" {
		publicID = publicID + "-" + sanitize(base)
	}

	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         c.folder,
		ResourceType:   "auto",
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload %s: %s", name, resp.Error.Message)
	}

	c.log.Info().
		Str("public_id", resp.PublicID).
		Str("content_type", contentType).
		Msg("Evidence uploaded")

	return &Object{URL: resp.SecureURL, Key: resp.PublicID}, nil
}

// Delete removes a previously uploaded blob.
func (c *Cloudinary) Delete(ctx context.Context, key string, kind models.EvidenceType) error {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     key,
		ResourceType: ResourceType(kind),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("failed to delete %s: %s", key, resp.Error.Message)
	}
	return nil
}

// ResourceType maps an evidence type to the Cloudinary resource type it was stored as.
func ResourceType(kind models.EvidenceType) string {
	switch kind {
	case models.EvidenceImage:
		return "image"
	case models.EvidenceVideo, models.EvidenceAudio:
		return "video"
	default:
		return "raw"
	}
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 64 {
		out = out[:64]
	}
	return out
}
