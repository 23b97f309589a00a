// Package cloudinary stores attachment files in a Cloudinary media folder.
package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultFolder = "collabflow/attachments"

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Store uploads attachment payloads and hands back their public URLs. The
// attachment row keeps the URL; Cloudinary owns the bytes.
type Store struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary-backed attachment store.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	folder := strings.Trim(cfg.Folder, "/")
	if folder == "" {
		folder = defaultFolder
	}

	return &Store{
		client: cld,
		folder: folder,
		logger: logger.With().Str("component", "attachment_store").Logger(),
	}, nil
}

// Upload streams the attachment to Cloudinary and returns its secure URL.
// The public ID carries a slug of the original filename for operator-facing
// listings plus a UUID so repeated uploads of the same name never collide.
func (s *Store) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     attachmentPublicID(name),
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to store attachment: %w", err)
	}

	s.logger.Info().
		Str("public_id", result.PublicID).
		Int("bytes", result.Bytes).
		Msg("attachment stored")

	return result.SecureURL, nil
}

func attachmentPublicID(name string) string {
	slug := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, slug)
	slug = strings.Trim(slug, "-")

	if slug == "" {
		return uuid.NewString()
	}
	return slug + "-" + uuid.NewString()
}
