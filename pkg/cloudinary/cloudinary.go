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

const defaultFolder = "proposals"

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether enough credentials are present to build a store.
func (c Config) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// ProposalStore keeps proposal documents as raw Cloudinary assets.
type ProposalStore struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a proposal store.
func New(cfg Config, logger zerolog.Logger) (*ProposalStore, error) {
	if !cfg.Enabled() {
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

	return &ProposalStore{
		client: cld,
		folder: folder,
		logger: logger.With().Str("component", "proposal_store").Logger(),
	}, nil
}

// Upload stores the document and returns its secure URL. Every upload gets a
// fresh public id so a replaced proposal never overwrites the previous file.
func (s *ProposalStore) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     publicID(name, uuid.NewString()),
		ResourceType: "raw",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload proposal: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("proposal stored")

	return result.SecureURL, nil
}

// publicID slugs the original file name and appends a unique suffix. Raw
// assets keep their extension in the public id.
func publicID(name, suffix string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})

	base = strings.Join(words, "-")
	if base == "" {
		base = "proposal"
	}

	return fmt.Sprintf("%s-%s%s", strings.ToLower(base), suffix, ext)
}
