package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// BlobService stores screenshot blobs in Cloudinary. Blob names are
// "<userId>/<pokemonId>/<uuid>.<ext>" so ownership can be checked from the
// name alone; the configured media folder is prepended for the actual
// Cloudinary public ID.
type BlobService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewBlobService(cloudName, apiKey, apiSecret, folder string) (*BlobService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	if folder == "" {
		folder = "pokemon-media"
	}
	return &BlobService{cld: cld, folder: folder}, nil
}

// NewBlobName generates a unique blob name owned by userID.
func NewBlobName(userID string, pokemonID int, fileName string) string {
	ext := "png"
	if idx := strings.LastIndex(fileName, "."); idx != -1 && idx < len(fileName)-1 {
		ext = fileName[idx+1:]
	}
	return fmt.Sprintf("%s/%d/%s.%s", userID, pokemonID, uuid.New().String(), ext)
}

// OwnsBlob reports whether blobName belongs to userID. Blob names are
// prefixed by their owner's user ID at upload time.
func OwnsBlob(userID, blobName string) bool {
	if userID == "" || blobName == "" {
		return false
	}
	return strings.HasPrefix(blobName, userID+"/")
}

// Upload stores the blob and returns its public URL.
func (s *BlobService) Upload(ctx context.Context, blobName string, data []byte, contentType string) (string, error) {
	publicID := path.Join(s.folder, strings.TrimSuffix(blobName, path.Ext(blobName)))

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload blob: %w", err)
	}
	return result.SecureURL, nil
}

// Delete removes the blob. Returns false when the blob did not exist.
func (s *BlobService) Delete(ctx context.Context, blobName string) (bool, error) {
	publicID := path.Join(s.folder, strings.TrimSuffix(blobName, path.Ext(blobName)))

	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete blob: %w", err)
	}
	return result.Result == "ok", nil
}

// Ping verifies the blob store is reachable.
func (s *BlobService) Ping(ctx context.Context) error {
	_, err := s.cld.Admin.Ping(ctx)
	return err
}

// SignedURL returns a signed delivery URL for a stored screenshot, used by
// shared read-only views so raw blob URLs are not handed out.
func (s *BlobService) SignedURL(blobName string) (string, error) {
	publicID := path.Join(s.folder, strings.TrimSuffix(blobName, path.Ext(blobName)))

	img, err := s.cld.Image(publicID)
	if err != nil {
		return "", err
	}
	img.Config.URL.SignURL = true
	return img.String()
}
