package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"visual-product-builder/models"
	"visual-product-builder/pricing"
)

const (
	// MaxSnapshotBytes is the maximum decoded snapshot size
	MaxSnapshotBytes = 5 * 1024 * 1024

	thumbCacheDir = "cache/thumbnails"
	// Thumbnail settings
	qualityThumb = 60
	maxSizeThumb = 300
)

// SnapshotService decodes, verifies and stores submitted snapshot images
// under a date-partitioned path, and produces cached admin thumbnails
type SnapshotService struct {
	uploadDir string
}

// NewSnapshotService creates a SnapshotService writing under uploadDir
func NewSnapshotService(uploadDir string) *SnapshotService {
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &SnapshotService{uploadDir: uploadDir}
}

// Ensure SnapshotService implements pricing.SnapshotStore
var _ pricing.SnapshotStore = (*SnapshotService)(nil)

// Persist decodes the base64 payload, enforces the size cap, verifies the
// decoded bytes really are PNG by content sniffing (the declared data-URI
// prefix is not trusted), and writes the file. No partial file survives a
// failure at any step.
func (s *SnapshotService) Persist(ctx context.Context, orderID int64, imageData string) (string, int64, error) {
	if !strings.HasPrefix(imageData, models.ImageDataPrefix) {
		return "", 0, fmt.Errorf("image payload missing PNG data-URI prefix")
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(imageData, models.ImageDataPrefix))
	if err != nil {
		return "", 0, fmt.Errorf("failed to decode image payload: %w", err)
	}

	if len(decoded) > MaxSnapshotBytes {
		return "", 0, fmt.Errorf("decoded image is %d bytes, exceeds the %d byte limit", len(decoded), MaxSnapshotBytes)
	}

	if mime := http.DetectContentType(decoded); mime != "image/png" {
		return "", 0, fmt.Errorf("decoded image sniffed as %s, expected image/png", mime)
	}

	now := time.Now()
	dir := filepath.Join(s.uploadDir, "vpb", now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	filePath := filepath.Join(dir, fmt.Sprintf("order_%d_%s.png", orderID, uuid.NewString()))
	if err := os.WriteFile(filePath, decoded, 0644); err != nil {
		// WriteFile may leave a truncated file behind
		os.Remove(filePath)
		return "", 0, fmt.Errorf("failed to write snapshot: %w", err)
	}

	log.Printf("📦 Snapshot written: %s (%d bytes)", filePath, len(decoded))
	return filePath, int64(len(decoded)), nil
}

// Remove deletes a previously written snapshot file
func (s *SnapshotService) Remove(filePath string) {
	if err := os.Remove(filePath); err != nil {
		log.Printf("⚠️  Failed to remove snapshot %s: %v", filePath, err)
	}
}

// Thumbnail returns a resized JPEG of a stored snapshot, cached on disk
func (s *SnapshotService) Thumbnail(att *models.Attachment) ([]byte, error) {
	cachePath := filepath.Join(thumbCacheDir, fmt.Sprintf("attachment_%d_thumb.jpg", att.ID))
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	img, err := imaging.Open(att.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", att.FilePath, err)
	}

	thumb := imaging.Fit(img, maxSizeThumb, maxSizeThumb, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: qualityThumb}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	if err := os.MkdirAll(thumbCacheDir, 0755); err == nil {
		if err := os.WriteFile(cachePath, buf.Bytes(), 0644); err != nil {
			log.Printf("⚠️  Failed to cache thumbnail %s: %v", cachePath, err)
		}
	}

	return buf.Bytes(), nil
}
