package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-product-builder/models"
)

func pngPayload(t *testing.T) (string, []byte) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return models.ImageDataPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), buf.Bytes()
}

func TestPersistWritesDatePartitionedPNG(t *testing.T) {
	dir := t.TempDir()
	svc := NewSnapshotService(dir)
	payload, raw := pngPayload(t)

	filePath, size, err := svc.Persist(context.Background(), 42, payload)
	require.NoError(t, err)
	assert.Equal(t, int64(len(raw)), size)

	now := time.Now()
	wantDir := filepath.Join(dir, "vpb", now.Format("2006"), now.Format("01"))
	assert.Equal(t, wantDir, filepath.Dir(filePath))

	written, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, raw, written)
}

func TestPersistRejectsMissingPrefix(t *testing.T) {
	svc := NewSnapshotService(t.TempDir())
	_, _, err := svc.Persist(context.Background(), 1, "data:image/jpeg;base64,AAAA")
	require.Error(t, err)
}

func TestPersistRejectsInvalidBase64(t *testing.T) {
	svc := NewSnapshotService(t.TempDir())
	_, _, err := svc.Persist(context.Background(), 1, models.ImageDataPrefix+"%%not-base64%%")
	require.Error(t, err)
}

func TestPersistRejectsOversizedImage(t *testing.T) {
	svc := NewSnapshotService(t.TempDir())
	huge := make([]byte, MaxSnapshotBytes+1)
	payload := models.ImageDataPrefix + base64.StdEncoding.EncodeToString(huge)

	_, _, err := svc.Persist(context.Background(), 1, payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestPersistSniffsRealContentType(t *testing.T) {
	svc := NewSnapshotService(t.TempDir())

	// JPEG bytes behind a PNG prefix must be rejected
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	payload := models.ImageDataPrefix + base64.StdEncoding.EncodeToString(buf.Bytes())

	_, _, err := svc.Persist(context.Background(), 1, payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image/jpeg")
}

func TestRemoveDeletesFile(t *testing.T) {
	dir := t.TempDir()
	svc := NewSnapshotService(dir)
	payload, _ := pngPayload(t)

	filePath, _, err := svc.Persist(context.Background(), 7, payload)
	require.NoError(t, err)

	svc.Remove(filePath)
	_, err = os.Stat(filePath)
	assert.True(t, os.IsNotExist(err))
}
