package service

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"visual-product-builder/models"
	"visual-product-builder/utils"
)

// DriveService handles Google Drive API operations for element image import
type DriveService struct {
	client *drive.Service
}

// NewDriveService creates a new DriveService instance.
// credentialsPath should be the path to the Service Account JSON file.
func NewDriveService(credentialsPath string) (*DriveService, error) {
	ctx := context.Background()

	driveService, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveService{
		client: driveService,
	}, nil
}

// Ensure DriveService implements DriveServiceInterface
var _ DriveServiceInterface = (*DriveService)(nil)

// ListElementImages lists all element images in a Google Drive folder and
// parses their filenames into importable catalog rows. Files whose names do
// not follow the NAME_CATEGORY_COLOR pattern are skipped with a log line.
func (ds *DriveService) ListElementImages(folderID string) ([]models.ElementImport, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	var allFiles []*drive.File
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType)")

		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}

		allFiles = append(allFiles, r.Files...)
		pageToken = r.NextPageToken

		if pageToken == "" {
			break
		}
	}

	imageMimeTypes := map[string]bool{
		"image/png":     true,
		"image/svg+xml": true,
	}

	var imports []models.ElementImport
	for _, f := range allFiles {
		if !imageMimeTypes[f.MimeType] {
			continue
		}

		imp, err := utils.ParseElementFileName(f.Name)
		if err != nil {
			log.Printf("⚠️  Skipping %s: %v", f.Name, err)
			continue
		}

		imp.DriveFileID = f.Id
		imp.ImageURL = fmt.Sprintf("https://drive.google.com/uc?id=%s", f.Id)
		imports = append(imports, *imp)
	}

	log.Printf("📂 Drive folder %s: %d files, %d parseable element images", folderID, len(allFiles), len(imports))
	return imports, nil
}
