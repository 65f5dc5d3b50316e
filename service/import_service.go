package service

import (
	"context"
	"fmt"
	"log"

	"visual-product-builder/models"
	"visual-product-builder/repository"
)

// ImportService imports element images from Google Drive into the catalog.
// Imported rows are inserted inactive so a catalog manager can price and
// activate them from the admin screens.
type ImportService struct {
	driveService DriveServiceInterface
	repository   repository.ElementRepositoryInterface
}

// NewImportService creates a new ImportService
func NewImportService(driveService DriveServiceInterface, repo repository.ElementRepositoryInterface) *ImportService {
	return &ImportService{
		driveService: driveService,
		repository:   repo,
	}
}

// Ensure ImportService implements ImportServiceInterface
var _ ImportServiceInterface = (*ImportService)(nil)

// ImportElements imports element images from a Drive folder and returns stats.
// inserted = new rows created, skipped = already imported (by image_ref),
// total = parseable element images seen in the folder.
func (s *ImportService) ImportElements(ctx context.Context, folderID string) (imports []models.ElementImport, inserted int, skipped int, total int, err error) {
	log.Printf("🔄 Starting element import for folder: %s", folderID)

	imports, err = s.driveService.ListElementImages(folderID)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("failed to list element images from Drive: %w", err)
	}

	total = len(imports)

	for _, imp := range imports {
		exists, err := s.repository.ExistsByImageRef(ctx, imp.DriveFileID)
		if err != nil {
			log.Printf("❌ Error checking existence for drive file %s: %v", imp.DriveFileID, err)
			continue
		}

		if exists {
			log.Printf("⏭️  Skipping drive file %s (already imported)", imp.DriveFileID)
			skipped++
			continue
		}

		if _, err := s.repository.InsertImport(ctx, &imp); err != nil {
			log.Printf("❌ Error inserting element from drive file %s: %v", imp.DriveFileID, err)
			continue
		}

		log.Printf("✅ Imported element %s (%s, %s)", imp.Name, imp.Category, imp.ColorLabel)
		inserted++
	}

	log.Printf("📦 Import finished: %d inserted, %d skipped, %d total", inserted, skipped, total)
	return imports, inserted, skipped, total, nil
}
