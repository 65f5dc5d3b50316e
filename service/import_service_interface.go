package service

import (
	"context"

	"visual-product-builder/models"
)

// ImportServiceInterface defines the contract for the element import service
type ImportServiceInterface interface {
	ImportElements(ctx context.Context, folderID string) (imports []models.ElementImport, inserted int, skipped int, total int, err error)
}
