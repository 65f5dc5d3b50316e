package service

import "visual-product-builder/models"

// DriveServiceInterface defines the contract for Drive operations
type DriveServiceInterface interface {
	ListElementImages(folderID string) ([]models.ElementImport, error)
}
