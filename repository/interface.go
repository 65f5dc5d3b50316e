package repository

import (
	"context"

	"visual-product-builder/models"
)

// ElementRepositoryInterface defines the contract for element catalog operations.
// GetByID and List must always reflect the current authoritative price and
// active state; pricing code never reads those from anywhere else.
type ElementRepositoryInterface interface {
	GetByID(ctx context.Context, id int) (*models.Element, error)
	List(ctx context.Context, filter ElementFilterParams) ([]models.Element, error)
	Insert(ctx context.Context, req *models.SaveElementRequest) (int, error)
	Update(ctx context.Context, id int, req *models.SaveElementRequest) error
	Delete(ctx context.Context, id int) error
	BulkPrice(ctx context.Context, req *models.BulkPriceRequest) (int, error)
	CountByCollection(ctx context.Context, collectionID int) (int, error)
	ExistsByImageRef(ctx context.Context, imageRef string) (bool, error)
	InsertImport(ctx context.Context, imp *models.ElementImport) (int, error)
}

// CollectionRepositoryInterface defines the contract for collection operations
type CollectionRepositoryInterface interface {
	GetByID(ctx context.Context, id int) (*models.Collection, error)
	List(ctx context.Context, activeOnly bool) ([]models.Collection, error)
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, req *models.SaveCollectionRequest) (int, error)
	Update(ctx context.Context, id int, req *models.SaveCollectionRequest) error
	Delete(ctx context.Context, id int) error
	LinkProduct(ctx context.Context, productID, collectionID, sortOrder int) error
	UnlinkProduct(ctx context.Context, productID, collectionID int) error
}

// ProductRepositoryInterface defines the contract for product reads
type ProductRepositoryInterface interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
}

// CartRepositoryInterface defines the contract for cart persistence
type CartRepositoryInterface interface {
	EnsureCart(ctx context.Context, token string) error
	AddItem(ctx context.Context, item *models.CartItem) (int64, error)
	GetItems(ctx context.Context, token string) ([]models.CartItem, error)
	GetItem(ctx context.Context, itemID int64) (*models.CartItem, error)
	UpdateItemPrice(ctx context.Context, itemID int64, price int64) error
	DeleteItem(ctx context.Context, itemID int64) error
}

// OrderRepositoryInterface defines the contract for order persistence
type OrderRepositoryInterface interface {
	CreateOrder(ctx context.Context, cartToken string, total int64) (int64, error)
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	InsertItem(ctx context.Context, item *models.OrderItem) (int64, error)
	GetItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	SetItemImage(ctx context.Context, itemID int64, status string, imageID *int64) error
	InsertAttachment(ctx context.Context, att *models.Attachment) (int64, error)
	GetAttachment(ctx context.Context, id int64) (*models.Attachment, error)
	DeleteAttachment(ctx context.Context, id int64) error
}
