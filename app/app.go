package app

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"visual-product-builder/app/controller"
	"visual-product-builder/app/router"
	"visual-product-builder/db"
	"visual-product-builder/entitlement"
	"visual-product-builder/pricing"
	"visual-product-builder/repository"
	"visual-product-builder/service"
	"visual-product-builder/session"
)

// Initialize initializes the application
func Initialize() error {
	// Initialize database connection
	if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Entitlement policy from the configured plan
	policy := entitlement.FromEnv()
	log.Printf("✓ Plan: %s", policy.Plan())

	// Repositories
	elementRepo := repository.NewElementRepository()
	collectionRepo := repository.NewCollectionRepository()
	productRepo := repository.NewProductRepository()
	cartRepo := repository.NewCartRepository()
	orderRepo := repository.NewOrderRepository()

	// Draft store: Redis when configured, in-process otherwise
	var drafts session.DraftStore
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		store, err := session.NewRedisDraftStore(redisURL)
		if err != nil {
			return fmt.Errorf("failed to initialize draft store: %w", err)
		}
		drafts = store
		log.Printf("✓ Draft store: redis")
	} else {
		drafts = session.NewMemoryDraftStore()
		log.Printf("✓ Draft store: memory (REDIS_URL not set)")
	}

	// Services
	snapshotService := service.NewSnapshotService(os.Getenv("UPLOAD_DIR"))
	sheetService := service.NewSheetService(orderRepo)

	// Drive import is optional: only wired when credentials are configured
	var importService service.ImportServiceInterface
	if credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credentialsPath != "" {
		driveService, err := service.NewDriveService(credentialsPath)
		if err != nil {
			return err
		}
		importService = service.NewImportService(driveService, elementRepo)
		log.Printf("✓ Drive import enabled")
	}

	// Pricing pipeline
	pipeline := pricing.NewPipeline(elementRepo, productRepo, cartRepo, orderRepo, snapshotService)

	// Configurator session manager
	limit := session.DefaultElementLimit
	if v := os.Getenv("ELEMENT_LIMIT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("ELEMENT_LIMIT must be a positive integer, got %q", v)
		}
		limit = parsed
	}
	manager := session.NewManager(drafts, cartRepo, policy, limit)

	// Create controllers
	controllers := &router.Controllers{
		Element:      controller.NewElementController(elementRepo, importService, policy),
		Collection:   controller.NewCollectionController(collectionRepo, elementRepo, policy),
		Configurator: controller.NewConfiguratorController(manager, elementRepo, productRepo, pipeline),
		Cart:         controller.NewCartController(cartRepo, pipeline),
		Order:        controller.NewOrderController(orderRepo, pipeline, sheetService, snapshotService),
	}

	// Setup routes using standard http router
	router.SetupRoutes(controllers, router.NewMiddleware())

	return nil
}
