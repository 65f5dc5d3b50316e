package pricing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-product-builder/models"
	"visual-product-builder/repository"
)

// fakeCatalog is an in-memory element catalog counting lookups
type fakeCatalog struct {
	elements map[int]*models.Element
	lookups  int
}

var _ repository.ElementRepositoryInterface = (*fakeCatalog)(nil)

func (f *fakeCatalog) GetByID(ctx context.Context, id int) (*models.Element, error) {
	f.lookups++
	return f.elements[id], nil
}
func (f *fakeCatalog) List(ctx context.Context, filter repository.ElementFilterParams) ([]models.Element, error) {
	return nil, nil
}
func (f *fakeCatalog) Insert(ctx context.Context, req *models.SaveElementRequest) (int, error) {
	return 0, nil
}
func (f *fakeCatalog) Update(ctx context.Context, id int, req *models.SaveElementRequest) error {
	return nil
}
func (f *fakeCatalog) Delete(ctx context.Context, id int) error { return nil }
func (f *fakeCatalog) BulkPrice(ctx context.Context, req *models.BulkPriceRequest) (int, error) {
	return 0, nil
}
func (f *fakeCatalog) CountByCollection(ctx context.Context, collectionID int) (int, error) {
	return 0, nil
}
func (f *fakeCatalog) ExistsByImageRef(ctx context.Context, imageRef string) (bool, error) {
	return false, nil
}
func (f *fakeCatalog) InsertImport(ctx context.Context, imp *models.ElementImport) (int, error) {
	return 0, nil
}

type fakeProducts struct {
	products map[int]*models.Product
}

var _ repository.ProductRepositoryInterface = (*fakeProducts)(nil)

func (f *fakeProducts) GetByID(ctx context.Context, id int) (*models.Product, error) {
	return f.products[id], nil
}

type fakeCarts struct {
	items  map[int64]*models.CartItem
	nextID int64
}

var _ repository.CartRepositoryInterface = (*fakeCarts)(nil)

func newFakeCarts() *fakeCarts {
	return &fakeCarts{items: make(map[int64]*models.CartItem)}
}

func (f *fakeCarts) EnsureCart(ctx context.Context, token string) error { return nil }
func (f *fakeCarts) AddItem(ctx context.Context, item *models.CartItem) (int64, error) {
	f.nextID++
	stored := *item
	stored.ID = f.nextID
	f.items[f.nextID] = &stored
	return f.nextID, nil
}
func (f *fakeCarts) GetItems(ctx context.Context, token string) ([]models.CartItem, error) {
	var out []models.CartItem
	for id := int64(1); id <= f.nextID; id++ {
		if item, ok := f.items[id]; ok && item.CartToken == token {
			out = append(out, *item)
		}
	}
	return out, nil
}
func (f *fakeCarts) GetItem(ctx context.Context, itemID int64) (*models.CartItem, error) {
	return f.items[itemID], nil
}
func (f *fakeCarts) UpdateItemPrice(ctx context.Context, itemID int64, price int64) error {
	item, ok := f.items[itemID]
	if !ok {
		return fmt.Errorf("cart item with id %d does not exist", itemID)
	}
	item.LinePrice = price
	return nil
}
func (f *fakeCarts) DeleteItem(ctx context.Context, itemID int64) error {
	delete(f.items, itemID)
	return nil
}

type fakeOrders struct {
	orders      map[int64]*models.Order
	items       map[int64]*models.OrderItem
	attachments map[int64]*models.Attachment
	nextID      int64
	attErr      error
}

var _ repository.OrderRepositoryInterface = (*fakeOrders)(nil)

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders:      make(map[int64]*models.Order),
		items:       make(map[int64]*models.OrderItem),
		attachments: make(map[int64]*models.Attachment),
	}
}

func (f *fakeOrders) CreateOrder(ctx context.Context, cartToken string, total int64) (int64, error) {
	f.nextID++
	f.orders[f.nextID] = &models.Order{ID: f.nextID, CartToken: cartToken, Status: "created", Total: total}
	return f.nextID, nil
}
func (f *fakeOrders) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return f.orders[orderID], nil
}
func (f *fakeOrders) InsertItem(ctx context.Context, item *models.OrderItem) (int64, error) {
	f.nextID++
	stored := *item
	stored.ID = f.nextID
	f.items[f.nextID] = &stored
	return f.nextID, nil
}
func (f *fakeOrders) GetItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var out []models.OrderItem
	for id := int64(1); id <= f.nextID; id++ {
		if item, ok := f.items[id]; ok && item.OrderID == orderID {
			out = append(out, *item)
		}
	}
	return out, nil
}
func (f *fakeOrders) SetItemImage(ctx context.Context, itemID int64, status string, imageID *int64) error {
	item, ok := f.items[itemID]
	if !ok {
		return fmt.Errorf("order item with id %d does not exist", itemID)
	}
	item.ImageStatus = status
	item.ImageID = imageID
	return nil
}
func (f *fakeOrders) InsertAttachment(ctx context.Context, att *models.Attachment) (int64, error) {
	if f.attErr != nil {
		return 0, f.attErr
	}
	f.nextID++
	stored := *att
	stored.ID = f.nextID
	f.attachments[f.nextID] = &stored
	return f.nextID, nil
}
func (f *fakeOrders) GetAttachment(ctx context.Context, id int64) (*models.Attachment, error) {
	return f.attachments[id], nil
}
func (f *fakeOrders) DeleteAttachment(ctx context.Context, id int64) error {
	delete(f.attachments, id)
	return nil
}

type fakeSnapshots struct {
	persisted []string
	removed   []string
	err       error
}

var _ SnapshotStore = (*fakeSnapshots)(nil)

func (f *fakeSnapshots) Persist(ctx context.Context, orderID int64, imageData string) (string, int64, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	path := fmt.Sprintf("uploads/vpb/order_%d_%d.png", orderID, len(f.persisted))
	f.persisted = append(f.persisted, path)
	return path, int64(len(imageData)), nil
}
func (f *fakeSnapshots) Remove(filePath string) {
	f.removed = append(f.removed, filePath)
}

func activeElement(id int, name, color string, price int64) *models.Element {
	return &models.Element{ID: id, Name: name, ColorLabel: color, Price: price, IsActive: true}
}

func testPipeline() (*Pipeline, *fakeCatalog, *fakeProducts, *fakeCarts, *fakeOrders, *fakeSnapshots) {
	catalog := &fakeCatalog{elements: map[int]*models.Element{
		1: activeElement(1, "A", "blue", 200),
		2: activeElement(2, "B", "beige", 300),
		3: activeElement(3, "C", "red", 150),
	}}
	products := &fakeProducts{products: map[int]*models.Product{
		10: {ID: 10, Name: "Monogram Board", RegularPrice: 1000, IsActive: true},
	}}
	carts := newFakeCarts()
	orders := newFakeOrders()
	snapshots := &fakeSnapshots{}
	return NewPipeline(catalog, products, carts, orders, snapshots), catalog, products, carts, orders, snapshots
}

func TestIngestValidatesAgainstCatalog(t *testing.T) {
	p, _, _, _, _, _ := testPipeline()
	ctx := context.Background()

	raw := `{"elements":[{"id":1,"name":"A","color":"blue","colorHex":"#00f","isSvg":false},{"id":2,"name":"B","color":"beige","colorHex":"#eed","isSvg":false}]}`
	validated, summary, image := p.Ingest(ctx, raw, "")

	require.Len(t, validated, 2)
	assert.Equal(t, "A (blue), B (beige)", summary)
	assert.Empty(t, image)
	assert.Equal(t, int64(200), validated[0].Price)
	assert.Equal(t, int64(300), validated[1].Price)
}

func TestIngestIgnoresClientSuppliedPrice(t *testing.T) {
	p, _, _, carts, _, _ := testPipeline()
	ctx := context.Background()

	// Payload carries a forged price field; it must not influence anything
	raw := `{"elements":[{"id":1,"name":"A","color":"blue","price":1}]}`
	validated, _, _ := p.Ingest(ctx, raw, "")
	require.Len(t, validated, 1)
	assert.Equal(t, int64(200), validated[0].Price)

	item, err := p.AddToCart(ctx, &models.AddToCartRequest{
		CartToken: "t1", ProductID: 10, Quantity: 1, Configuration: raw,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), item.LinePrice)

	total, err := p.Reprice(BeginPass(ctx), "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), total)
	_ = carts
}

func TestIngestDropsUnknownElements(t *testing.T) {
	p, _, _, _, _, _ := testPipeline()
	ctx := context.Background()

	raw := `{"elements":[{"id":1,"name":"A","color":"blue"},{"id":999,"name":"Z","color":"void"}]}`
	validated, summary, _ := p.Ingest(ctx, raw, "")

	require.Len(t, validated, 1)
	assert.Equal(t, 1, validated[0].ID)
	assert.Equal(t, "A (blue)", summary)
}

func TestIngestOnlyUnknownElementYieldsPlainProduct(t *testing.T) {
	p, _, _, _, _, _ := testPipeline()
	ctx := context.Background()

	raw := `{"elements":[{"id":999,"name":"Z","color":"void"}]}`
	validated, summary, image := p.Ingest(ctx, raw, "data:image/png;base64,AAAA")

	assert.Nil(t, validated)
	assert.Empty(t, summary)
	assert.Empty(t, image)
}

func TestIngestMalformedPayloadDegradesSilently(t *testing.T) {
	p, _, _, _, _, _ := testPipeline()
	ctx := context.Background()

	for _, raw := range []string{"", "not json", `{"other":true}`, `{"elements":[]}`} {
		validated, summary, image := p.Ingest(ctx, raw, "")
		assert.Nil(t, validated, "payload %q", raw)
		assert.Empty(t, summary)
		assert.Empty(t, image)
	}
}

func TestIngestImageRequiresExactPNGPrefix(t *testing.T) {
	p, _, _, _, _, _ := testPipeline()
	ctx := context.Background()
	raw := `{"elements":[{"id":1,"name":"A","color":"blue"}]}`

	_, _, image := p.Ingest(ctx, raw, "data:image/jpeg;base64,AAAA")
	assert.Empty(t, image)

	_, _, image = p.Ingest(ctx, raw, "data:image/png;base64,AAAA")
	assert.Equal(t, "data:image/png;base64,AAAA", image)
}

func TestRepriceUsesCurrentCatalogPrice(t *testing.T) {
	p, catalog, _, _, _, _ := testPipeline()
	ctx := context.Background()

	// Element E priced $4 at add-to-cart time
	catalog.elements[5] = activeElement(5, "E", "gold", 400)
	raw := `{"elements":[{"id":5,"name":"E","color":"gold"}]}`
	item, err := p.AddToCart(ctx, &models.AddToCartRequest{CartToken: "t1", ProductID: 10, Configuration: raw})
	require.NoError(t, err)
	assert.Equal(t, int64(1400), item.LinePrice)

	// Price changes to $5 before checkout; repricing must use $5, not $4
	catalog.elements[5].Price = 500
	total, err := p.Reprice(BeginPass(ctx), "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), total)
}

func TestRepriceIsIdempotent(t *testing.T) {
	p, _, _, _, _, _ := testPipeline()
	ctx := context.Background()

	raw := `{"elements":[{"id":1,"name":"A","color":"blue"},{"id":3,"name":"C","color":"red"}]}`
	_, err := p.AddToCart(ctx, &models.AddToCartRequest{CartToken: "t1", ProductID: 10, Configuration: raw})
	require.NoError(t, err)

	first, err := p.Reprice(BeginPass(ctx), "t1")
	require.NoError(t, err)
	second, err := p.Reprice(BeginPass(ctx), "t1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1350), first)
}

func TestRepriceExecutesOncePerPass(t *testing.T) {
	p, catalog, _, _, _, _ := testPipeline()
	ctx := context.Background()

	raw := `{"elements":[{"id":1,"name":"A","color":"blue"}]}`
	_, err := p.AddToCart(ctx, &models.AddToCartRequest{CartToken: "t1", ProductID: 10, Configuration: raw})
	require.NoError(t, err)

	pass := BeginPass(ctx)
	first, err := p.Reprice(pass, "t1")
	require.NoError(t, err)

	lookupsAfterFirst := catalog.lookups

	// Host triggers the totals hook again within the same pass: no effects,
	// same result
	second, err := p.Reprice(pass, "t1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, lookupsAfterFirst, catalog.lookups)
}

func TestRepriceOverwritesWithoutAccumulation(t *testing.T) {
	p, _, _, carts, _, _ := testPipeline()
	ctx := context.Background()

	raw := `{"elements":[{"id":2,"name":"B","color":"beige"}]}`
	item, err := p.AddToCart(ctx, &models.AddToCartRequest{CartToken: "t1", ProductID: 10, Configuration: raw})
	require.NoError(t, err)

	// Something clobbers the stored price; repricing fully overwrites it
	carts.items[item.ID].LinePrice = 999999
	total, err := p.Reprice(BeginPass(ctx), "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1300), total)
	assert.Equal(t, int64(1300), carts.items[item.ID].LinePrice)
}

func TestRepriceExcludesInactiveElements(t *testing.T) {
	p, catalog, _, _, _, _ := testPipeline()
	ctx := context.Background()

	raw := `{"elements":[{"id":1,"name":"A","color":"blue"},{"id":2,"name":"B","color":"beige"}]}`
	_, err := p.AddToCart(ctx, &models.AddToCartRequest{CartToken: "t1", ProductID: 10, Configuration: raw})
	require.NoError(t, err)

	// B goes inactive between add-to-cart and checkout: it contributes zero,
	// although the summary still mentions it
	catalog.elements[2].IsActive = false
	total, err := p.Reprice(BeginPass(ctx), "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), total)
}

func TestRepriceMultipliesByQuantity(t *testing.T) {
	p, _, _, _, _, _ := testPipeline()
	ctx := context.Background()

	raw := `{"elements":[{"id":1,"name":"A","color":"blue"}]}`
	_, err := p.AddToCart(ctx, &models.AddToCartRequest{CartToken: "t1", ProductID: 10, Quantity: 2, Configuration: raw})
	require.NoError(t, err)

	total, err := p.Reprice(BeginPass(ctx), "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(2400), total)
}

func TestMaterializeCopiesConfigurationAndCachesElementsPrice(t *testing.T) {
	p, _, _, _, orders, _ := testPipeline()
	ctx := context.Background()

	raw := `{"elements":[{"id":1,"name":"A","color":"blue"},{"id":2,"name":"B","color":"beige"}]}`
	_, err := p.AddToCart(ctx, &models.AddToCartRequest{CartToken: "t1", ProductID: 10, Configuration: raw})
	require.NoError(t, err)

	orderID, err := p.Materialize(ctx, "t1")
	require.NoError(t, err)

	items, err := orders.GetItems(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "A (blue), B (beige)", item.Summary)
	require.Len(t, item.Elements, 2)

	// Round-trip: re-summing validated_elements equals the cached sum
	var resum int64
	for _, v := range item.Elements {
		resum += v.Price
	}
	assert.Equal(t, resum, item.ElementsPrice)
	assert.Equal(t, int64(500), item.ElementsPrice)
	assert.Empty(t, item.ImageStatus)
}

func TestMaterializeMarksPendingImage(t *testing.T) {
	p, _, _, _, orders, _ := testPipeline()
	ctx := context.Background()

	raw := `{"elements":[{"id":1,"name":"A","color":"blue"}]}`
	_, err := p.AddToCart(ctx, &models.AddToCartRequest{
		CartToken: "t1", ProductID: 10, Configuration: raw,
		ImageData: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)

	orderID, err := p.Materialize(ctx, "t1")
	require.NoError(t, err)

	items, _ := orders.GetItems(ctx, orderID)
	require.Len(t, items, 1)
	assert.Equal(t, models.ImageStatusPending, items[0].ImageStatus)
}

func TestMaterializeEmptyCartFails(t *testing.T) {
	p, _, _, _, _, _ := testPipeline()
	_, err := p.Materialize(context.Background(), "empty")
	require.Error(t, err)
}

func TestPersistImagesSaves(t *testing.T) {
	p, _, _, _, orders, snapshots := testPipeline()
	ctx := context.Background()

	raw := `{"elements":[{"id":1,"name":"A","color":"blue"}]}`
	_, err := p.AddToCart(ctx, &models.AddToCartRequest{
		CartToken: "t1", ProductID: 10, Configuration: raw,
		ImageData: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)

	orderID, err := p.Materialize(ctx, "t1")
	require.NoError(t, err)
	require.NoError(t, p.PersistImages(ctx, orderID, "t1"))

	items, _ := orders.GetItems(ctx, orderID)
	require.Len(t, items, 1)
	assert.Equal(t, models.ImageStatusSaved, items[0].ImageStatus)
	require.NotNil(t, items[0].ImageID)

	att, err := orders.GetAttachment(ctx, *items[0].ImageID)
	require.NoError(t, err)
	require.NotNil(t, att)
	assert.Equal(t, orderID, att.OrderID)
	assert.Len(t, snapshots.persisted, 1)
}

func TestPersistImagesFailureIsTerminalAndNonBlocking(t *testing.T) {
	p, _, _, _, orders, snapshots := testPipeline()
	ctx := context.Background()
	snapshots.err = fmt.Errorf("decoded image too large")

	raw := `{"elements":[{"id":1,"name":"A","color":"blue"}]}`
	_, err := p.AddToCart(ctx, &models.AddToCartRequest{
		CartToken: "t1", ProductID: 10, Configuration: raw,
		ImageData: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)

	orderID, err := p.Materialize(ctx, "t1")
	require.NoError(t, err)
	require.NoError(t, p.PersistImages(ctx, orderID, "t1"))

	items, _ := orders.GetItems(ctx, orderID)
	require.Len(t, items, 1)
	assert.Equal(t, models.ImageStatusFailed, items[0].ImageStatus)
	assert.Nil(t, items[0].ImageID)
	assert.Empty(t, orders.attachments)
}

func TestPersistImagesCleansUpWhenAttachmentInsertFails(t *testing.T) {
	p, _, _, _, orders, snapshots := testPipeline()
	ctx := context.Background()
	orders.attErr = fmt.Errorf("db down")

	raw := `{"elements":[{"id":1,"name":"A","color":"blue"}]}`
	_, err := p.AddToCart(ctx, &models.AddToCartRequest{
		CartToken: "t1", ProductID: 10, Configuration: raw,
		ImageData: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)

	orderID, err := p.Materialize(ctx, "t1")
	require.NoError(t, err)
	require.NoError(t, p.PersistImages(ctx, orderID, "t1"))

	// The written file must not be orphaned
	require.Len(t, snapshots.persisted, 1)
	assert.Equal(t, snapshots.persisted, snapshots.removed)

	items, _ := orders.GetItems(ctx, orderID)
	assert.Equal(t, models.ImageStatusFailed, items[0].ImageStatus)
}

func TestPersistImagesMatchesByElementsEquality(t *testing.T) {
	p, _, _, carts, orders, _ := testPipeline()
	ctx := context.Background()

	raw := `{"elements":[{"id":1,"name":"A","color":"blue"}]}`
	_, err := p.AddToCart(ctx, &models.AddToCartRequest{
		CartToken: "t1", ProductID: 10, Configuration: raw,
		ImageData: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)

	orderID, err := p.Materialize(ctx, "t1")
	require.NoError(t, err)

	// The matching cart entry disappears before the image stage runs
	for id := range carts.items {
		delete(carts.items, id)
	}
	require.NoError(t, p.PersistImages(ctx, orderID, "t1"))

	items, _ := orders.GetItems(ctx, orderID)
	assert.Equal(t, models.ImageStatusFailed, items[0].ImageStatus)
}
