package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jmtolibas/cafeline-backend/internal/cart"
	"github.com/jmtolibas/cafeline-backend/internal/catalog"
	"github.com/jmtolibas/cafeline-backend/internal/orders"
	"github.com/jmtolibas/cafeline-backend/pkg/config"
	"github.com/jmtolibas/cafeline-backend/pkg/db/models"
	"github.com/jmtolibas/cafeline-backend/pkg/enums"
	pkgerrors "github.com/jmtolibas/cafeline-backend/pkg/errors"
	"github.com/jmtolibas/cafeline-backend/pkg/logger"
	"github.com/jmtolibas/cafeline-backend/pkg/outbox"
	"github.com/jmtolibas/cafeline-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	highest         string
	insertOrderErrs []error
	orders          []models.Order
	lines           []models.OrderLine
	options         []models.OrderOption
	insertLineErr   func(line *models.OrderLine) error
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository {
	return s
}

func (s *stubOrdersRepo) HighestCodeForPrefix(ctx context.Context, prefix string) (string, error) {
	return s.highest, nil
}

func (s *stubOrdersRepo) InsertOrder(ctx context.Context, order *models.Order) error {
	if len(s.insertOrderErrs) > 0 {
		err := s.insertOrderErrs[0]
		s.insertOrderErrs = s.insertOrderErrs[1:]
		if err != nil {
			return err
		}
	}
	s.orders = append(s.orders, *order)
	return nil
}

func (s *stubOrdersRepo) InsertLine(ctx context.Context, line *models.OrderLine) error {
	if s.insertLineErr != nil {
		if err := s.insertLineErr(line); err != nil {
			return err
		}
	}
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	s.lines = append(s.lines, *line)
	return nil
}

func (s *stubOrdersRepo) InsertOptions(ctx context.Context, options []models.OrderOption) error {
	s.options = append(s.options, options...)
	return nil
}

func (s *stubOrdersRepo) FindByCode(ctx context.Context, code string) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) FindByCodes(ctx context.Context, codes []string) ([]models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) List(ctx context.Context, params pagination.Params, filters orders.ListFilters) (*orders.OrderList, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, code string, status enums.OrderStatus) error {
	panic("not implemented")
}

func (s *stubOrdersRepo) UpdateContact(ctx context.Context, code string, email, phone *string) error {
	panic("not implemented")
}

type stubCartStore struct {
	cart    *cart.Cart
	loadErr error
	cleared bool
	saved   *cart.Cart
}

func (s *stubCartStore) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.cart == nil {
		return &cart.Cart{}, nil
	}
	return s.cart, nil
}

func (s *stubCartStore) Save(ctx context.Context, sessionID string, c *cart.Cart) error {
	s.saved = c
	return nil
}

func (s *stubCartStore) Clear(ctx context.Context, sessionID string) error {
	s.cleared = true
	return nil
}

type stubCatalogRepo struct {
	customs  []models.Product
	extras   []models.Product
	tiers    []models.SizeTier
	products map[uuid.UUID]*models.Product
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) catalog.Repository {
	return s
}

func (s *stubCatalogRepo) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.products[id], nil
}

func (s *stubCatalogRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	panic("not implemented")
}

func (s *stubCatalogRepo) ListByCategory(ctx context.Context, category enums.ProductCategory) ([]models.Product, error) {
	switch category {
	case enums.ProductCategoryCustom:
		return s.customs, nil
	case enums.ProductCategoryExtras:
		return s.extras, nil
	}
	return nil, nil
}

func (s *stubCatalogRepo) ListSizeTiers(ctx context.Context) ([]models.SizeTier, error) {
	return s.tiers, nil
}

func (s *stubCatalogRepo) ListSizeTiersForProduct(ctx context.Context, productType string, productID uuid.UUID) ([]models.SizeTier, error) {
	panic("not implemented")
}

type stubPossession struct {
	added []string
}

func (s *stubPossession) List(ctx context.Context, sessionID string) ([]string, error) {
	return s.added, nil
}

func (s *stubPossession) Add(ctx context.Context, sessionID, orderCode string) error {
	s.added = append(s.added, orderCode)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type checkoutFixture struct {
	service    Service
	ordersRepo *stubOrdersRepo
	cartStore  *stubCartStore
	catalog    *stubCatalogRepo
	possession *stubPossession
	outbox     *stubOutbox
}

func newCheckoutFixture(t *testing.T, cfg config.CheckoutConfig, cartStore *stubCartStore, ordersRepo *stubOrdersRepo) *checkoutFixture {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test"})
	catalogRepo := &stubCatalogRepo{}
	possession := &stubPossession{}
	outboxStub := &stubOutbox{}

	allocator, err := NewAllocator(ordersRepo, cfg, nil, logg)
	require.NoError(t, err)
	allocator.sleep = func(time.Duration) {}

	svc, err := NewService(cartStore, catalogRepo, ordersRepo, possession, allocator, stubTxRunner{}, outboxStub, cfg, nil, logg)
	require.NoError(t, err)

	return &checkoutFixture{
		service:    svc,
		ordersRepo: ordersRepo,
		cartStore:  cartStore,
		catalog:    catalogRepo,
		possession: possession,
		outbox:     outboxStub,
	}
}

func cartWithLines(lines ...cart.Line) *stubCartStore {
	return &stubCartStore{cart: &cart.Cart{Lines: lines}}
}

func testLine(name string, unitPrice float64, qty int) cart.Line {
	price := decimal.NewFromFloat(unitPrice)
	return cart.Line{
		LocalID:     uuid.NewString(),
		ProductName: name,
		Quantity:    qty,
		UnitPrice:   price,
		LineTotal:   price.Mul(decimal.NewFromInt(int64(qty))).Round(2),
	}
}

func TestCheckoutCashOrderIsConfirmed(t *testing.T) {
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3}, cartWithLines(testLine("Latte", 105, 2)), &stubOrdersRepo{})

	result, err := fx.service.Checkout(context.Background(), Input{
		SessionID:     "session-1",
		CustomerName:  "Juan Dela Cruz",
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	assert.Equal(t, "JuanDelaCruz00001", result.OrderCode)
	assert.Equal(t, enums.OrderStatusConfirmed, result.Status)
	assert.True(t, decimal.NewFromInt(210).Equal(result.TotalAmount))
	assert.Equal(t, 1, result.LineCount)
	assert.Zero(t, result.SkippedLines)
	require.NotNil(t, result.PaymentMethod)
	assert.Equal(t, enums.PaymentMethodCash, *result.PaymentMethod)

	require.Len(t, fx.ordersRepo.orders, 1)
	require.NotNil(t, fx.ordersRepo.orders[0].PaymentMethod)
	assert.Equal(t, enums.PaymentMethodCash, *fx.ordersRepo.orders[0].PaymentMethod)
	assert.Equal(t, 1, fx.ordersRepo.orders[0].LineCount)

	assert.True(t, fx.cartStore.cleared)
	assert.Equal(t, []string{"JuanDelaCruz00001"}, fx.possession.added)

	require.Len(t, fx.outbox.events, 1)
	assert.Equal(t, enums.EventOrderCreated, fx.outbox.events[0].EventType)
	assert.Equal(t, "JuanDelaCruz00001", fx.outbox.events[0].AggregateID)
}

func TestCheckoutNonCashOrderStaysPending(t *testing.T) {
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3}, cartWithLines(testLine("Americano", 90, 1)), &stubOrdersRepo{})

	result, err := fx.service.Checkout(context.Background(), Input{
		SessionID:     "session-1",
		CustomerName:  "Maria",
		PaymentMethod: "gcash",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, result.Status)
}

func TestCheckoutRejectsBlankName(t *testing.T) {
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3}, cartWithLines(testLine("Latte", 100, 1)), &stubOrdersRepo{})

	_, err := fx.service.Checkout(context.Background(), Input{SessionID: "session-1", CustomerName: "   "})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3}, cartWithLines(testLine("Latte", 100, 1)), &stubOrdersRepo{})

	_, err := fx.service.Checkout(context.Background(), Input{
		SessionID:     "session-1",
		CustomerName:  "Juan",
		PaymentMethod: "barter",
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	store := &stubCartStore{cart: &cart.Cart{}}
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3}, store, &stubOrdersRepo{})

	_, err := fx.service.Checkout(context.Background(), Input{SessionID: "session-1", CustomerName: "Juan"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.False(t, store.cleared)
}

func TestCheckoutBestEffortSkipsFailedLines(t *testing.T) {
	repo := &stubOrdersRepo{}
	repo.insertLineErr = func(line *models.OrderLine) error {
		if line.ProductName == "Mocha" {
			return errors.New("column overflow")
		}
		return nil
	}
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3},
		cartWithLines(testLine("Latte", 105, 1), testLine("Mocha", 120, 1), testLine("Americano", 90, 1)),
		repo,
	)

	result, err := fx.service.Checkout(context.Background(), Input{
		SessionID:    "session-1",
		CustomerName: "Juan",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.LineCount)
	assert.Equal(t, 1, result.SkippedLines)
	// Total still reflects the full cart the customer confirmed.
	assert.True(t, decimal.NewFromInt(315).Equal(result.TotalAmount))
	require.Len(t, fx.ordersRepo.lines, 2)
	assert.True(t, fx.cartStore.cleared)

	// The header records what the cart held, so a later read can spot the
	// shortfall.
	require.Len(t, fx.ordersRepo.orders, 1)
	assert.Equal(t, 3, fx.ordersRepo.orders[0].LineCount)
}

func TestCheckoutAtomicRollsBackOnLineFailure(t *testing.T) {
	repo := &stubOrdersRepo{}
	repo.insertLineErr = func(line *models.OrderLine) error {
		return errors.New("column overflow")
	}
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3, AtomicLines: true},
		cartWithLines(testLine("Latte", 105, 1)),
		repo,
	)

	_, err := fx.service.Checkout(context.Background(), Input{SessionID: "session-1", CustomerName: "Juan"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeInternal, appErr.Code())
	assert.False(t, fx.cartStore.cleared)
}

func TestCheckoutAtomicRetriesDuplicateCode(t *testing.T) {
	repo := &stubOrdersRepo{
		insertOrderErrs: []error{fmt.Errorf("duplicate key value violates unique constraint")},
	}
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3, AtomicLines: true},
		cartWithLines(testLine("Latte", 105, 1)),
		repo,
	)

	result, err := fx.service.Checkout(context.Background(), Input{SessionID: "session-1", CustomerName: "Juan"})
	require.NoError(t, err)
	assert.Equal(t, "Juan00001", result.OrderCode)
	require.Len(t, fx.ordersRepo.orders, 1)
	require.Len(t, fx.outbox.events, 1)
}

func catalogProduct(name string, price float64) *models.Product {
	base := decimal.NewFromFloat(price)
	return &models.Product{
		ID:          uuid.New(),
		Name:        name,
		Category:    enums.ProductCategoryStandard,
		BasePrice:   &base,
		IsAvailable: true,
	}
}

func frozenLine(product *models.Product, unitPrice float64, qty int) cart.Line {
	line := testLine(product.Name, unitPrice, qty)
	line.ProductID = &product.ID
	return line
}

func TestCheckoutRevalidateAcceptsCurrentPrices(t *testing.T) {
	product := catalogProduct("Latte", 105)
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3, RevalidatePrices: true},
		cartWithLines(frozenLine(product, 105, 2)),
		&stubOrdersRepo{},
	)
	fx.catalog.products = map[uuid.UUID]*models.Product{product.ID: product}

	result, err := fx.service.Checkout(context.Background(), Input{SessionID: "session-1", CustomerName: "Juan"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(210).Equal(result.TotalAmount))
}

func TestCheckoutRevalidateRejectsDriftedPrice(t *testing.T) {
	product := catalogProduct("Latte", 130)
	store := cartWithLines(frozenLine(product, 105, 2))
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3, RevalidatePrices: true}, store, &stubOrdersRepo{})
	fx.catalog.products = map[uuid.UUID]*models.Product{product.ID: product}

	_, err := fx.service.Checkout(context.Background(), Input{SessionID: "session-1", CustomerName: "Juan"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	assert.Empty(t, fx.ordersRepo.orders)
	assert.False(t, store.cleared)
}

func TestCheckoutRevalidateRejectsVanishedProduct(t *testing.T) {
	product := catalogProduct("Latte", 105)
	store := cartWithLines(frozenLine(product, 105, 1))
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3, RevalidatePrices: true}, store, &stubOrdersRepo{})
	// The catalog no longer knows the product.
	fx.catalog.products = map[uuid.UUID]*models.Product{}

	_, err := fx.service.Checkout(context.Background(), Input{SessionID: "session-1", CustomerName: "Juan"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Empty(t, fx.ordersRepo.orders)
	assert.False(t, store.cleared)
}

func TestCheckoutRevalidateRejectsUnavailableProduct(t *testing.T) {
	product := catalogProduct("Latte", 105)
	product.IsAvailable = false
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3, RevalidatePrices: true},
		cartWithLines(frozenLine(product, 105, 1)),
		&stubOrdersRepo{},
	)
	fx.catalog.products = map[uuid.UUID]*models.Product{product.ID: product}

	_, err := fx.service.Checkout(context.Background(), Input{SessionID: "session-1", CustomerName: "Juan"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCheckoutBackfillsContactFromProfile(t *testing.T) {
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3}, cartWithLines(testLine("Latte", 100, 1)), &stubOrdersRepo{})

	profileEmail := "juan@example.com"
	profilePhone := "09171234567"
	blank := "  "
	_, err := fx.service.Checkout(context.Background(), Input{
		SessionID:     "session-1",
		CustomerName:  "Juan",
		CustomerEmail: &blank,
		ProfileEmail:  &profileEmail,
		ProfilePhone:  &profilePhone,
	})
	require.NoError(t, err)

	require.Len(t, fx.ordersRepo.orders, 1)
	order := fx.ordersRepo.orders[0]
	require.NotNil(t, order.CustomerEmail)
	assert.Equal(t, profileEmail, *order.CustomerEmail)
	require.NotNil(t, order.CustomerPhone)
	assert.Equal(t, profilePhone, *order.CustomerPhone)
}

func TestCheckoutKeepsProvidedContact(t *testing.T) {
	fx := newCheckoutFixture(t, config.CheckoutConfig{MaxIDAttempts: 3}, cartWithLines(testLine("Latte", 100, 1)), &stubOrdersRepo{})

	customerEmail := "direct@example.com"
	profileEmail := "profile@example.com"
	_, err := fx.service.Checkout(context.Background(), Input{
		SessionID:     "session-1",
		CustomerName:  "Juan",
		CustomerEmail: &customerEmail,
		ProfileEmail:  &profileEmail,
	})
	require.NoError(t, err)

	require.Len(t, fx.ordersRepo.orders, 1)
	require.NotNil(t, fx.ordersRepo.orders[0].CustomerEmail)
	assert.Equal(t, customerEmail, *fx.ordersRepo.orders[0].CustomerEmail)
}
