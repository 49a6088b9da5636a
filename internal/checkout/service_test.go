package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/internal/coupons"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/orders"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/products"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/config"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/outbox"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/pix"
)

type stubProductsRepo struct {
	products map[uuid.UUID]models.Product
	stock    map[uuid.UUID]int
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) products.Repository { return s }

func (s *stubProductsRepo) ListActive(ctx context.Context) ([]models.Product, error) {
	return nil, nil
}

func (s *stubProductsRepo) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := s.products[id]; ok {
		return &product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductsRepo) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var list []models.Product
	for _, id := range ids {
		if product, ok := s.products[id]; ok && product.IsActive {
			list = append(list, product)
		}
	}
	return list, nil
}

func (s *stubProductsRepo) CountAvailableStock(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return s.stock, nil
}

func (s *stubProductsRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (s *stubProductsRepo) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubProductsRepo) AddStockItems(ctx context.Context, items []models.StockItem) error {
	return nil
}

func (s *stubProductsRepo) ReserveStockItems(ctx context.Context, productID uuid.UUID, orderItemID uuid.UUID, qty int) ([]models.StockItem, error) {
	return nil, nil
}

func (s *stubProductsRepo) ReleaseStockItems(ctx context.Context, orderItemID uuid.UUID) error {
	return nil
}

func (s *stubProductsRepo) MarkStockDelivered(ctx context.Context, orderItemID uuid.UUID) ([]models.StockItem, error) {
	return nil, nil
}

type stubReserver struct {
	reservations map[uuid.UUID]int
	failProduct  uuid.UUID
}

func (s *stubReserver) Reserve(ctx context.Context, tx *gorm.DB, productID, orderItemID uuid.UUID, qty int) ([]models.StockItem, error) {
	if s.failProduct != uuid.Nil && productID == s.failProduct {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")
	}
	if s.reservations == nil {
		s.reservations = map[uuid.UUID]int{}
	}
	s.reservations[productID] += qty
	return nil, nil
}

type stubCouponRepo struct {
	redeemed []uuid.UUID
	fail     bool
}

func (s *stubCouponRepo) WithTx(tx *gorm.DB) coupons.Repository { return s }

func (s *stubCouponRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCouponRepo) List(ctx context.Context) ([]models.Coupon, error) { return nil, nil }

func (s *stubCouponRepo) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	return coupon, nil
}

func (s *stubCouponRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubCouponRepo) Redeem(ctx context.Context, id uuid.UUID) error {
	if s.fail {
		return pkgerrors.New(pkgerrors.CodeConflict, "coupon exhausted")
	}
	s.redeemed = append(s.redeemed, id)
	return nil
}

type stubValidator struct {
	result *coupons.ValidateResult
	err    error
}

func (s *stubValidator) Validate(ctx context.Context, input coupons.ValidateInput) (*coupons.ValidateResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubCheckoutOrdersRepo struct {
	orders       []*models.Order
	items        []models.OrderItem
	transactions []*models.PaymentTransaction
	nextNumber   int64
}

func (s *stubCheckoutOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubCheckoutOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.nextNumber++
	order.OrderNumber = s.nextNumber
	s.orders = append(s.orders, order)
	return order, nil
}

func (s *stubCheckoutOrdersRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	s.items = append(s.items, items...)
	return nil
}

func (s *stubCheckoutOrdersRepo) CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	s.transactions = append(s.transactions, txn)
	return txn, nil
}

func (s *stubCheckoutOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCheckoutOrdersRepo) FindByNumberAndEmail(ctx context.Context, orderNumber int64, email string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCheckoutOrdersRepo) FindItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return nil, nil
}

func (s *stubCheckoutOrdersRepo) FindTransactionByOrder(ctx context.Context, orderID uuid.UUID) (*models.PaymentTransaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCheckoutOrdersRepo) FindTransactionByProviderTxnID(ctx context.Context, providerTxnID string) (*models.PaymentTransaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCheckoutOrdersRepo) FindPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	return nil, nil
}

func (s *stubCheckoutOrdersRepo) FindPendingTransactions(ctx context.Context, lastCheckedBefore time.Time, limit int) ([]models.PaymentTransaction, error) {
	return nil, nil
}

func (s *stubCheckoutOrdersRepo) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, updates map[string]any) error {
	return nil
}

func (s *stubCheckoutOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubCheckoutOrdersRepo) UpdateTransaction(ctx context.Context, txnID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubCheckoutOrdersRepo) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubGateway struct {
	charge   *pix.Charge
	err      error
	requests []pix.ChargeRequest
}

func (s *stubGateway) CreateCharge(ctx context.Context, req pix.ChargeRequest) (*pix.Charge, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.charge, nil
}

type stubDeliverer struct {
	delivered []uuid.UUID
	err       error
}

func (s *stubDeliverer) Deliver(ctx context.Context, orderID uuid.UUID) error {
	s.delivered = append(s.delivered, orderID)
	return s.err
}

type checkoutFixture struct {
	productsRepo *stubProductsRepo
	couponRepo   *stubCouponRepo
	validator    *stubValidator
	ordersRepo   *stubCheckoutOrdersRepo
	reserver     *stubReserver
	emitter      *stubEmitter
	gateway      *stubGateway
	deliverer    *stubDeliverer
	svc          Service
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		productsRepo: &stubProductsRepo{products: map[uuid.UUID]models.Product{}, stock: map[uuid.UUID]int{}},
		couponRepo:   &stubCouponRepo{},
		validator:    &stubValidator{},
		ordersRepo:   &stubCheckoutOrdersRepo{nextNumber: 3000},
		reserver:     &stubReserver{},
		emitter:      &stubEmitter{},
		gateway: &stubGateway{charge: &pix.Charge{
			TransactionID: "pix_new",
			Status:        enums.PaymentStatusPendente,
			QRCodeBase64:  "qr==",
			CopyPasteCode: "000201brcode",
		}},
		deliverer: &stubDeliverer{},
	}

	svc, err := NewService(
		f.productsRepo, f.couponRepo, f.validator, f.ordersRepo, f.reserver,
		stubTxRunner{}, f.emitter, f.gateway, f.deliverer,
		config.PixConfig{ExpirationSecs: 3600}, nil,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *checkoutFixture) seedProduct(priceCents, minQty, maxQty, stock int) models.Product {
	product := models.Product{
		ID:         uuid.New(),
		Slug:       "product-" + uuid.NewString()[:8],
		Name:       "Produto",
		Category:   "streaming",
		PriceCents: priceCents,
		MinQty:     minQty,
		MaxQty:     maxQty,
		IsActive:   true,
	}
	f.productsRepo.products[product.ID] = product
	f.productsRepo.stock[product.ID] = stock
	return product
}

func TestExecuteCreatesOrderWithCharge(t *testing.T) {
	f := newCheckoutFixture(t)
	product := f.seedProduct(2500, 1, 10, 5)

	result, err := f.svc.Execute(context.Background(), CheckoutInput{
		CustomerEmail: "Cliente@Example.com",
		CustomerName:  "Cliente Teste",
		Items:         []CheckoutItemInput{{ProductID: product.ID, Qty: 2}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if result.TotalCents != 5000 {
		t.Fatalf("expected total 5000, got %d", result.TotalCents)
	}
	if result.OrderNumber != 3001 {
		t.Fatalf("expected order number 3001, got %d", result.OrderNumber)
	}
	if len(f.ordersRepo.orders) != 1 || f.ordersRepo.orders[0].CustomerEmail != "cliente@example.com" {
		t.Fatalf("expected normalized email on order")
	}
	if f.reserver.reservations[product.ID] != 2 {
		t.Fatalf("expected 2 reserved, got %d", f.reserver.reservations[product.ID])
	}
	if len(f.ordersRepo.transactions) != 1 || f.ordersRepo.transactions[0].ProviderTxnID != "pix_new" {
		t.Fatalf("expected persisted transaction")
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventOrderCreated {
		t.Fatalf("expected order_created event, got %+v", f.emitter.events)
	}
	if len(f.gateway.requests) != 1 || f.gateway.requests[0].AmountCents != 5000 {
		t.Fatalf("expected charge for 5000")
	}
}

func TestExecuteWithCouponRedeems(t *testing.T) {
	f := newCheckoutFixture(t)
	product := f.seedProduct(5000, 1, 10, 5)

	couponID := uuid.New()
	f.validator.result = &coupons.ValidateResult{
		Coupon:        models.Coupon{ID: couponID, Code: "SAVE10", DiscountType: enums.DiscountTypePercentage},
		Code:          "SAVE10",
		DiscountCents: 500,
		EligibleCents: 5000,
	}

	result, err := f.svc.Execute(context.Background(), CheckoutInput{
		CustomerEmail: "cliente@example.com",
		CustomerName:  "Cliente Teste",
		CouponCode:    "SAVE10",
		Items:         []CheckoutItemInput{{ProductID: product.ID, Qty: 1}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if result.TotalCents != 4500 || result.DiscountCents != 500 {
		t.Fatalf("expected discounted total 4500, got %d", result.TotalCents)
	}
	if len(f.couponRepo.redeemed) != 1 || f.couponRepo.redeemed[0] != couponID {
		t.Fatalf("expected coupon redeemed")
	}
	if len(f.emitter.events) != 2 ||
		f.emitter.events[0].EventType != enums.EventCouponRedeemed ||
		f.emitter.events[1].EventType != enums.EventOrderCreated {
		t.Fatalf("unexpected events: %+v", f.emitter.events)
	}
	if f.gateway.requests[0].AmountCents != 4500 {
		t.Fatalf("charge should use discounted total")
	}
}

func TestExecuteFullyDiscountedOrderSkipsCharge(t *testing.T) {
	f := newCheckoutFixture(t)
	product := f.seedProduct(5000, 1, 10, 5)

	couponID := uuid.New()
	f.validator.result = &coupons.ValidateResult{
		Coupon:        models.Coupon{ID: couponID, Code: "FREE100", DiscountType: enums.DiscountTypePercentage},
		Code:          "FREE100",
		DiscountCents: 5000,
		EligibleCents: 5000,
	}

	result, err := f.svc.Execute(context.Background(), CheckoutInput{
		CustomerEmail: "cliente@example.com",
		CustomerName:  "Cliente Teste",
		CouponCode:    "FREE100",
		Items:         []CheckoutItemInput{{ProductID: product.ID, Qty: 1}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if result.TotalCents != 0 || result.Status != enums.OrderStatusPaid {
		t.Fatalf("expected paid zero-total result, got %+v", result)
	}
	if result.QRCodeBase64 != "" || result.CopyPasteCode != "" || result.ExpiresAt != nil {
		t.Fatalf("payment fields must be empty on a free order: %+v", result)
	}
	if len(f.gateway.requests) != 0 {
		t.Fatalf("gateway must not be called for a zero total")
	}
	if len(f.ordersRepo.transactions) != 0 {
		t.Fatalf("no payment transaction expected, got %d", len(f.ordersRepo.transactions))
	}
	if len(f.ordersRepo.orders) != 1 || f.ordersRepo.orders[0].Status != enums.OrderStatusPaid {
		t.Fatalf("order should be created paid")
	}
	if f.ordersRepo.orders[0].PaidAt == nil {
		t.Fatalf("paid_at should be set on a free order")
	}
	if len(f.couponRepo.redeemed) != 1 {
		t.Fatalf("coupon should be redeemed")
	}
	got := make([]enums.OutboxEventType, 0, len(f.emitter.events))
	for _, event := range f.emitter.events {
		got = append(got, event.EventType)
	}
	if len(got) != 3 || got[0] != enums.EventCouponRedeemed || got[1] != enums.EventOrderCreated || got[2] != enums.EventOrderPaid {
		t.Fatalf("unexpected events: %v", got)
	}
	if len(f.deliverer.delivered) != 1 || f.deliverer.delivered[0] != result.OrderID {
		t.Fatalf("expected delivery of the free order")
	}
}

func TestExecuteFreeOrderSurvivesDeliveryFailure(t *testing.T) {
	f := newCheckoutFixture(t)
	product := f.seedProduct(1000, 1, 10, 5)
	f.validator.result = &coupons.ValidateResult{
		Coupon:        models.Coupon{ID: uuid.New(), Code: "FREE100", DiscountType: enums.DiscountTypePercentage},
		Code:          "FREE100",
		DiscountCents: 1000,
		EligibleCents: 1000,
	}
	f.deliverer.err = pkgerrors.New(pkgerrors.CodeDependency, "stock gone")

	result, err := f.svc.Execute(context.Background(), CheckoutInput{
		CustomerEmail: "cliente@example.com",
		CustomerName:  "Cliente Teste",
		CouponCode:    "FREE100",
		Items:         []CheckoutItemInput{{ProductID: product.ID, Qty: 1}},
	})
	if err != nil {
		t.Fatalf("delivery failure must not fail checkout: %v", err)
	}
	if result.Status != enums.OrderStatusPaid {
		t.Fatalf("order stays paid for manual resolution, got %s", result.Status)
	}
}

func TestExecuteGatewayFailurePropagates(t *testing.T) {
	f := newCheckoutFixture(t)
	product := f.seedProduct(2500, 1, 10, 5)
	f.gateway.err = pkgerrors.New(pkgerrors.CodeDependency, "gateway timeout")
	f.gateway.charge = nil

	_, err := f.svc.Execute(context.Background(), CheckoutInput{
		CustomerEmail: "cliente@example.com",
		CustomerName:  "Cliente Teste",
		Items:         []CheckoutItemInput{{ProductID: product.ID, Qty: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(f.ordersRepo.transactions) != 0 {
		t.Fatalf("no transaction should persist after gateway failure")
	}
}

func TestExecuteExhaustedCouponAborts(t *testing.T) {
	f := newCheckoutFixture(t)
	product := f.seedProduct(2500, 1, 10, 5)
	couponID := uuid.New()
	f.validator.result = &coupons.ValidateResult{
		Coupon: models.Coupon{ID: couponID, Code: "RACE", DiscountType: enums.DiscountTypeFixed},
		Code:   "RACE", DiscountCents: 100, EligibleCents: 2500,
	}
	f.couponRepo.fail = true

	_, err := f.svc.Execute(context.Background(), CheckoutInput{
		CustomerEmail: "cliente@example.com",
		CustomerName:  "Cliente Teste",
		CouponCode:    "RACE",
		Items:         []CheckoutItemInput{{ProductID: product.ID, Qty: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.gateway.requests) != 0 {
		t.Fatalf("gateway must not be called after redeem failure")
	}
}

func TestQuoteClampsQuantities(t *testing.T) {
	f := newCheckoutFixture(t)
	product := f.seedProduct(1000, 2, 4, 3)

	quote, err := f.svc.Quote(context.Background(), CheckoutInput{
		Items: []CheckoutItemInput{{ProductID: product.ID, Qty: 10}},
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	require := quote.Lines[0]
	// 10 requested, capped at max 4, then at stock 3.
	if require.Qty != 3 || !require.Adjusted {
		t.Fatalf("expected clamp to 3, got %+v", require)
	}
	if quote.SubtotalCents != 3000 {
		t.Fatalf("expected subtotal 3000, got %d", quote.SubtotalCents)
	}
}

func TestQuoteOutOfStockConflicts(t *testing.T) {
	f := newCheckoutFixture(t)
	product := f.seedProduct(1000, 1, 5, 0)

	_, err := f.svc.Quote(context.Background(), CheckoutInput{
		Items: []CheckoutItemInput{{ProductID: product.ID, Qty: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestQuoteUnknownProduct(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Quote(context.Background(), CheckoutInput{
		Items: []CheckoutItemInput{{ProductID: uuid.New(), Qty: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
