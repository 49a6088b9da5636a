package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/internal/orders"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/pix"
)

type stubPaymentsRepo struct {
	order   *models.Order
	txn     *models.PaymentTransaction
	updates map[string]any
}

func (s *stubPaymentsRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubPaymentsRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (s *stubPaymentsRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	return nil
}

func (s *stubPaymentsRepo) CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	return txn, nil
}

func (s *stubPaymentsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order != nil && s.order.ID == id {
		return s.order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPaymentsRepo) FindByNumberAndEmail(ctx context.Context, orderNumber int64, email string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPaymentsRepo) FindItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return nil, nil
}

func (s *stubPaymentsRepo) FindTransactionByOrder(ctx context.Context, orderID uuid.UUID) (*models.PaymentTransaction, error) {
	if s.txn != nil && s.txn.OrderID == orderID {
		return s.txn, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPaymentsRepo) FindTransactionByProviderTxnID(ctx context.Context, providerTxnID string) (*models.PaymentTransaction, error) {
	if s.txn != nil && s.txn.ProviderTxnID == providerTxnID {
		return s.txn, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPaymentsRepo) FindPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	return nil, nil
}

func (s *stubPaymentsRepo) FindPendingTransactions(ctx context.Context, lastCheckedBefore time.Time, limit int) ([]models.PaymentTransaction, error) {
	return nil, nil
}

func (s *stubPaymentsRepo) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, updates map[string]any) error {
	return nil
}

func (s *stubPaymentsRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubPaymentsRepo) UpdateTransaction(ctx context.Context, txnID uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubPaymentsRepo) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	return nil, nil
}

type stubChargeReader struct {
	charge *pix.Charge
	err    error
	calls  int
}

func (s *stubChargeReader) GetCharge(ctx context.Context, transactionID string) (*pix.Charge, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.charge, nil
}

type stubTransitioner struct {
	applied []enums.PaymentStatus
}

func (s *stubTransitioner) ApplyPaymentStatus(ctx context.Context, providerTxnID string, status enums.PaymentStatus) error {
	s.applied = append(s.applied, status)
	return nil
}

func newPaymentsFixture(t *testing.T, txnStatus enums.PaymentStatus) (*stubPaymentsRepo, *stubChargeReader, *stubTransitioner, Service) {
	t.Helper()
	orderID := uuid.New()
	repo := &stubPaymentsRepo{
		order: &models.Order{ID: orderID, Status: enums.OrderStatusPending},
		txn: &models.PaymentTransaction{
			ID:            uuid.New(),
			OrderID:       orderID,
			ProviderTxnID: "pix_poll",
			Status:        txnStatus,
		},
	}
	reader := &stubChargeReader{}
	transitioner := &stubTransitioner{}
	svc, err := NewService(repo, reader, transitioner, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return repo, reader, transitioner, svc
}

func TestCheckStatusTerminalSkipsGateway(t *testing.T) {
	repo, reader, _, svc := newPaymentsFixture(t, enums.PaymentStatusCompleto)

	view, err := svc.CheckStatus(context.Background(), repo.order.ID)
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if reader.calls != 0 {
		t.Fatalf("gateway must not be queried for settled charges")
	}
	if view.Status != enums.PaymentStatusCompleto {
		t.Fatalf("expected stored status, got %s", view.Status)
	}
}

func TestCheckStatusAppliesGatewayTransition(t *testing.T) {
	repo, reader, transitioner, svc := newPaymentsFixture(t, enums.PaymentStatusPendente)
	reader.charge = &pix.Charge{TransactionID: "pix_poll", Status: enums.PaymentStatusCompleto}

	view, err := svc.CheckStatus(context.Background(), repo.order.ID)
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if len(transitioner.applied) != 1 || transitioner.applied[0] != enums.PaymentStatusCompleto {
		t.Fatalf("expected transition to COMPLETO, got %v", transitioner.applied)
	}
	if view.Status != enums.PaymentStatusCompleto {
		t.Fatalf("expected COMPLETO, got %s", view.Status)
	}
}

func TestCheckStatusStillPendingRecordsCheck(t *testing.T) {
	repo, reader, transitioner, svc := newPaymentsFixture(t, enums.PaymentStatusPendente)
	reader.charge = &pix.Charge{TransactionID: "pix_poll", Status: enums.PaymentStatusPendente}

	view, err := svc.CheckStatus(context.Background(), repo.order.ID)
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if len(transitioner.applied) != 0 {
		t.Fatalf("no transition for unchanged status")
	}
	if repo.updates == nil {
		t.Fatalf("expected last_checked_at update")
	}
	if view.Status != enums.PaymentStatusPendente {
		t.Fatalf("expected PENDENTE, got %s", view.Status)
	}
}

func TestCheckStatusUnknownOrder(t *testing.T) {
	_, _, _, svc := newPaymentsFixture(t, enums.PaymentStatusPendente)

	_, err := svc.CheckStatus(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
