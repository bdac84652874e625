package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/producer"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(repo *fakeOrderRepo, status model.OrderStatus) *model.Order {
	order := &model.Order{
		OrderID:       uuid.NewString(),
		CustomerName:  "Jean Test",
		CustomerEmail: "jean@example.com",
		CustomerPhone: "611234567",
		ReceiptMode:   model.ReceiptModeDelivery,
		OrderItems: []model.OrderItem{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(1180), LineTotal: decimal.NewFromInt(2360)},
		},
		Status: model.OrderStatusPending,
	}
	_ = repo.CreateOrder(context.Background(), order)
	if status != model.OrderStatusPending {
		repo.orders[order.OrderID].Status = status
	}
	return order
}

func TestChangeStatus_Success(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	notifier := &fakeNotifier{}
	svc := NewOrderService(orderRepo, nil, notifier)

	order := seedOrder(orderRepo, model.OrderStatusPending)

	updated, err := svc.ChangeStatus(context.Background(), order.OrderID, model.OrderStatusConfirmed, "paiement reçu")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, updated.Status)

	// 客戶收到一封狀態變更通知
	require.Equal(t, 1, notifier.callCount())
	assert.Equal(t, producer.TemplateOrderStatusChange, notifier.calls[0].template)
	assert.Equal(t, "jean@example.com", notifier.calls[0].recipient)
	assert.Equal(t, "confirmed", notifier.calls[0].data["status"])
}

// 同狀態重複請求是冪等 no-op，不該再發通知
func TestChangeStatus_IdempotentNoNotify(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	notifier := &fakeNotifier{}
	svc := NewOrderService(orderRepo, nil, notifier)

	order := seedOrder(orderRepo, model.OrderStatusConfirmed)

	updated, err := svc.ChangeStatus(context.Background(), order.OrderID, model.OrderStatusConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, 0, notifier.callCount())
}

func TestChangeStatus_OrderNotExist(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepo(), nil, &fakeNotifier{})

	_, err := svc.ChangeStatus(context.Background(), uuid.NewString(), model.OrderStatusConfirmed, "")
	assert.ErrorIs(t, err, ErrOrderNotExist)
}

func TestChangeStatus_TerminalClosed(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	notifier := &fakeNotifier{}
	svc := NewOrderService(orderRepo, nil, notifier)

	order := seedOrder(orderRepo, model.OrderStatusCancelled)

	_, err := svc.ChangeStatus(context.Background(), order.OrderID, model.OrderStatusConfirmed, "")
	var invalidErr *db.InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, 0, notifier.callCount())
}

// 確認時庫存不足 => 訂單被強制取消，原始的不足錯誤往上拋
func TestChangeStatus_StockInsufficientForcesCancel(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	notifier := &fakeNotifier{}
	svc := NewOrderService(orderRepo, nil, notifier)

	order := seedOrder(orderRepo, model.OrderStatusPending)
	orderRepo.failOn[model.OrderStatusConfirmed] = &db.StockInsufficientError{
		ProductID:   1,
		ProductName: "Produit",
		Requested:   2,
	}

	_, err := svc.ChangeStatus(context.Background(), order.OrderID, model.OrderStatusConfirmed, "")
	var stockErr *db.StockInsufficientError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, uint(1), stockErr.ProductID)

	after, getErr := orderRepo.GetOrderByID(context.Background(), order.OrderID)
	require.NoError(t, getErr)
	assert.Equal(t, model.OrderStatusCancelled, after.Status)

	// 取消通知還是要讓客戶知道
	require.Equal(t, 1, notifier.callCount())
	assert.Equal(t, producer.TemplateOrderStatusChange, notifier.calls[0].template)
	assert.Equal(t, "cancelled", notifier.calls[0].data["status"])
}

func TestCancelOrder(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	svc := NewOrderService(orderRepo, nil, &fakeNotifier{})

	order := seedOrder(orderRepo, model.OrderStatusPending)

	updated, err := svc.CancelOrder(context.Background(), order.OrderID, "client absent")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, updated.Status)
}

func TestBatchChangeStatus_ResultsInOrder(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	svc := NewOrderService(orderRepo, nil, &fakeNotifier{})

	ok1 := seedOrder(orderRepo, model.OrderStatusPending)
	closed := seedOrder(orderRepo, model.OrderStatusDelivered)
	ok2 := seedOrder(orderRepo, model.OrderStatusPending)
	missing := uuid.NewString()

	ids := []string{ok1.OrderID, closed.OrderID, ok2.OrderID, missing}
	results := svc.BatchChangeStatus(context.Background(), ids, model.OrderStatusConfirmed)
	require.Len(t, results, 4)

	for i, id := range ids {
		assert.Equal(t, id, results[i].OrderID)
	}
	require.NoError(t, results[0].Err)
	assert.Equal(t, model.OrderStatusConfirmed, results[0].Order.Status)

	var invalidErr *db.InvalidTransitionError
	assert.ErrorAs(t, results[1].Err, &invalidErr)

	require.NoError(t, results[2].Err)
	assert.ErrorIs(t, results[3].Err, ErrOrderNotExist)
}

func TestBatchChangeStatus_CapsAtLimit(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	svc := NewOrderService(orderRepo, nil, &fakeNotifier{})

	ids := make([]string, 0, batchStatusLimit+10)
	for i := 0; i < batchStatusLimit+10; i++ {
		order := seedOrder(orderRepo, model.OrderStatusPending)
		ids = append(ids, order.OrderID)
	}

	results := svc.BatchChangeStatus(context.Background(), ids, model.OrderStatusConfirmed)
	assert.Len(t, results, batchStatusLimit)
}
