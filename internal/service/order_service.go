package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/telecom_shop/internal/domain/model/event"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/producer"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/eventdb"
	"github.com/RoyceAzure/lab/telecom_shop/internal/pkg/util"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrOrderNotExist = errors.New("order is not exist")
)

// 批次操作上限，後台全選一頁最多就這個數
const batchStatusLimit = 50

// BatchStatusResult 批次換狀態的單筆結果，失敗不中斷整批
type BatchStatusResult struct {
	OrderID string
	Order   *model.Order
	Err     error
}

type IOrderService interface {
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	GetOrderByReference(ctx context.Context, reference string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int, email string) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error)
	ChangeStatus(ctx context.Context, orderID string, next model.OrderStatus, message string) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID string, reason string) (*model.Order, error)
	BatchChangeStatus(ctx context.Context, orderIDs []string, next model.OrderStatus) []BatchStatusResult
	UpdateContact(ctx context.Context, order *model.Order) (*model.Order, error)
}

// 狀態轉移的編排層
// 庫存副作用在 repo 的單一交易裡完成，這裡負責善後:
// 確認時庫存不足 => 強制取消該筆訂單，再把不足的錯誤往上拋
type OrderService struct {
	orderRepo db.IOrderRepository
	eventDao  *eventdb.EventDao
	notifier  producer.INotificationProducer
}

func NewOrderService(orderRepo db.IOrderRepository, eventDao *eventdb.EventDao, notifier producer.INotificationProducer) *OrderService {
	return &OrderService{orderRepo: orderRepo, eventDao: eventDao, notifier: notifier}
}

func (o *OrderService) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := o.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			return nil, ErrOrderNotExist
		}
		return nil, err
	}
	return order, nil
}

func (o *OrderService) GetOrderByReference(ctx context.Context, reference string) (*model.Order, error) {
	order, err := o.orderRepo.GetOrderByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			return nil, ErrOrderNotExist
		}
		return nil, err
	}
	return order, nil
}

func (o *OrderService) GetOrdersByUser(ctx context.Context, userID int, email string) ([]model.Order, error) {
	return o.orderRepo.GetOrdersByUser(ctx, userID, email)
}

func (o *OrderService) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	return o.orderRepo.GetAllOrders(ctx)
}

func (o *OrderService) GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error) {
	return o.orderRepo.GetOrdersPaginated(ctx, page, pageSize)
}

// ChangeStatus 狀態轉移入口
// 確認帶進場時庫存不足 => 這張單救不回來，直接強制取消後回報
// 稽核與通知都是 best-effort，不影響已完成的轉移
func (o *OrderService) ChangeStatus(ctx context.Context, orderID string, next model.OrderStatus, message string) (*model.Order, error) {
	before, err := o.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := before.Status

	order, err := o.orderRepo.UpdateOrderStatus(ctx, orderID, next)
	if err != nil {
		var stockErr *db.StockInsufficientError
		if errors.As(err, &stockErr) {
			log.Warn().
				Str("order_id", orderID).
				Str("reference", before.Reference).
				Uint("product_id", stockErr.ProductID).
				Int("requested", stockErr.Requested).
				Msg("stock insufficient on confirm, force cancelling order")

			reason := fmt.Sprintf("stock insufficient: %s", stockErr.Error())
			if _, cancelErr := o.orderRepo.UpdateOrderStatus(ctx, orderID, model.OrderStatusCancelled); cancelErr != nil {
				log.Error().Err(cancelErr).Str("order_id", orderID).Msg("force cancel failed")
				return nil, cancelErr
			}
			o.appendStatusEvent(ctx, orderID, before.Reference, from, model.OrderStatusCancelled, model.StockActionNone, reason)
			o.notifyStatusChange(ctx, before, model.OrderStatusCancelled, reason)
			return nil, stockErr
		}
		return nil, err
	}

	if from != order.Status {
		o.appendStatusEvent(ctx, orderID, order.Reference, from, order.Status, model.PlanStockAction(from, order.Status), message)
		o.notifyStatusChange(ctx, order, order.Status, message)
	}
	return order, nil
}

func (o *OrderService) CancelOrder(ctx context.Context, orderID string, reason string) (*model.Order, error) {
	return o.ChangeStatus(ctx, orderID, model.OrderStatusCancelled, reason)
}

// BatchChangeStatus 後台批次操作
// 每張訂單獨立交易，單筆失敗不影響其他筆，結果按輸入順序回傳
func (o *OrderService) BatchChangeStatus(ctx context.Context, orderIDs []string, next model.OrderStatus) []BatchStatusResult {
	if len(orderIDs) > batchStatusLimit {
		orderIDs = orderIDs[:batchStatusLimit]
	}

	results := make([]BatchStatusResult, len(orderIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, orderID := range orderIDs {
		g.Go(func() error {
			order, err := o.ChangeStatus(gctx, orderID, next, "")
			results[i] = BatchStatusResult{OrderID: orderID, Order: order, Err: err}
			return nil
		})
	}
	// 每筆錯誤都收在 results 裡，這裡不會有 error
	_ = g.Wait()
	return results
}

// UpdateContact 只改聯絡/收件欄位，狀態與參考號動不到
func (o *OrderService) UpdateContact(ctx context.Context, order *model.Order) (*model.Order, error) {
	if err := o.orderRepo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return o.GetOrder(ctx, order.OrderID)
}

func (o *OrderService) appendStatusEvent(ctx context.Context, orderID, reference string, from, to model.OrderStatus, action model.StockAction, message string) {
	if util.IsNil(o.eventDao) {
		return
	}
	evt := evt_model.NewOrderStatusChangedEvent(orderID, reference, from, to, action, message)
	streamID := eventdb.GenerateOrderStreamID(orderID)
	if err := o.eventDao.AppendEvent(ctx, streamID, string(evt.Type()), evt); err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("append order status event failed")
	}
}

func (o *OrderService) notifyStatusChange(ctx context.Context, order *model.Order, to model.OrderStatus, message string) {
	if util.IsNil(o.notifier) || order.CustomerEmail == "" {
		return
	}
	err := o.notifier.Notify(ctx, producer.TemplateOrderStatusChange, order.CustomerEmail, map[string]interface{}{
		"reference": order.Reference,
		"status":    to.String(),
		"message":   message,
	})
	if err != nil {
		log.Error().Err(err).Str("reference", order.Reference).Msg("notify status change failed")
	}
}

var _ IOrderService = (*OrderService)(nil)
