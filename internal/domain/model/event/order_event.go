package model

import (
	"time"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"github.com/shopspring/decimal"
)

// 訂單稽核事件
// 訂單成立後明細不再變動，之後只有狀態會變
type OrderCreatedEvent struct {
	BaseEvent
	Reference string            `json:"reference"`
	UserID    *int              `json:"user_id"`
	OrderDate time.Time         `json:"order_date"`
	Items     []model.OrderItem `json:"items"`
	Amount    decimal.Decimal   `json:"amount"`
	ToStatus  model.OrderStatus `json:"to_status"`
}

func NewOrderCreatedEvent(order *model.Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseEvent: newBaseEvent(order.OrderID, OrderCreatedEventName),
		Reference: order.Reference,
		UserID:    order.UserID,
		OrderDate: order.OrderDate,
		Items:     order.OrderItems,
		Amount:    order.Amount,
		ToStatus:  order.Status,
	}
}

func (e *OrderCreatedEvent) Type() EventType {
	return OrderCreatedEventName
}

type OrderStatusChangedEvent struct {
	BaseEvent
	Reference   string            `json:"reference"`
	FromStatus  model.OrderStatus `json:"from_status"`
	ToStatus    model.OrderStatus `json:"to_status"`
	StockAction model.StockAction `json:"stock_action"`
	Message     string            `json:"message"` // 取消原因等
}

func NewOrderStatusChangedEvent(orderID, reference string, from, to model.OrderStatus, action model.StockAction, message string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent:   newBaseEvent(orderID, OrderStatusChangedEventName),
		Reference:   reference,
		FromStatus:  from,
		ToStatus:    to,
		StockAction: action,
		Message:     message,
	}
}

func (e *OrderStatusChangedEvent) Type() EventType {
	return OrderStatusChangedEventName
}
