package db

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound 訂單不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNotTerminal 非終態訂單不可歸檔
	ErrOrderNotTerminal   = errors.New("order is not in a terminal status")
	ErrAgencyNotFound     = errors.New("agency not found")
	ErrZoneNotFound       = errors.New("zone not found")
	ErrCommuneNotFound    = errors.New("commune not found")
	ErrPlanNotFound       = errors.New("plan not found")
	ErrTicketTypeNotFound = errors.New("wifi ticket type not found")
	ErrTicketNotFound     = errors.New("wifi ticket not found")
	ErrTicketAlreadyUsed  = errors.New("wifi ticket already used")
	ErrTicketExpired      = errors.New("wifi ticket expired")
)

// StockInsufficientError 條件扣庫存失敗
// 帶出商品資訊，讓呼叫端通知客戶時講得出是哪個商品
type StockInsufficientError struct {
	ProductID   uint
	ProductName string
	Requested   int
}

func (e *StockInsufficientError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf("insufficient stock for product %q (id=%d): requested %d", e.ProductName, e.ProductID, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for product id=%d: requested %d", e.ProductID, e.Requested)
}

// InvalidTransitionError 終態不可再轉移
type InvalidTransitionError struct {
	OrderID string
	From    uint
	To      uint
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s: invalid status transition %d -> %d", e.OrderID, e.From, e.To)
}

// ReferenceCollisionError 參考號重數重試耗盡才會浮出
type ReferenceCollisionError struct {
	Reference string
	Attempts  int
}

func (e *ReferenceCollisionError) Error() string {
	return fmt.Sprintf("order reference collision on %q after %d attempts", e.Reference, e.Attempts)
}
