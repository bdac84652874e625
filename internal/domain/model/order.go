package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus uint

const (
	OrderStatusPending   OrderStatus = 0 // 待處理
	OrderStatusConfirmed OrderStatus = 1 // 已確認
	OrderStatusPreparing OrderStatus = 2 // 備貨中
	OrderStatusReady     OrderStatus = 3 // 可取貨
	OrderStatusDelivered OrderStatus = 4 // 已交付
	OrderStatusCancelled OrderStatus = 5 // 已取消
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusConfirmed:
		return "confirmed"
	case OrderStatusPreparing:
		return "preparing"
	case OrderStatusReady:
		return "ready"
	case OrderStatusDelivered:
		return "delivered"
	case OrderStatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// InConfirmedBand 確認帶: 處於這些狀態的訂單已佔用庫存
func (s OrderStatus) InConfirmedBand() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady, OrderStatusDelivered:
		return true
	}
	return false
}

// IsTerminal 終態沒有對外轉移
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// 取貨方式
const (
	ReceiptModeDelivery = "delivery" // 宅配
	ReceiptModeAgency   = "agency"   // 門市自取
)

type Order struct {
	OrderID         string          `gorm:"primaryKey;type:varchar(255)" json:"order_id"`
	Reference       string          `gorm:"not null;uniqueIndex;type:varchar(50)" json:"reference"` // 人類可讀編號 CMD-YYYYMMDD-NNNN，唯一約束是併發下的最後防線
	UserID          *int            `json:"user_id"`                                                // 訪客下單時為空，靠 email 追蹤
	CustomerName    string          `gorm:"type:varchar(150)" json:"customer_name"`
	CustomerEmail   string          `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerPhone   string          `gorm:"type:varchar(50)" json:"customer_phone"`
	ReceiptMode     string          `gorm:"not null;type:varchar(20)" json:"receipt_mode"`
	AgencyID        *uint           `json:"agency_id"`        // 門市自取時必填
	DeliveryAddress string          `gorm:"type:text" json:"delivery_address"` // 宅配時必填
	CommuneID       *uint           `json:"commune_id"`
	OrderItems      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"` // 一對多，級聯刪除
	Amount          decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"amount"`                         // 含稅總額，永遠由明細重算，不可直接編輯
	OrderDate       time.Time       `gorm:"not null" json:"order_date"`
	Status          OrderStatus     `gorm:"not null;default:0" json:"status"`
	BaseModel
}

// ComputeAmount 總額 = 各明細 LineTotal 加總
func (o *Order) ComputeAmount() decimal.Decimal {
	amount := decimal.NewFromInt(0)
	for _, item := range o.OrderItems {
		amount = amount.Add(item.LineTotal)
	}
	return amount
}

type OrderItem struct {
	ItemID       uint            `gorm:"primaryKey" json:"item_id"` // 也是鎖定順序的依據
	OrderID      string          `gorm:"not null;index;type:varchar(255)" json:"order_id"`
	ProductID    uint            `gorm:"not null" json:"product_id"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"unit_price"` // 下單當下的含稅單價快照
	LineTotal    decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"line_total"`
	StockDebited bool            `gorm:"not null;default:false" json:"stock_debited"` // false->true 僅於進入確認帶時發生一次，反向僅於確認後取消
	BaseModel
}
