package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 購物車只存在 Redis，一人一車，成功轉單後整車清空
type Cart struct {
	CartID    uuid.UUID       `json:"cart_id"`
	UserID    int             `json:"user_id"`
	CartItems []CartItem      `json:"cart_items"`
	Amount    decimal.Decimal `json:"amount"` // 含稅，讀取時由商品現價計算
}

type CartItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CartItemDetail 購物車明細 + 商品資訊，給結帳頁用
type CartItemDetail struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"` // 含稅
	LineTotal   decimal.Decimal `json:"line_total"`
	Stock       uint            `json:"stock"`
}
