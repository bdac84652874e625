package model

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	ProductID   uint            `gorm:"primaryKey" json:"product_id"`
	Code        string          `gorm:"not null;type:varchar(100);unique" json:"code"`
	Name        string          `gorm:"not null;type:varchar(255)" json:"name"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"price"`                    // 未稅單價
	TaxRate     decimal.Decimal `gorm:"not null;type:decimal(5,2);default:18.00" json:"tax_rate"`    // 稅率(%)
	Stock       uint            `gorm:"not null;type:int" json:"stock"`                              // 庫存量 永遠 >= 0，只能透過條件更新異動
	Category    string          `gorm:"not null;type:varchar(50)" json:"category"`
	Description string          `gorm:"not null;type:text" json:"description"`
	IsDeal      bool            `gorm:"not null;default:false" json:"is_deal"`
	OrderItems  []OrderItem     `gorm:"foreignKey:ProductID" json:"-"`
	BaseModel                   // CreatedAt, UpdatedAt, DeletedAt
}

// PriceTTC 含稅單價 = 未稅單價 * (1 + 稅率/100)
func (p *Product) PriceTTC() decimal.Decimal {
	rate := p.TaxRate.Div(decimal.NewFromInt(100))
	return p.Price.Mul(decimal.NewFromInt(1).Add(rate)).Round(2)
}

// TaxAmount 單件稅額
func (p *Product) TaxAmount() decimal.Decimal {
	return p.Price.Mul(p.TaxRate.Div(decimal.NewFromInt(100))).Round(2)
}
