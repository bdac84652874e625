package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WifiTicketType WiFi 票種，定義時數與售價
type WifiTicketType struct {
	TypeID        uint            `gorm:"primaryKey" json:"type_id"`
	Name          string          `gorm:"not null;type:varchar(100)" json:"name"`
	DurationHours uint            `gorm:"not null" json:"duration_hours"`
	Price         decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"price"`
	Description   string          `gorm:"type:text" json:"description"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	SortOrder     uint            `gorm:"not null;default:0" json:"sort_order"`
	BaseModel
}

// WifiTicket 單張 WiFi 票券，帳密一次性使用
type WifiTicket struct {
	TicketID   uint       `gorm:"primaryKey" json:"ticket_id"`
	TypeID     uint       `gorm:"not null" json:"type_id"`
	Identifier string     `gorm:"not null;uniqueIndex;type:varchar(20)" json:"identifier"` // 登入帳號，全域唯一
	Password   string     `gorm:"not null;type:varchar(20)" json:"password"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	IsUsed     bool       `gorm:"not null;default:false" json:"is_used"` // 只能 false->true 一次，條件更新把關
	UsedAt     *time.Time `json:"used_at"`
	Hotspot    string     `gorm:"type:varchar(100)" json:"hotspot"`
	BaseModel
}

func (t *WifiTicket) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
