package model

import (
	"github.com/shopspring/decimal"
)

// Agency 實體門市，可取貨點
type Agency struct {
	AgencyID  uint   `gorm:"primaryKey" json:"agency_id"`
	Name      string `gorm:"not null;type:varchar(200)" json:"name"`
	Address   string `gorm:"type:text" json:"address"`
	Phone     string `gorm:"type:varchar(50)" json:"phone"`
	Email     string `gorm:"type:varchar(255)" json:"email"`
	IsDefault bool   `gorm:"not null;default:false" json:"is_default"` // 全站同時只有一個預設門市，由 SetDefaultAgency 單點維護
	BaseModel
}

// Zone 覆蓋區域
type Zone struct {
	ZoneID      uint      `gorm:"primaryKey" json:"zone_id"`
	Region      string    `gorm:"not null;type:varchar(100)" json:"region"`
	Description string    `gorm:"type:text" json:"description"`
	Communes    []Commune `gorm:"foreignKey:ZoneID;constraint:OnDelete:CASCADE" json:"communes"`
	BaseModel
}

type Commune struct {
	CommuneID   uint   `gorm:"primaryKey" json:"commune_id"`
	Name        string `gorm:"not null;type:varchar(100)" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ZoneID      uint   `gorm:"not null" json:"zone_id"`
	BaseModel
}

// Plan 上網方案 (光纖/微波)
type Plan struct {
	PlanID      uint            `gorm:"primaryKey" json:"plan_id"`
	Name        string          `gorm:"not null;type:varchar(255)" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"price"`
	PlanType    string          `gorm:"not null;type:varchar(10);default:'FO'" json:"plan_type"` // FO: 光纖, FH: 微波
	IsDeal      bool            `gorm:"not null;default:false" json:"is_deal"`
	BaseModel
}

// SubscriptionRequest 方案申裝需求單，驗證通過即落庫，後續由業務跟進
type SubscriptionRequest struct {
	RequestID uint   `gorm:"primaryKey" json:"request_id"`
	Name      string `gorm:"not null;type:varchar(255)" json:"name"`
	Phone     string `gorm:"not null;type:varchar(20)" json:"phone"`
	Email     string `gorm:"type:varchar(255)" json:"email"`
	PlanID    uint   `gorm:"not null" json:"plan_id"`
	ZoneID    uint   `gorm:"not null" json:"zone_id"`
	CommuneID uint   `gorm:"not null" json:"commune_id"`
	BaseModel
}
