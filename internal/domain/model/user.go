package model

type User struct {
	BaseModel
	UserID    int     `gorm:"primaryKey" json:"user_id"`
	UserName  string  `gorm:"not null;type:varchar(50)" json:"user_name"`
	UserEmail string  `gorm:"unique;not null;type:varchar(255)" json:"user_email"`
	UserPhone string  `gorm:"type:varchar(50)" json:"user_phone"`
	Orders    []Order `gorm:"foreignKey:UserID" json:"orders"`
}
