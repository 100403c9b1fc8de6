package models

import "time"

type InventoryItem struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string     `json:"name" gorm:"type:varchar(100);not null"`
	Unit          string     `json:"unit" gorm:"type:varchar(20)"`
	Qty           int64      `json:"qty" gorm:"not null;default:0"`
	MinQty        int64      `json:"min_qty" gorm:"not null;default:0"`
	Category      string     `json:"category" gorm:"type:varchar(50)"`
	LastRestocked *time.Time `json:"last_restocked"`
	CreatedAt     time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"not null"`
}
