package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Reservation struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string          `json:"name" gorm:"type:varchar(100);not null"`
	Phone     string          `json:"phone" gorm:"type:varchar(30)"`
	Date      string          `json:"date" gorm:"type:varchar(10);not null"` // YYYY-MM-DD
	Time      string          `json:"time" gorm:"type:varchar(5);not null"`  // HH:MM
	TableType string          `json:"table_type" gorm:"type:varchar(30)"`
	Pax       int             `json:"pax"`
	Deposit   decimal.Decimal `json:"deposit" gorm:"type:decimal(10,2)"`
	Status    string          `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"not null"`
}
