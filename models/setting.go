package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Setting struct {
	SettingKey   string    `json:"key" gorm:"primaryKey;type:varchar(100)"`
	SettingValue string    `json:"value" gorm:"type:text"`
	Category     string    `json:"category" gorm:"type:varchar(50);not null;default:'general'"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"not null"`
}

// BusinessSetting is a singleton row holding hall-wide billing settings.
type BusinessSetting struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Name          string          `json:"name" gorm:"type:varchar(100)"`
	OpeningHours  string          `json:"opening_hours" gorm:"type:varchar(50)"`
	Timezone      string          `json:"timezone" gorm:"type:varchar(50)"`
	Currency      string          `json:"currency" gorm:"type:varchar(10);not null;default:'RM'"`
	ServiceFeePct decimal.Decimal `json:"service_fee_pct" gorm:"type:decimal(5,2)"`
	TaxRatePct    decimal.Decimal `json:"tax_rate_pct" gorm:"type:decimal(5,2)"`
	ReceiptHeader string          `json:"receipt_header" gorm:"type:varchar(255)"`
	ReceiptFooter string          `json:"receipt_footer" gorm:"type:varchar(255)"`
	Address       string          `json:"address" gorm:"type:varchar(255)"`
	Phone         string          `json:"phone" gorm:"type:varchar(30)"`
	Email         string          `json:"email" gorm:"type:varchar(100)"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null"`
}
