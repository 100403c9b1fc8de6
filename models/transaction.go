package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TableID       *uint           `json:"table_id"`
	SessionID     *string         `json:"session_id" gorm:"type:varchar(36)"`
	Items         ItemList        `json:"items" gorm:"type:text"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	Discount      decimal.Decimal `json:"discount" gorm:"type:decimal(10,2)"`
	ServiceFee    decimal.Decimal `json:"service_fee" gorm:"type:decimal(10,2)"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	PaymentMethod string          `json:"payment_method" gorm:"type:varchar(20);not null;default:'cash'"`
	PaymentStatus string          `json:"payment_status" gorm:"type:varchar(20);not null;default:'paid'"`
	Notes         string          `json:"notes" gorm:"type:varchar(255)"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null"`
}

type TransactionItem struct {
	Name  string          `json:"name"`
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

type ItemList []TransactionItem

func (l ItemList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ItemList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for ItemList")
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, l)
}
