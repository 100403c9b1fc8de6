package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Promotion struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string          `json:"name" gorm:"type:varchar(100);not null"`
	Type      string          `json:"type" gorm:"type:varchar(30);not null;default:'discount'"`
	Config    PromotionConfig `json:"config" gorm:"type:text"`
	StartAt   *time.Time      `json:"start_at"`
	EndAt     *time.Time      `json:"end_at"`
	Active    bool            `json:"active" gorm:"not null;default:false"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null"`
}

type PromotionConfig struct {
	DiscountPct decimal.Decimal `json:"discountPct"`
}

func (c PromotionConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *PromotionConfig) Scan(value interface{}) error {
	if value == nil {
		*c = PromotionConfig{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for PromotionConfig")
	}
	if len(raw) == 0 {
		*c = PromotionConfig{}
		return nil
	}
	return json.Unmarshal(raw, c)
}

// IsActiveAt reports whether the promotion applies at the given instant.
// A nil StartAt/EndAt leaves that bound open.
func (p Promotion) IsActiveAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartAt != nil && now.Before(*p.StartAt) {
		return false
	}
	if p.EndAt != nil && !now.Before(*p.EndAt) {
		return false
	}
	return true
}
