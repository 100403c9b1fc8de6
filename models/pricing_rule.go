package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Pricing modes supported by the rate model.
const (
	PricingModeFlat     = "flat"
	PricingModeHourly   = "hourly"
	PricingModeTimeSlot = "time_slot"
)

type PricingRule struct {
	ID                    string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name                  string          `json:"name" gorm:"type:varchar(100);not null"`
	Mode                  string          `json:"mode" gorm:"type:varchar(20);not null;default:'hourly'"`
	BaseRate              decimal.Decimal `json:"base_rate" gorm:"type:decimal(10,2);not null"`
	MinChargeMinutes      int             `json:"min_charge_minutes" gorm:"not null;default:30"`
	GracePeriodMinutes    int             `json:"grace_period_minutes" gorm:"not null;default:5"`
	OvertimeRatePerMinute decimal.Decimal `json:"overtime_rate_per_minute" gorm:"type:decimal(10,2)"`
	Config                RuleConfig      `json:"config" gorm:"type:text"`
	CreatedAt             time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt             time.Time       `json:"updated_at" gorm:"not null"`
}

// TimeSlot is a tariff window in minute-of-day terms, half-open [Start, End).
// Start and End are "HH:MM" strings as entered by staff.
type TimeSlot struct {
	Start      string          `json:"start"`
	End        string          `json:"end"`
	RatePerMin decimal.Decimal `json:"rate_per_min"`
}

type RuleConfig struct {
	TimeSlots []TimeSlot `json:"timeSlots,omitempty"`
}

func (c RuleConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *RuleConfig) Scan(value interface{}) error {
	if value == nil {
		*c = RuleConfig{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for RuleConfig")
	}
	if len(raw) == 0 {
		*c = RuleConfig{}
		return nil
	}
	return json.Unmarshal(raw, c)
}
