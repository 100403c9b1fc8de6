package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Member struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null"`
	Phone       string          `json:"phone" gorm:"type:varchar(30)"`
	Balance     decimal.Decimal `json:"balance" gorm:"type:decimal(10,2);not null"`
	Points      int64           `json:"points" gorm:"not null;default:0"`
	Tier        string          `json:"tier" gorm:"type:varchar(30);not null;default:'Silver'"`
	TotalSpent  decimal.Decimal `json:"total_spent" gorm:"type:decimal(10,2)"`
	JoinDate    time.Time       `json:"join_date" gorm:"not null"`
	LastVisited *time.Time      `json:"last_visited"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null"`
}

type MembershipTier struct {
	ID                  string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name                string          `json:"name" gorm:"type:varchar(30);uniqueIndex;not null"`
	DiscountPct         decimal.Decimal `json:"discount_pct" gorm:"type:decimal(5,2)"`
	PointsRate          decimal.Decimal `json:"points_rate" gorm:"type:decimal(5,2);not null;default:1"`
	ValidityDays        int             `json:"validity_days" gorm:"not null;default:365"`
	BirthdayDiscountPct decimal.Decimal `json:"birthday_discount_pct" gorm:"type:decimal(5,2)"`
	CreatedAt           time.Time       `json:"created_at" gorm:"not null"`
}
