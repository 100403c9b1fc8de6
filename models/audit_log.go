package models

import "time"

type AuditLog struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      *uint     `json:"user_id"`
	Username    string    `json:"username" gorm:"type:varchar(100)"`
	Action      string    `json:"action" gorm:"type:varchar(100);not null"`
	Entity      string    `json:"entity" gorm:"type:varchar(50)"`
	EntityID    string    `json:"entity_id" gorm:"type:varchar(50)"`
	BeforeState string    `json:"before_state" gorm:"type:text"`
	AfterState  string    `json:"after_state" gorm:"type:text"`
	IP          string    `json:"ip" gorm:"type:varchar(45)"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
}
