package models

import "time"

// Queue entry statuses.
const (
	QueueStatusWaiting   = "waiting"
	QueueStatusNotified  = "notified"
	QueueStatusCompleted = "completed"
	QueueStatusCancelled = "cancelled"
)

type QueueEntry struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string     `json:"name" gorm:"type:varchar(100);not null"`
	Phone      string     `json:"phone" gorm:"type:varchar(30)"`
	Pax        int        `json:"pax"`
	Position   int        `json:"position" gorm:"not null"`
	Status     string     `json:"status" gorm:"type:varchar(20);not null;default:'waiting'"`
	AddedAt    time.Time  `json:"added_at" gorm:"not null"`
	NotifiedAt *time.Time `json:"notified_at"`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null"`
}
