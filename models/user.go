package models

import "time"

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Role      string    `json:"role" gorm:"type:varchar(50);not null;default:'staff'"`
	Phone     string    `json:"phone" gorm:"type:varchar(30)"`
	Status    string    `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	HireDate  *time.Time `json:"hire_date"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}
