package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email        string  `gorm:"uniqueIndex;not null"`
	Password     string  `gorm:"not null" json:"-"`
	Name         string  `gorm:"not null"`
	Phone        string  `gorm:"uniqueIndex;not null"` // Transfer lookup key
	Role         string  `gorm:"default:'user'"`
	Status       string  `gorm:"default:'active'"`
	Wallet       *Wallet `gorm:"foreignKey:UserID"`
	LastLoginAt  time.Time
	TokenVersion int `gorm:"default:1"`
}

// CreateUserInput is the payload accepted at registration.
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}
