package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin      = "admin"
	RoleProduction = "production"
	RoleViewer     = "viewer"
)

type User struct {
	gorm.Model
	Username string `json:"username" gorm:"unique;not null"`
	Name     string `json:"name"`
	Password string `json:"-" gorm:"not null"`
	Role     string `json:"role" gorm:"default:'viewer'"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

type LoginLog struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id"`
	SessionID string     `json:"session_id" gorm:"index"`
	LoginAt   time.Time  `json:"login_at"`
	LogoutAt  *time.Time `json:"logout_at"`
	IPAddress string     `json:"ip_address"`
	UserAgent string     `json:"user_agent"`
}
