package models

import "time"

// User stores per-user preferences keyed by the Telegram user ID.
type User struct {
	TelegramUserID int64     `gorm:"primaryKey;autoIncrement:false"`
	Language       string    `gorm:"not null;default:en"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// Wallet is one monitored address belonging to a user. The composite
// primary key guarantees a (user, address) pair exists at most once.
type Wallet struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false"`
	Address   string    `gorm:"primaryKey"`
	AutoCheck bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
