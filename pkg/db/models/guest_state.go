package models

import "time"

// GuestState is one namespaced key of visitor state (guest cart, wishlist, token, ...).
type GuestState struct {
	Key       string     `gorm:"column:state_key;primaryKey;size:255"`
	Value     []byte     `gorm:"column:value;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (GuestState) TableName() string {
	return "guest_state"
}
