package models

// ReferralPoints is the per-user running count of successful referrals.
// Created lazily on the first award; the only mutation is an atomic +1
// per referred registration.
type ReferralPoints struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"`
	Points int64  `gorm:"not null;default:0" json:"points"`

	Timestamps
}
