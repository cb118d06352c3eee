package models

import (
	"time"

	"gorm.io/gorm"
)

// ReferralCodeLength is the fixed length of generated referral codes.
const ReferralCodeLength = 6

// Profile holds the referral identity of a user. Exactly one per user,
// created in the same transaction as the user row.
type Profile struct {
	ID               string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID           string    `gorm:"uniqueIndex;not null" json:"user_id"`
	ReferralCode     string    `gorm:"uniqueIndex;size:6;not null" json:"referral_code"`
	RegistrationDate time.Time `gorm:"autoCreateTime" json:"registration_date"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
