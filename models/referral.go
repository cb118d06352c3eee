package models

import "time"

// Referral is a directed edge from the profile whose code was used to the
// profile of the newly registered user. Written once at registration time,
// never updated.
type Referral struct {
	ID               string    `gorm:"primaryKey;type:uuid" json:"id"`
	ReferrerID       string    `gorm:"index;not null" json:"referrer_id"`
	ReferredUserID   string    `gorm:"uniqueIndex;not null" json:"referred_user_id"` // one referral per new account
	RegistrationDate time.Time `gorm:"autoCreateTime" json:"registration_date"`

	Referrer     Profile `gorm:"foreignKey:ReferrerID;constraint:OnDelete:CASCADE" json:"-"`
	ReferredUser Profile `gorm:"foreignKey:ReferredUserID;constraint:OnDelete:CASCADE" json:"referred_user"`
}
