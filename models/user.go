package models

// User is the account record created at registration.
// Authentication and token issuance live in the auth service; this service
// only stores the credentials it was handed at signup.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash []byte `gorm:"not null" json:"-"` // bcrypt, never serialized

	Timestamps
}
