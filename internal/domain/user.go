package domain

// User Model
type User struct {
	ID             string `gorm:"type:varchar(36);primaryKey" json:"id"`                 // UUID primary key
	Username       string `gorm:"type:varchar(20);uniqueIndex;not null" json:"username"` // Unique username
	HashedPassword string `gorm:"not null" json:"-"`                                     // bcrypt hash, never serialized
}
