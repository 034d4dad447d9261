package domain

// DefaultCurrency is used when an account is created without a currency code
const DefaultCurrency = "USD"

// Account Model
type Account struct {
	ID       string  `gorm:"type:varchar(36);primaryKey" json:"id"`           // UUID primary key
	OwnerID  string  `gorm:"type:varchar(36);index;not null" json:"owner_id"` // Owning user, or the superuser id
	Name     string  `gorm:"not null" json:"name"`                            // Display name, at least 4 characters
	Currency string  `gorm:"type:varchar(8);not null" json:"currency"`        // Currency code
	Money    float64 `gorm:"not null;default:0" json:"money"`                 // Current balance
	Orders   []Order `gorm:"foreignKey:AccountID" json:"orders"`              // Child orders, deleted explicitly before the account
}
