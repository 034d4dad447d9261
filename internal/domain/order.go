package domain

import "time" // Creation timestamp

// Order types the clients send. The store does not enforce them.
const (
	OrderTypeExpense = "Expense"
	OrderTypeAdd     = "Add"
)

// Order Model
type Order struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`                  // UUID primary key
	CreatedBy   string    `gorm:"type:varchar(36);index;not null" json:"created_by"`      // Creator id, no cascade from users
	AccountID   string    `gorm:"type:varchar(36);index;not null" json:"account_id"`      // Foreign key to Account
	CreatedAt   time.Time `json:"created_at"`                                             // Set on insert
	UpdatedAt   string    `gorm:"type:varchar(40);not null;default:''" json:"updated_at"` // Empty until the first update, RFC 3339 afterwards
	Description string    `gorm:"type:varchar(100)" json:"description"`                   // Free text
	OrderType   string    `gorm:"not null" json:"order_type"`                             // Usually Expense or Add
	Amount      float64   `gorm:"not null" json:"amount"`                                 // Signed amount applied to the account at creation
}
