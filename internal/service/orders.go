package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookkeeping/internal/auth"
	"bookkeeping/internal/cache"
	"bookkeeping/internal/domain"
)

// OrderInput is the body of order create and update.
type OrderInput struct {
	AccountID   string  `json:"account_id" validate:"required"`
	Description string  `json:"description" validate:"max=100"`
	OrderType   string  `json:"order_type"`
	Amount      float64 `json:"amount"`
}

// OrderService is the order journal. Creating an order is the only operation
// that moves an account balance on its own.
type OrderService struct {
	Deps
}

func NewOrderService(deps Deps) *OrderService {
	return &OrderService{Deps: deps.withDefaults()}
}

// Create records an order against an account the caller owns and adds its
// amount to the account balance in the same transaction.
func (s *OrderService) Create(ctx context.Context, p auth.Principal, in OrderInput) (*domain.Order, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	order := domain.Order{
		ID:          uuid.NewString(),
		CreatedBy:   p.ID,
		AccountID:   in.AccountID,
		CreatedAt:   s.Now().UTC(),
		Description: in.Description,
		OrderType:   in.OrderType,
		Amount:      in.Amount,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acc domain.Account
		if err := lockedAccount(tx, p, in.AccountID, &acc); err != nil {
			return err
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Account{}).
			Where("id = ?", acc.ID).
			Update("money", gorm.Expr("money + ?", in.Amount)).Error
	})
	if err != nil {
		return nil, storeErr(err, "create order")
	}
	s.invalidate(ctx, cache.AccountKey(in.AccountID))
	return &order, nil
}

// Get returns an order to its creator or the superuser.
func (s *OrderService) Get(ctx context.Context, p auth.Principal, id string) (*domain.Order, error) {
	var order domain.Order
	if err := s.DB.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, storeErr(err, "load order")
	}
	if err := auth.Authorize(p, order.CreatedBy, "order"); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListMine returns the orders the caller created.
func (s *OrderService) ListMine(ctx context.Context, p auth.Principal) ([]domain.Order, error) {
	orders := []domain.Order{}
	err := s.DB.WithContext(ctx).
		Where("created_by = ?", p.ID).
		Order("created_at").
		Find(&orders).Error
	if err != nil {
		return nil, storeErr(err, "list orders")
	}
	return orders, nil
}

// ListByAccount returns the orders of an account. Access follows the account
// owner, not the order creators.
func (s *OrderService) ListByAccount(ctx context.Context, p auth.Principal, accountID string) ([]domain.Order, error) {
	db := s.DB.WithContext(ctx)
	var acc domain.Account
	if err := db.First(&acc, "id = ?", accountID).Error; err != nil {
		return nil, storeErr(err, "load account")
	}
	if err := auth.Authorize(p, acc.OwnerID, "account"); err != nil {
		return nil, err
	}
	orders := []domain.Order{}
	if err := db.Where("account_id = ?", accountID).Order("created_at").Find(&orders).Error; err != nil {
		return nil, storeErr(err, "list orders by account")
	}
	return orders, nil
}

// ListAll returns every order. Superuser only.
func (s *OrderService) ListAll(ctx context.Context, p auth.Principal) ([]domain.Order, error) {
	if err := auth.RequireSuperuser(p); err != nil {
		return nil, err
	}
	orders := []domain.Order{}
	if err := s.DB.WithContext(ctx).Order("created_at").Find(&orders).Error; err != nil {
		return nil, storeErr(err, "list all orders")
	}
	return orders, nil
}

// Update replaces the order fields and stamps updated_at. Balances are not
// recomputed, even when amount or account_id change.
func (s *OrderService) Update(ctx context.Context, p auth.Principal, id string, in OrderInput) (*domain.Order, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var order domain.Order
	var previousAccount string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&order, "id = ?", id).Error; err != nil {
			return err
		}
		if err := auth.Authorize(p, order.CreatedBy, "order"); err != nil {
			return err
		}
		previousAccount = order.AccountID
		if in.AccountID != order.AccountID {
			var target domain.Account
			if err := lockedAccount(tx, p, in.AccountID, &target); err != nil {
				return err
			}
		}
		order.AccountID = in.AccountID
		order.Description = in.Description
		order.OrderType = in.OrderType
		order.Amount = in.Amount
		order.UpdatedAt = s.Now().UTC().Format(time.RFC3339)
		return tx.Model(&order).Updates(map[string]any{
			"account_id":  order.AccountID,
			"description": order.Description,
			"order_type":  order.OrderType,
			"amount":      order.Amount,
			"updated_at":  order.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, storeErr(err, "update order")
	}
	s.invalidate(ctx, cache.AccountKey(previousAccount), cache.AccountKey(order.AccountID))
	return &order, nil
}

// Delete removes an order. The account balance keeps the amount.
func (s *OrderService) Delete(ctx context.Context, p auth.Principal, id string) error {
	var order domain.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&order, "id = ?", id).Error; err != nil {
			return err
		}
		if err := auth.Authorize(p, order.CreatedBy, "order"); err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		return storeErr(err, "delete order")
	}
	s.invalidate(ctx, cache.AccountKey(order.AccountID))
	return nil
}
