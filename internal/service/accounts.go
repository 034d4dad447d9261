package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookkeeping/internal/auth"
	"bookkeeping/internal/cache"
	"bookkeeping/internal/domain"
)

// AccountInput is the full set of mutable account fields.
type AccountInput struct {
	Name     string  `json:"name" validate:"min=4"`
	Currency string  `json:"currency" validate:"max=8"`
	Money    float64 `json:"money"`
}

func (in AccountInput) currency() string {
	if in.Currency == "" {
		return domain.DefaultCurrency
	}
	return in.Currency
}

// AccountService is the account ledger.
type AccountService struct {
	Deps
	sf singleflight.Group
}

func NewAccountService(deps Deps) *AccountService {
	return &AccountService{Deps: deps.withDefaults()}
}

// Create opens an account owned by the caller.
func (s *AccountService) Create(ctx context.Context, p auth.Principal, in AccountInput) (*domain.Account, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	acc := domain.Account{
		ID:       uuid.NewString(),
		OwnerID:  p.ID,
		Name:     in.Name,
		Currency: in.currency(),
		Money:    in.Money,
	}
	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(&acc).Error; err != nil {
		return nil, storeErr(err, "create account")
	}
	acc.Orders = []domain.Order{}
	return &acc, nil
}

// Get returns one account with its orders.
func (s *AccountService) Get(ctx context.Context, p auth.Principal, id string) (*domain.Account, error) {
	acc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(p, acc.OwnerID, "account"); err != nil {
		return nil, err
	}
	return acc, nil
}

// load reads through the cache. Concurrent misses for one id share a query,
// which runs detached from the first caller's cancellation.
func (s *AccountService) load(ctx context.Context, id string) (*domain.Account, error) {
	key := cache.AccountKey(id)
	v, err, _ := s.sf.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		var acc domain.Account
		found, err := s.Cache.Get(ctx, key, &acc)
		if err != nil {
			s.Log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("cache read failed")
		}
		if found {
			return acc, nil
		}
		version, cacheable := s.cacheVersion(ctx, key)
		if err := withOrders(s.DB.WithContext(ctx)).First(&acc, "id = ?", id).Error; err != nil {
			return nil, storeErr(err, "load account")
		}
		if cacheable {
			s.store(ctx, key, acc, version)
		}
		return acc, nil
	})
	if err != nil {
		return nil, err
	}
	acc := v.(domain.Account)
	return &acc, nil
}

// ListMine returns the caller's accounts.
func (s *AccountService) ListMine(ctx context.Context, p auth.Principal) ([]domain.Account, error) {
	return s.listByOwner(ctx, p.ID)
}

// ListByOwner returns the accounts of ownerID. Only that user or the
// superuser may ask.
func (s *AccountService) ListByOwner(ctx context.Context, p auth.Principal, ownerID string) ([]domain.Account, error) {
	if err := auth.Authorize(p, ownerID, "accounts"); err != nil {
		return nil, err
	}
	return s.listByOwner(ctx, ownerID)
}

// ListAll returns every account. Superuser only.
func (s *AccountService) ListAll(ctx context.Context, p auth.Principal) ([]domain.Account, error) {
	if err := auth.RequireSuperuser(p); err != nil {
		return nil, err
	}
	accounts := []domain.Account{}
	if err := withOrders(s.DB.WithContext(ctx)).Order("name").Find(&accounts).Error; err != nil {
		return nil, storeErr(err, "list accounts")
	}
	return accounts, nil
}

func (s *AccountService) listByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	accounts := []domain.Account{}
	err := withOrders(s.DB.WithContext(ctx)).
		Where("owner_id = ?", ownerID).
		Order("name").
		Find(&accounts).Error
	if err != nil {
		return nil, storeErr(err, "list accounts by owner")
	}
	return accounts, nil
}

// Update replaces name, currency and money. The balance is taken as given.
func (s *AccountService) Update(ctx context.Context, p auth.Principal, id string, in AccountInput) (*domain.Account, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var acc domain.Account
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockedAccount(tx, p, id, &acc); err != nil {
			return err
		}
		acc.Name, acc.Currency, acc.Money = in.Name, in.currency(), in.Money
		return tx.Model(&acc).Updates(map[string]any{
			"name":     acc.Name,
			"currency": acc.Currency,
			"money":    acc.Money,
		}).Error
	})
	if err != nil {
		return nil, storeErr(err, "update account")
	}
	s.invalidate(ctx, cache.AccountKey(id))
	return &acc, nil
}

// Reset deletes every order of the account and zeroes its balance in one
// transaction.
func (s *AccountService) Reset(ctx context.Context, p auth.Principal, id string) (*domain.Account, error) {
	var acc domain.Account
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockedAccount(tx, p, id, &acc); err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&domain.Order{}).Error; err != nil {
			return err
		}
		acc.Money = 0
		return tx.Model(&acc).Update("money", 0).Error
	})
	if err != nil {
		return nil, storeErr(err, "reset account")
	}
	acc.Orders = []domain.Order{}
	s.invalidate(ctx, cache.AccountKey(id))
	return &acc, nil
}

// Delete removes the account's orders, then the account, in one transaction.
func (s *AccountService) Delete(ctx context.Context, p auth.Principal, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acc domain.Account
		if err := lockedAccount(tx, p, id, &acc); err != nil {
			return err
		}
		return deleteAccounts(tx, []string{id})
	})
	if err != nil {
		return storeErr(err, "delete account")
	}
	s.invalidate(ctx, cache.AccountKey(id))
	return nil
}

// lockedAccount loads id into acc inside tx and checks the caller owns it.
func lockedAccount(tx *gorm.DB, p auth.Principal, id string, acc *domain.Account) error {
	if err := forUpdate(tx).First(acc, "id = ?", id).Error; err != nil {
		return err
	}
	return auth.Authorize(p, acc.OwnerID, "account")
}

// deleteAccounts is the explicit cascade: children first, then the parents.
func deleteAccounts(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("account_id IN ?", ids).Delete(&domain.Order{}).Error; err != nil {
		return errors.Wrap(err, "delete orders")
	}
	if err := tx.Where("id IN ?", ids).Delete(&domain.Account{}).Error; err != nil {
		return errors.Wrap(err, "delete accounts")
	}
	return nil
}

func withOrders(db *gorm.DB) *gorm.DB {
	return db.Preload("Orders", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at")
	})
}

// forUpdate adds SELECT ... FOR UPDATE where the dialect has it.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
