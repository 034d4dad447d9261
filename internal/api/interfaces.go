package api

import (
	"context"

	"bookkeeping/internal/auth"
	"bookkeeping/internal/domain"
	"bookkeeping/internal/service"
)

// UserDirectory is implemented by service.UserService.
type UserDirectory interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, auth.Principal, error)
	List(ctx context.Context, p auth.Principal) ([]domain.User, error)
	Delete(ctx context.Context, p auth.Principal, id string) (*domain.User, error)
	Stats(ctx context.Context, p auth.Principal) (service.Stats, error)
}

// AccountLedger is implemented by service.AccountService.
type AccountLedger interface {
	Create(ctx context.Context, p auth.Principal, in service.AccountInput) (*domain.Account, error)
	Get(ctx context.Context, p auth.Principal, id string) (*domain.Account, error)
	ListMine(ctx context.Context, p auth.Principal) ([]domain.Account, error)
	ListByOwner(ctx context.Context, p auth.Principal, ownerID string) ([]domain.Account, error)
	ListAll(ctx context.Context, p auth.Principal) ([]domain.Account, error)
	Update(ctx context.Context, p auth.Principal, id string, in service.AccountInput) (*domain.Account, error)
	Reset(ctx context.Context, p auth.Principal, id string) (*domain.Account, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}

// OrderJournal is implemented by service.OrderService.
type OrderJournal interface {
	Create(ctx context.Context, p auth.Principal, in service.OrderInput) (*domain.Order, error)
	Get(ctx context.Context, p auth.Principal, id string) (*domain.Order, error)
	ListMine(ctx context.Context, p auth.Principal) ([]domain.Order, error)
	ListByAccount(ctx context.Context, p auth.Principal, accountID string) ([]domain.Order, error)
	ListAll(ctx context.Context, p auth.Principal) ([]domain.Order, error)
	Update(ctx context.Context, p auth.Principal, id string, in service.OrderInput) (*domain.Order, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
}
