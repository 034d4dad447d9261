package service

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"bookkeeping/internal/cache"
	"bookkeeping/internal/domain"
)

func (s *ServiceTestSuite) TestAccountCreateAndGet() {
	owner := s.newUser()

	created, err := s.accounts.Create(s.ctx, owner, AccountInput{Name: "Savings"})
	s.Require().NoError(err)
	s.Equal("USD", created.Currency)
	s.Equal(owner.ID, created.OwnerID)
	s.Zero(created.Money)
	s.Empty(created.Orders)

	got, err := s.accounts.Get(s.ctx, owner, created.ID)
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)
	s.Equal("Savings", got.Name)
	s.Equal(owner.ID, got.OwnerID)
	s.Empty(got.Orders)
}

func (s *ServiceTestSuite) TestAccountCreate_Validation() {
	owner := s.newUser()

	_, err := s.accounts.Create(s.ctx, owner, AccountInput{Name: "abc"})
	s.Require().Error(err)
	var verr *domain.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("name", verr.Fields[0].Field)
	s.Equal("min=4", verr.Fields[0].Rule)
	s.Zero(s.count(&domain.Account{}, "owner_id = ?", owner.ID))
}

func (s *ServiceTestSuite) TestAccountGet_Access() {
	owner := s.newUser()
	other := s.newUser()
	acc := s.newAccount(owner)

	_, err := s.accounts.Get(s.ctx, other, acc.ID)
	s.ErrorIs(err, domain.ErrForbidden)

	got, err := s.accounts.Get(s.ctx, s.super, acc.ID)
	s.Require().NoError(err)
	s.Equal(acc.ID, got.ID)

	_, err = s.accounts.Get(s.ctx, owner, "missing")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *ServiceTestSuite) TestAccountLists() {
	alice := s.newUser()
	bob := s.newUser()
	s.newAccount(alice)
	s.newAccount(alice)
	s.newAccount(bob)

	mine, err := s.accounts.ListMine(s.ctx, alice)
	s.Require().NoError(err)
	s.Len(mine, 2)

	_, err = s.accounts.ListByOwner(s.ctx, bob, alice.ID)
	s.ErrorIs(err, domain.ErrForbidden)

	byOwner, err := s.accounts.ListByOwner(s.ctx, s.super, alice.ID)
	s.Require().NoError(err)
	s.Len(byOwner, 2)

	_, err = s.accounts.ListAll(s.ctx, alice)
	s.ErrorIs(err, domain.ErrForbidden)

	all, err := s.accounts.ListAll(s.ctx, s.super)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *ServiceTestSuite) TestAccountUpdate() {
	owner := s.newUser()
	other := s.newUser()
	acc := s.newAccount(owner)

	_, err := s.accounts.Update(s.ctx, other, acc.ID, AccountInput{Name: "Hijacked"})
	s.ErrorIs(err, domain.ErrForbidden)

	updated, err := s.accounts.Update(s.ctx, owner, acc.ID, AccountInput{Name: "Holiday", Currency: "EUR", Money: 12.5})
	s.Require().NoError(err)
	s.Equal("Holiday", updated.Name)
	s.Equal("EUR", updated.Currency)
	s.InDelta(12.5, s.balance(acc.ID), 1e-9)

	_, err = s.accounts.Update(s.ctx, owner, "missing", AccountInput{Name: "Nothing"})
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *ServiceTestSuite) TestAccountReset() {
	owner := s.newUser()
	acc := s.newAccount(owner)
	s.newOrder(owner, acc.ID, 40)
	s.newOrder(owner, acc.ID, -15)
	s.InDelta(25, s.balance(acc.ID), 1e-9)

	reset, err := s.accounts.Reset(s.ctx, owner, acc.ID)
	s.Require().NoError(err)
	s.Zero(reset.Money)
	s.Empty(reset.Orders)
	s.Zero(s.balance(acc.ID))
	s.Zero(s.count(&domain.Order{}, "account_id = ?", acc.ID))
}

func (s *ServiceTestSuite) TestAccountReset_Forbidden() {
	owner := s.newUser()
	other := s.newUser()
	acc := s.newAccount(owner)
	s.newOrder(owner, acc.ID, 10)

	_, err := s.accounts.Reset(s.ctx, other, acc.ID)
	s.ErrorIs(err, domain.ErrForbidden)
	s.InDelta(10, s.balance(acc.ID), 1e-9)
	s.EqualValues(1, s.count(&domain.Order{}, "account_id = ?", acc.ID))
}

func (s *ServiceTestSuite) TestAccountDelete_CascadesOrders() {
	owner := s.newUser()
	acc := s.newAccount(owner)
	keep := s.newAccount(owner)
	s.newOrder(owner, acc.ID, 1)
	s.newOrder(owner, acc.ID, 2)
	s.newOrder(owner, keep.ID, 3)

	s.Require().NoError(s.accounts.Delete(s.ctx, owner, acc.ID))

	_, err := s.accounts.Get(s.ctx, owner, acc.ID)
	s.ErrorIs(err, domain.ErrNotFound)
	s.Zero(s.count(&domain.Order{}, "account_id = ?", acc.ID))
	s.EqualValues(1, s.count(&domain.Order{}, "account_id = ?", keep.ID))
}

func (s *ServiceTestSuite) TestAccountDelete_Access() {
	owner := s.newUser()
	other := s.newUser()
	acc := s.newAccount(owner)

	s.ErrorIs(s.accounts.Delete(s.ctx, other, acc.ID), domain.ErrForbidden)
	s.ErrorIs(s.accounts.Delete(s.ctx, owner, "missing"), domain.ErrNotFound)
	s.NoError(s.accounts.Delete(s.ctx, s.super, acc.ID))
}

func (s *ServiceTestSuite) TestAccountGet_CachedAndInvalidated() {
	mr := miniredis.RunT(s.T())
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.T().Cleanup(func() { _ = rdb.Close() })

	deps := s.accounts.Deps
	deps.Cache = cache.New(rdb, time.Minute)
	accounts := NewAccountService(deps)
	orders := NewOrderService(deps)

	owner := s.newUser()
	acc := s.newAccount(owner)

	_, err := accounts.Get(context.Background(), owner, acc.ID)
	s.Require().NoError(err)
	s.True(mr.Exists(cache.AccountKey(acc.ID)))

	_, err = orders.Create(context.Background(), owner, OrderInput{AccountID: acc.ID, OrderType: domain.OrderTypeAdd, Amount: 7})
	s.Require().NoError(err)
	s.False(mr.Exists(cache.AccountKey(acc.ID)))

	got, err := accounts.Get(context.Background(), owner, acc.ID)
	s.Require().NoError(err)
	s.InDelta(7, got.Money, 1e-9)
	s.Len(got.Orders, 1)

	// A cached entry still goes through the ownership check.
	_, err = accounts.Get(context.Background(), s.newUser(), acc.ID)
	s.ErrorIs(err, domain.ErrForbidden)
}

func (s *ServiceTestSuite) TestAccountGet_WriterBetweenLoadAndCacheFill() {
	mr := miniredis.RunT(s.T())
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.T().Cleanup(func() { _ = rdb.Close() })

	deps := s.accounts.Deps
	deps.Cache = cache.New(rdb, time.Minute)
	accounts := NewAccountService(deps)
	orders := NewOrderService(deps)

	owner := s.newUser()
	acc := s.newAccount(owner)

	// Commit an order right after the reader has queried the account row and
	// before it fills the cache.
	fired := false
	err := s.db.Callback().Query().After("gorm:query").Register("test:order_after_account_read", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "accounts" {
			return
		}
		fired = true
		_, err := orders.Create(context.Background(), owner, OrderInput{AccountID: acc.ID, OrderType: domain.OrderTypeAdd, Amount: 50})
		s.Require().NoError(err)
	})
	s.Require().NoError(err)

	_, err = accounts.Get(context.Background(), owner, acc.ID)
	s.Require().NoError(err)
	s.Require().True(fired)
	s.False(mr.Exists(cache.AccountKey(acc.ID)))

	got, err := accounts.Get(context.Background(), owner, acc.ID)
	s.Require().NoError(err)
	s.InDelta(50, got.Money, 1e-9)
	s.Len(got.Orders, 1)
	s.True(mr.Exists(cache.AccountKey(acc.ID)))
}

func (s *ServiceTestSuite) TestAccountGet_CanceledCallerStillLoads() {
	owner := s.newUser()
	acc := s.newAccount(owner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := s.accounts.Get(ctx, owner, acc.ID)
	s.Require().NoError(err)
	s.Equal(acc.ID, got.ID)
}
