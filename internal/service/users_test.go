package service

import (
	"golang.org/x/crypto/bcrypt"

	"bookkeeping/internal/auth"
	"bookkeeping/internal/config"
	"bookkeeping/internal/domain"
)

func (s *ServiceTestSuite) TestRegister() {
	user, err := s.users.Register(s.ctx, RegisterInput{Username: "carol12345", Password: "password123"})
	s.Require().NoError(err)
	s.NotEmpty(user.ID)
	s.NotEqual("password123", user.HashedPassword)
	s.True(s.creds.VerifyPassword("password123", user.HashedPassword))

	_, err = s.users.Register(s.ctx, RegisterInput{Username: "carol12345", Password: "otherpass1"})
	s.ErrorIs(err, domain.ErrConflict)

	_, err = s.users.Register(s.ctx, RegisterInput{Username: testSuperuser, Password: "password123"})
	s.ErrorIs(err, domain.ErrConflict)
}

func (s *ServiceTestSuite) TestRegister_Validation() {
	cases := []RegisterInput{
		{Username: "abcd", Password: "password123"},
		{Username: "abcdefghijklmnopqrstu", Password: "password123"},
		{Username: "validname", Password: "short"},
	}
	for _, in := range cases {
		_, err := s.users.Register(s.ctx, in)
		s.True(domain.IsValidation(err), in.Username)
	}
	s.Zero(s.count(&domain.User{}, "1 = 1"))
}

func (s *ServiceTestSuite) TestAuthenticate() {
	_, err := s.users.Register(s.ctx, RegisterInput{Username: "dave123456", Password: "password123"})
	s.Require().NoError(err)

	p, err := s.users.Authenticate(s.ctx, "dave123456", "password123")
	s.Require().NoError(err)
	s.Equal(auth.RegularUser, p.Kind)

	_, err = s.users.Authenticate(s.ctx, "dave123456", "wrongpass1")
	s.ErrorIs(err, domain.ErrUnauthorized)
	_, err = s.users.Authenticate(s.ctx, "nobody1234", "password123")
	s.ErrorIs(err, domain.ErrUnauthorized)
}

func (s *ServiceTestSuite) TestAuthenticate_Superuser() {
	p, err := s.users.Authenticate(s.ctx, testSuperuser, "rootpassword")
	s.Require().NoError(err)
	s.True(p.IsSuperuser())
	s.Equal(auth.SuperuserID, p.ID)

	_, err = s.users.Authenticate(s.ctx, testSuperuser, "wrong")
	s.ErrorIs(err, domain.ErrUnauthorized)

	hash, err := bcrypt.GenerateFromPassword([]byte("hashedsecret"), bcrypt.MinCost)
	s.Require().NoError(err)
	hashed := NewUserService(s.users.Deps, s.creds, config.SuperuserConfig{Username: testSuperuser, PasswordHash: string(hash)})
	_, err = hashed.Authenticate(s.ctx, testSuperuser, "hashedsecret")
	s.NoError(err)

	disabled := NewUserService(s.users.Deps, s.creds, config.SuperuserConfig{Username: testSuperuser})
	_, err = disabled.Authenticate(s.ctx, testSuperuser, "")
	s.ErrorIs(err, domain.ErrUnauthorized)
}

func (s *ServiceTestSuite) TestLogin_IssuesValidToken() {
	user, err := s.users.Register(s.ctx, RegisterInput{Username: "erin123456", Password: "password123"})
	s.Require().NoError(err)

	token, p, err := s.users.Login(s.ctx, "erin123456", "password123")
	s.Require().NoError(err)
	s.Equal(user.ID, p.ID)

	claims, err := s.creds.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal("erin123456", claims.Username())
	s.Equal(user.ID, claims.UserID)

	_, _, err = s.users.Login(s.ctx, "erin123456", "nope")
	s.ErrorIs(err, domain.ErrUnauthorized)
}

func (s *ServiceTestSuite) TestUserList_SuperuserOnly() {
	p := s.newUser()
	s.newUser()

	_, err := s.users.List(s.ctx, p)
	s.ErrorIs(err, domain.ErrForbidden)

	users, err := s.users.List(s.ctx, s.super)
	s.Require().NoError(err)
	s.Len(users, 2)
}

func (s *ServiceTestSuite) TestUserDelete_Cascades() {
	victim := s.newUser()
	other := s.newUser()
	own := s.newAccount(victim)
	s.newOrder(victim, own.ID, 10)
	foreign := s.newAccount(other)
	// An order the victim creates on another account outlives the victim.
	foreignOrder := s.newOrder(s.super, foreign.ID, 5)
	s.Require().NoError(s.db.Model(&domain.Order{}).Where("id = ?", foreignOrder.ID).Update("created_by", victim.ID).Error)

	_, err := s.users.Delete(s.ctx, victim, victim.ID)
	s.ErrorIs(err, domain.ErrForbidden)

	deleted, err := s.users.Delete(s.ctx, s.super, victim.ID)
	s.Require().NoError(err)
	s.Equal(victim.ID, deleted.ID)

	s.Zero(s.count(&domain.User{}, "id = ?", victim.ID))
	s.Zero(s.count(&domain.Account{}, "owner_id = ?", victim.ID))
	s.Zero(s.count(&domain.Order{}, "account_id = ?", own.ID))
	s.EqualValues(1, s.count(&domain.Order{}, "id = ?", foreignOrder.ID))

	_, err = s.users.Delete(s.ctx, s.super, victim.ID)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *ServiceTestSuite) TestStats() {
	p := s.newUser()
	acc := s.newAccount(p)
	s.newOrder(p, acc.ID, 1)
	s.newOrder(p, acc.ID, 2)

	_, err := s.users.Stats(s.ctx, p)
	s.ErrorIs(err, domain.ErrForbidden)

	st, err := s.users.Stats(s.ctx, s.super)
	s.Require().NoError(err)
	s.Equal(Stats{TotalUsers: 1, TotalAccounts: 1, TotalOrders: 2, Superuser: testSuperuser}, st)
}
