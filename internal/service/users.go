package service

import (
	"context"
	"crypto/subtle"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bookkeeping/internal/auth"
	"bookkeeping/internal/cache"
	"bookkeeping/internal/config"
	"bookkeeping/internal/domain"
)

// RegisterInput carries new user credentials.
type RegisterInput struct {
	Username string `json:"username" validate:"min=5,max=20"`
	Password string `json:"password" validate:"min=8,max=100"`
}

// Stats is the admin overview.
type Stats struct {
	TotalUsers    int64  `json:"total_users"`
	TotalAccounts int64  `json:"total_accounts"`
	TotalOrders   int64  `json:"total_orders"`
	Superuser     string `json:"superuser"`
}

// UserService is the user directory plus login.
type UserService struct {
	Deps
	creds *auth.Credentials
	super config.SuperuserConfig
}

func NewUserService(deps Deps, creds *auth.Credentials, super config.SuperuserConfig) *UserService {
	return &UserService{Deps: deps.withDefaults(), creds: creds, super: super}
}

// Register creates a user. The superuser name is reserved.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if s.super.Username != "" && in.Username == s.super.Username {
		return nil, errors.Wrap(domain.ErrConflict, "username is reserved")
	}
	db := s.DB.WithContext(ctx)
	var taken int64
	if err := db.Model(&domain.User{}).Where("username = ?", in.Username).Count(&taken).Error; err != nil {
		return nil, storeErr(err, "check username")
	}
	if taken > 0 {
		return nil, errors.Wrap(domain.ErrConflict, "username already exists")
	}
	hash, err := s.creds.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := domain.User{ID: uuid.NewString(), Username: in.Username, HashedPassword: hash}
	if err := db.Create(&user).Error; err != nil {
		return nil, storeErr(err, "create user")
	}
	s.invalidate(ctx, cache.StatsKey())
	return &user, nil
}

// Authenticate checks the configured superuser first, then user rows. Every
// failure is domain.ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (auth.Principal, error) {
	if s.super.Username != "" && username == s.super.Username {
		if s.superPasswordMatches(password) {
			return auth.SuperuserPrincipal(username), nil
		}
		return auth.Principal{}, domain.ErrUnauthorized
	}
	var user domain.User
	if err := s.DB.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.Principal{}, domain.ErrUnauthorized
		}
		return auth.Principal{}, storeErr(err, "load user")
	}
	if !s.creds.VerifyPassword(password, user.HashedPassword) {
		return auth.Principal{}, domain.ErrUnauthorized
	}
	return auth.Principal{Kind: auth.RegularUser, ID: user.ID, Username: user.Username}, nil
}

func (s *UserService) superPasswordMatches(password string) bool {
	if s.super.PasswordHash != "" {
		return s.creds.VerifyPassword(password, s.super.PasswordHash)
	}
	if s.super.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.super.Password)) == 1
}

// Login authenticates and issues an access token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, auth.Principal, error) {
	p, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", auth.Principal{}, err
	}
	token, err := s.creds.IssueToken(p.Claims())
	if err != nil {
		return "", auth.Principal{}, err
	}
	return token, p, nil
}

// List returns every user. Superuser only.
func (s *UserService) List(ctx context.Context, p auth.Principal) ([]domain.User, error) {
	if err := auth.RequireSuperuser(p); err != nil {
		return nil, err
	}
	users := []domain.User{}
	if err := s.DB.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, storeErr(err, "list users")
	}
	return users, nil
}

// Delete removes a user together with the accounts it owns and their orders.
// Orders the user created on other accounts are kept. Superuser only.
func (s *UserService) Delete(ctx context.Context, p auth.Principal, id string) (*domain.User, error) {
	if err := auth.RequireSuperuser(p); err != nil {
		return nil, err
	}
	var user domain.User
	var accountIDs []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Account{}).Where("owner_id = ?", id).Pluck("id", &accountIDs).Error; err != nil {
			return err
		}
		if err := deleteAccounts(tx, accountIDs); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return nil, storeErr(err, "delete user")
	}
	keys := []string{cache.StatsKey()}
	for _, accID := range accountIDs {
		keys = append(keys, cache.AccountKey(accID))
	}
	s.invalidate(ctx, keys...)
	s.Log.WithFields(logrus.Fields{"user_id": id, "accounts": len(accountIDs)}).Info("user deleted")
	return &user, nil
}

// Stats counts rows for the admin overview. Superuser only. Counts are cached
// for the cache TTL.
func (s *UserService) Stats(ctx context.Context, p auth.Principal) (Stats, error) {
	if err := auth.RequireSuperuser(p); err != nil {
		return Stats{}, err
	}
	var st Stats
	found, err := s.Cache.Get(ctx, cache.StatsKey(), &st)
	if err != nil {
		s.Log.WithField("error", err.Error()).Warn("cache read failed")
	}
	if !found {
		version, cacheable := s.cacheVersion(ctx, cache.StatsKey())
		db := s.DB.WithContext(ctx)
		if err := db.Model(&domain.User{}).Count(&st.TotalUsers).Error; err != nil {
			return Stats{}, storeErr(err, "count users")
		}
		if err := db.Model(&domain.Account{}).Count(&st.TotalAccounts).Error; err != nil {
			return Stats{}, storeErr(err, "count accounts")
		}
		if err := db.Model(&domain.Order{}).Count(&st.TotalOrders).Error; err != nil {
			return Stats{}, storeErr(err, "count orders")
		}
		if cacheable {
			s.store(ctx, cache.StatsKey(), st, version)
		}
	}
	st.Superuser = p.Username
	return st, nil
}
