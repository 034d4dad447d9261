// Package service holds the user directory, the account ledger and the order
// journal. Every method takes the calling auth.Principal and enforces the
// ownership rules before it mutates anything.
package service

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bookkeeping/internal/cache"
	"bookkeeping/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so clients see the field they sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate input")
	}
	out := &domain.ValidationError{Fields: make([]domain.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out.Fields = append(out.Fields, domain.FieldError{Field: fe.Field(), Rule: rule})
	}
	return out
}

// storeErr maps a gorm error to a domain error kind, wrapping anything else
// with op for the logs.
func storeErr(err error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(domain.ErrNotFound, op)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(domain.ErrConflict, op)
	default:
		return errors.Wrap(err, op)
	}
}

// Deps are shared by every service.
type Deps struct {
	DB    *gorm.DB
	Cache *cache.Cache // nil disables caching
	Log   logrus.FieldLogger
	Now   func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// invalidate drops cache keys and bumps their versions. Failures are logged
// and otherwise ignored; stale entries expire with the cache TTL.
func (d Deps) invalidate(ctx context.Context, keys ...string) {
	if err := d.Cache.Invalidate(ctx, keys...); err != nil {
		d.Log.WithFields(logrus.Fields{"keys": keys, "error": err.Error()}).Warn("cache invalidation failed")
	}
}

// cacheVersion reads the version of key before a database load. ok is false
// when the version is unknown and the loaded value must not be cached.
func (d Deps) cacheVersion(ctx context.Context, key string) (version int64, ok bool) {
	version, err := d.Cache.Version(ctx, key)
	if err != nil {
		d.Log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("cache version read failed")
		return 0, false
	}
	return version, true
}

// store caches value under key unless key was invalidated after version was read.
func (d Deps) store(ctx context.Context, key string, value any, version int64) {
	if _, err := d.Cache.Set(ctx, key, value, version); err != nil {
		d.Log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("cache write failed")
	}
}
