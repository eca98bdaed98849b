// Package service holds the workflows behind the HTTP handlers. Every operation
// takes the caller's session explicitly and returns *apperr.AppError on failure.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/cache"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/notify"
	"github.com/XevilA/spu-nexus-sub000/internal/storage"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	DB      *database.DBinstanceStruct
	Broker  notify.Broker
	Cache   *cache.RedisCache
	Storage storage.Client
	Log     logrus.FieldLogger

	JobCacheTTL time.Duration
	Now         func() time.Time
}

// Services bundles the workflow services.
type Services struct {
	Identity     *IdentityService
	Companies    *CompanyService
	Jobs         *JobService
	Portfolios   *PortfolioService
	Applications *ApplicationService
	Messages     *MessageService
	Advisory     *AdvisoryContextLoader
}

// New builds every service over deps.
func New(deps Deps) *Services {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Broker == nil {
		deps.Broker = notify.NewMemoryBroker()
	}
	return &Services{
		Identity:     &IdentityService{deps},
		Companies:    &CompanyService{deps},
		Jobs:         &JobService{deps},
		Portfolios:   &PortfolioService{deps},
		Applications: &ApplicationService{deps},
		Messages:     &MessageService{deps},
		Advisory:     &AdvisoryContextLoader{deps},
	}
}

func (d Deps) now() time.Time {
	return d.Now().UTC()
}

// publish sends a notification and only logs on failure.
func (d Deps) publish(ctx context.Context, topic, kind string, ref uint) {
	if d.Broker == nil {
		return
	}
	ev := notify.Event{Kind: kind, RefID: ref, At: d.now()}
	if err := d.Broker.Publish(ctx, topic, ev); err != nil {
		d.Log.WithError(err).WithFields(logrus.Fields{"topic": topic, "kind": kind}).Warn("failed to publish notification")
	}
}

// transitionError maps a model transition failure onto an AppError.
func transitionError(op string, err error) error {
	switch {
	case errors.Is(err, model.ErrNotPermitted):
		return apperr.Forbidden(op, "You are not allowed to perform this action")
	case errors.Is(err, model.ErrIllegalTransition):
		return apperr.E(apperr.CodeValidation, op, err.Error(), err)
	case errors.Is(err, model.ErrInvalidPortfolio):
		return apperr.E(apperr.CodeValidation, op, err.Error(), err)
	default:
		return apperr.Persistence(op, "Database error", err)
	}
}

// storeError is database.TranslateError that also understands model validation errors
// raised by hooks.
func storeError(op, notFound string, err error) error {
	if errors.Is(err, model.ErrInvalidPortfolio) {
		return apperr.E(apperr.CodeValidation, op, err.Error(), err)
	}
	return database.TranslateError(op, notFound, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive substring pattern for ILIKE.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(s)) + "%"
}
