// Package advisor turns a student's advice request into a single language model call.
package advisor

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/llm"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/usagelog"
)

// RequestType selects the prompt.
type RequestType string

// Request types
const (
	JobRecommendations   RequestType = "job_recommendations"
	PortfolioImprovement RequestType = "portfolio_improvement"
	GeneralQuestion      RequestType = "general_question"
)

// MaxContextJobs bounds how many open jobs go into a prompt.
const MaxContextJobs = 20

// Request is the body of an advice call.
type Request struct {
	Type     string `json:"type" example:"job_recommendations"`
	UserID   string `json:"user_id,omitempty"`
	Question string `json:"question,omitempty"`
}

// Context is the data a prompt is built from.
type Context struct {
	Profile   model.Profile
	Portfolio *model.Portfolio
	Jobs      []model.Job
}

// ContextSource loads prompt context for a user.
type ContextSource interface {
	AdvisoryContext(ctx context.Context, userID uuid.UUID, maxJobs int) (Context, error)
}

// Bridge validates requests, calls the provider and records usage.
type Bridge struct {
	Provider llm.Provider
	Source   ContextSource
	Usage    usagelog.Logger
	Log      logrus.FieldLogger
	Now      func() time.Time
}

// NewBridge wires a Bridge.
func NewBridge(provider llm.Provider, source ContextSource, usage usagelog.Logger, log logrus.FieldLogger) *Bridge {
	return &Bridge{
		Provider: provider,
		Source:   source,
		Usage:    usage,
		Log:      log,
		Now:      time.Now,
	}
}

// RequestAdvice returns the model's advice for req on behalf of session.
func (b *Bridge) RequestAdvice(ctx context.Context, session model.Session, req Request) (string, error) {
	const op = "advisor.RequestAdvice"

	kind := RequestType(strings.TrimSpace(req.Type))
	switch kind {
	case JobRecommendations, PortfolioImprovement, GeneralQuestion:
	default:
		return "", apperr.Validation(op, "Invalid request type")
	}

	if raw := strings.TrimSpace(req.UserID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return "", apperr.Validation(op, "Invalid user_id")
		}
		if id != session.UserID {
			return "", apperr.Forbidden(op, "user_id does not match the signed in user")
		}
	}

	var prompt string
	switch kind {
	case GeneralQuestion:
		question := strings.TrimSpace(req.Question)
		if question == "" {
			return "", apperr.Validation(op, "Question is required")
		}
		prompt = generalQuestionPrompt(session, question)
	default:
		adviceCtx, err := b.Source.AdvisoryContext(ctx, session.UserID, MaxContextJobs)
		if err != nil {
			return "", err
		}
		if kind == JobRecommendations {
			prompt = jobRecommendationPrompt(adviceCtx)
		} else {
			prompt = portfolioImprovementPrompt(adviceCtx)
		}
	}

	advice, err := b.Provider.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return "", apperr.External(op, "Advice service is unavailable", err)
	}

	b.recordUsage(ctx, session.UserID, kind, advice)
	return advice, nil
}

func (b *Bridge) recordUsage(ctx context.Context, userID uuid.UUID, kind RequestType, advice string) {
	if b.Usage == nil {
		return
	}
	entry := model.AIUsageLog{
		UserID:         userID,
		RequestType:    string(kind),
		ResponseLength: utf8.RuneCountInString(advice),
		CreatedAt:      b.Now(),
	}
	if err := b.Usage.Record(ctx, entry); err != nil && b.Log != nil {
		b.Log.WithError(err).WithFields(logrus.Fields{
			"user_id":      userID,
			"request_type": kind,
		}).Warn("failed to record advice usage")
	}
}
