package advisor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XevilA/spu-nexus-sub000/internal/apperr"
	"github.com/XevilA/spu-nexus-sub000/internal/llm"
	"github.com/XevilA/spu-nexus-sub000/internal/logger"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

type fakeSource struct {
	ctx   Context
	err   error
	calls int
}

func (f *fakeSource) AdvisoryContext(_ context.Context, _ uuid.UUID, maxJobs int) (Context, error) {
	f.calls++
	if maxJobs != MaxContextJobs {
		return Context{}, errors.New("unexpected job limit")
	}
	return f.ctx, f.err
}

type fakeUsage struct {
	rows []model.AIUsageLog
	err  error
}

func (f *fakeUsage) Record(_ context.Context, entry model.AIUsageLog) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, entry)
	return nil
}

type upstream struct {
	srv   *httptest.Server
	calls atomic.Int32
}

func newUpstream(t *testing.T, status int, body string) *upstream {
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		u.calls.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func newBridge(u *upstream, src *fakeSource, usage *fakeUsage) *Bridge {
	provider := llm.NewOpenAIProvider("sk-test", "gpt-4o-mini", u.srv.URL, time.Second)
	return NewBridge(provider, src, usage, logger.Discard())
}

func studentSession() model.Session {
	return model.Session{UserID: uuid.New(), Role: model.RoleStudent, DisplayName: "Alice"}
}

func TestRequestAdviceSuccessRecordsUsage(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"Apply to the backend internship."}}]}`)
	src := &fakeSource{ctx: Context{
		Profile: model.Profile{Username: "alice"},
		Jobs:    []model.Job{{ID: 1, EditableJobInfo: model.EditableJobInfo{Title: "Backend Intern", JobType: model.JobTypeInternship}}},
	}}
	usage := &fakeUsage{}
	session := studentSession()

	advice, err := newBridge(u, src, usage).RequestAdvice(context.Background(), session, Request{
		Type:   string(JobRecommendations),
		UserID: session.UserID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Apply to the backend internship.", advice)
	assert.Equal(t, 1, src.calls)

	require.Len(t, usage.rows, 1)
	assert.Equal(t, session.UserID, usage.rows[0].UserID)
	assert.Equal(t, string(JobRecommendations), usage.rows[0].RequestType)
	assert.Equal(t, len(advice), usage.rows[0].ResponseLength)
}

func TestRequestAdviceUpstreamFailure(t *testing.T) {
	u := newUpstream(t, http.StatusInternalServerError, `{"error":"boom"}`)
	usage := &fakeUsage{}

	_, err := newBridge(u, &fakeSource{}, usage).RequestAdvice(context.Background(), studentSession(), Request{
		Type: string(PortfolioImprovement),
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeExternalService))
	assert.Empty(t, usage.rows)
	assert.EqualValues(t, 1, u.calls.Load())
}

func TestRequestAdviceMissingText(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"choices":[]}`)
	usage := &fakeUsage{}

	_, err := newBridge(u, &fakeSource{}, usage).RequestAdvice(context.Background(), studentSession(), Request{
		Type: string(PortfolioImprovement),
	})
	assert.True(t, apperr.Is(err, apperr.CodeExternalService))
	assert.Empty(t, usage.rows)
}

func TestRequestAdviceEmptyQuestionSkipsUpstream(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"x"}}]}`)
	usage := &fakeUsage{}

	for _, q := range []string{"", "   \n\t"} {
		_, err := newBridge(u, &fakeSource{}, usage).RequestAdvice(context.Background(), studentSession(), Request{
			Type:     string(GeneralQuestion),
			Question: q,
		})
		assert.True(t, apperr.Is(err, apperr.CodeValidation))
	}
	assert.EqualValues(t, 0, u.calls.Load())
	assert.Empty(t, usage.rows)
}

func TestRequestAdviceGeneralQuestion(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"Yes, learn Go."}}]}`)
	src := &fakeSource{}
	usage := &fakeUsage{}

	advice, err := newBridge(u, src, usage).RequestAdvice(context.Background(), studentSession(), Request{
		Type:     string(GeneralQuestion),
		Question: "Should I learn Go?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Yes, learn Go.", advice)
	assert.Equal(t, 0, src.calls)
	require.Len(t, usage.rows, 1)
	assert.Equal(t, string(GeneralQuestion), usage.rows[0].RequestType)
}

func TestRequestAdviceRejectsBadInput(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"x"}}]}`)
	b := newBridge(u, &fakeSource{}, &fakeUsage{})
	session := studentSession()

	_, err := b.RequestAdvice(context.Background(), session, Request{Type: "horoscope"})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = b.RequestAdvice(context.Background(), session, Request{Type: string(JobRecommendations), UserID: uuid.NewString()})
	assert.True(t, apperr.Is(err, apperr.CodeAuthorization))

	_, err = b.RequestAdvice(context.Background(), session, Request{Type: string(JobRecommendations), UserID: "not-a-uuid"})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	assert.EqualValues(t, 0, u.calls.Load())
}

func TestRequestAdviceUsageFailureIsSwallowed(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"Keep going."}}]}`)
	usage := &fakeUsage{err: errors.New("disk full")}

	advice, err := newBridge(u, &fakeSource{}, usage).RequestAdvice(context.Background(), studentSession(), Request{
		Type: string(PortfolioImprovement),
	})
	require.NoError(t, err)
	assert.Equal(t, "Keep going.", advice)
}

func TestRequestAdviceContextErrorPropagates(t *testing.T) {
	u := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"x"}}]}`)
	src := &fakeSource{err: apperr.NotFound("load", "Profile not found")}

	_, err := newBridge(u, src, &fakeUsage{}).RequestAdvice(context.Background(), studentSession(), Request{
		Type: string(JobRecommendations),
	})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	assert.EqualValues(t, 0, u.calls.Load())
}

func TestPromptsMentionContext(t *testing.T) {
	rate := 200.0
	c := Context{
		Profile: model.Profile{Username: "bob", EditableProfileInfo: model.EditableProfileInfo{DisplayName: "Bob"}},
		Portfolio: &model.Portfolio{
			Skills:       []model.Skill{{Name: "SQL", Level: "advanced"}},
			Projects:     []model.Project{{Title: "Dashboards", Technologies: []string{"Metabase"}}},
			Availability: "weekends",
			ExpectedRate: &rate,
		},
		Jobs: []model.Job{{ID: 9, Company: model.Company{Name: "DataForge"}, EditableJobInfo: model.EditableJobInfo{Title: "Analyst", JobType: model.JobTypeFullTime}}},
	}
	p := jobRecommendationPrompt(c)
	assert.Contains(t, p, "Bob")
	assert.Contains(t, p, "SQL (advanced)")
	assert.Contains(t, p, "Analyst at DataForge")

	c.Portfolio = nil
	assert.Contains(t, portfolioImprovementPrompt(c), "no approved portfolio")
}
