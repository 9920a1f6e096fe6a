package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
)

const testGoals = "I want to meet senior platform engineers who have scaled distributed systems."

func onboard(t *testing.T, uc *usecase.UseCases, id model.AgentID) *model.User {
	t.Helper()
	user, err := uc.User.Onboard(context.Background(), id, model.OnboardingInput{
		Name:      "Test User",
		Age:       30,
		ResumeURL: "https://example.com/resume.pdf",
		Goals:     testGoals,
	})
	gt.NoError(t, err).Required()
	return user
}

type mockSearcher struct {
	profiles []*model.Profile
	err      error
	queries  []string
	limits   []int
}

func (m *mockSearcher) Search(_ context.Context, query string, limit int) ([]*model.Profile, error) {
	m.queries = append(m.queries, query)
	m.limits = append(m.limits, limit)
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.profiles) {
		return m.profiles[:limit], nil
	}
	return m.profiles, nil
}

type mockDetailer struct {
	mu     sync.Mutex
	calls  map[string]int
	detail func(url string) (*model.DetailedProfile, error)
}

func (m *mockDetailer) Detail(_ context.Context, url string) (*model.DetailedProfile, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[url]++
	m.mu.Unlock()
	return m.detail(url)
}

func (m *mockDetailer) count(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}

type mockScorer struct {
	score func(c *model.Contact) float64
}

func (m *mockScorer) Score(_ context.Context, _ *model.User, c *model.Contact) float64 {
	return m.score(c)
}

type mockMailer struct {
	mu   sync.Mutex
	sent []*model.EmailMessage
	// errs maps a recipient address to the error returned for it
	errs map[string]error
}

func (m *mockMailer) Send(_ context.Context, _ model.AgentID, msg *model.EmailMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errs[msg.To]; ok {
		return "", err
	}
	m.sent = append(m.sent, msg)
	return "msg-" + strings.Split(msg.To, "@")[0], nil
}

type mockEmailFinder struct {
	requestID string
	submitErr error
	results   []*model.EmailLookup
	errs      []error
	polls     int
}

func (m *mockEmailFinder) Submit(_ context.Context, _ string) (string, error) {
	if m.submitErr != nil {
		return "", m.submitErr
	}
	return m.requestID, nil
}

func (m *mockEmailFinder) Result(_ context.Context, _ string) (*model.EmailLookup, error) {
	i := m.polls
	m.polls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.results) {
		return m.results[i], nil
	}
	return &model.EmailLookup{Status: model.EmailLookupProcessing}, nil
}

type mockNotifier struct {
	results []*model.OutreachResult
}

func (m *mockNotifier) NotifyOutreach(_ context.Context, _ model.AgentID, result *model.OutreachResult) error {
	m.results = append(m.results, result)
	return nil
}

type mockQueue struct {
	accept bool
	jobs   []*model.CallbackRecord
}

func (m *mockQueue) Enqueue(rec *model.CallbackRecord) bool {
	if !m.accept {
		return false
	}
	m.jobs = append(m.jobs, rec)
	return true
}

type mockArchive struct {
	mu     sync.Mutex
	bodies map[string][]byte
	done   chan struct{}
}

func newMockArchive() *mockArchive {
	return &mockArchive{bodies: map[string][]byte{}, done: make(chan struct{}, 1)}
}

func (m *mockArchive) Put(_ context.Context, requestID string, body []byte) error {
	m.mu.Lock()
	m.bodies[requestID] = body
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

type mockOAuthClient struct {
	states []string
	token  *model.OAuthToken
	err    error
}

func (m *mockOAuthClient) AuthCodeURL(state string) string {
	m.states = append(m.states, state)
	return "https://accounts.example.com/auth?state=" + state
}

func (m *mockOAuthClient) Exchange(_ context.Context, _ string) (*model.OAuthToken, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.token, nil
}

var (
	_ interfaces.ProfileSearcher     = &mockSearcher{}
	_ interfaces.ProfileDetailer     = &mockDetailer{}
	_ interfaces.SimilarityScorer    = &mockScorer{}
	_ interfaces.Mailer              = &mockMailer{}
	_ interfaces.EmailFinder         = &mockEmailFinder{}
	_ interfaces.Notifier            = &mockNotifier{}
	_ interfaces.CallbackArchive     = &mockArchive{}
	_ interfaces.OAuthProviderClient = &mockOAuthClient{}
	_ usecase.CallbackQueue          = &mockQueue{}
)
