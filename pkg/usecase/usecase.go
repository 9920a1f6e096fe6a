package usecase

import (
	"time"

	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/utils/cache"
)

const (
	DefaultCallbackTTL = 24 * time.Hour
	DefaultProfileTTL  = time.Hour
)

// CallbackQueue accepts received webhook callbacks for asynchronous processing
type CallbackQueue interface {
	// Enqueue returns false when the queue cannot take more jobs
	Enqueue(rec *model.CallbackRecord) bool
}

// Stores holds the in-memory expiring stores shared by the use cases
type Stores struct {
	// Callbacks are received SignalHire callbacks keyed by request ID
	Callbacks *cache.TTL[string, *model.CallbackRecord]
	// Delivered are profiles delivered by SignalHire keyed by profile URL
	Delivered *cache.TTL[string, *model.DetailedProfile]
	// Profiles caches detail lookups keyed by profile URL
	Profiles *cache.TTL[string, *model.DetailedProfile]
}

// NewStores creates empty stores. Delivered profiles share the callback TTL.
func NewStores(callbackTTL, profileTTL time.Duration) *Stores {
	return &Stores{
		Callbacks: cache.New[string, *model.CallbackRecord](callbackTTL),
		Delivered: cache.New[string, *model.DetailedProfile](callbackTTL),
		Profiles:  cache.New[string, *model.DetailedProfile](profileTTL),
	}
}

type UseCases struct {
	repo         interfaces.Repository
	searcher     interfaces.ProfileSearcher
	detailer     interfaces.ProfileDetailer
	scorer       interfaces.SimilarityScorer
	mailer       interfaces.Mailer
	emailFinder  interfaces.EmailFinder
	notifier     interfaces.Notifier
	archive      interfaces.CallbackArchive
	oauthClient  interfaces.OAuthProviderClient
	stateSecret  []byte
	outreach     *OutreachConfig
	queue        CallbackQueue
	stores       *Stores
	now          func() time.Time
	pollInterval time.Duration
	pollAttempts int

	User       *UserUseCase
	Contact    *ContactUseCase
	Profile    *ProfileUseCase
	Outreach   *OutreachUseCase
	SignalHire *SignalHireUseCase
	OAuth      *OAuthUseCase
}

type Option func(*UseCases)

func WithProfileSearcher(s interfaces.ProfileSearcher) Option {
	return func(uc *UseCases) {
		uc.searcher = s
	}
}

func WithProfileDetailer(d interfaces.ProfileDetailer) Option {
	return func(uc *UseCases) {
		uc.detailer = d
	}
}

func WithSimilarityScorer(s interfaces.SimilarityScorer) Option {
	return func(uc *UseCases) {
		uc.scorer = s
	}
}

func WithMailer(m interfaces.Mailer) Option {
	return func(uc *UseCases) {
		uc.mailer = m
	}
}

func WithEmailFinder(f interfaces.EmailFinder) Option {
	return func(uc *UseCases) {
		uc.emailFinder = f
	}
}

// WithEmailPolling sets how often and how many times email lookups are polled
func WithEmailPolling(interval time.Duration, attempts int) Option {
	return func(uc *UseCases) {
		uc.pollInterval = interval
		uc.pollAttempts = attempts
	}
}

func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

func WithCallbackArchive(a interfaces.CallbackArchive) Option {
	return func(uc *UseCases) {
		uc.archive = a
	}
}

// WithOAuth enables the Gmail connection flow. secret signs the state parameter.
func WithOAuth(client interfaces.OAuthProviderClient, secret []byte) Option {
	return func(uc *UseCases) {
		uc.oauthClient = client
		uc.stateSecret = secret
	}
}

func WithOutreachConfig(cfg *OutreachConfig) Option {
	return func(uc *UseCases) {
		uc.outreach = cfg
	}
}

// WithCallbackQueue makes webhook processing asynchronous
func WithCallbackQueue(q CallbackQueue) Option {
	return func(uc *UseCases) {
		uc.queue = q
	}
}

func WithStores(s *Stores) Option {
	return func(uc *UseCases) {
		uc.stores = s
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		now:          time.Now,
		pollInterval: 2 * time.Second,
		pollAttempts: 5,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.stores == nil {
		uc.stores = NewStores(DefaultCallbackTTL, DefaultProfileTTL)
	}
	if uc.outreach == nil {
		uc.outreach = DefaultOutreachConfig()
	}

	uc.User = NewUserUseCase(repo)
	uc.Contact = NewContactUseCase(repo, uc.scorer, uc.now)
	uc.Profile = &ProfileUseCase{
		contacts:     uc.Contact,
		searcher:     uc.searcher,
		detailer:     uc.detailer,
		emailFinder:  uc.emailFinder,
		stores:       uc.stores,
		pollInterval: uc.pollInterval,
		pollAttempts: uc.pollAttempts,
	}
	uc.Outreach = &OutreachUseCase{
		repo:     repo,
		contacts: uc.Contact,
		profiles: uc.Profile,
		mailer:   uc.mailer,
		notifier: uc.notifier,
		config:   uc.outreach,
	}
	uc.SignalHire = &SignalHireUseCase{
		stores:  uc.stores,
		queue:   uc.queue,
		archive: uc.archive,
		now:     uc.now,
	}
	uc.OAuth = &OAuthUseCase{
		repo:   repo,
		client: uc.oauthClient,
		secret: uc.stateSecret,
		now:    uc.now,
	}

	return uc
}

// Stores returns the in-memory stores so workers can sweep them
func (uc *UseCases) Stores() *Stores {
	return uc.stores
}
