package service

import (
	"context"
	"sync"
	"time"

	"gel-tracker/internal/core/config"
	"gel-tracker/internal/features/tracking/domain"
	"gel-tracker/internal/features/tracking/ports"

	"github.com/stretchr/testify/mock"
)

// fakeElement is a named element handle.
type fakeElement struct {
	name string
}

func (e fakeElement) Describe() string { return e.name }

// fakePage replays canned page behaviour and records every call.
type fakePage struct {
	mu sync.Mutex

	navigateErr  error
	hideErr      error
	visibleAfter int // FindVisible succeeds on this call number; 0 means never
	visible      map[string]bool // when set, only these selectors have a visible match
	findErr      error
	button       ports.Element
	clickErr     error
	hasForm      bool
	submitErr    error
	enterErr     error
	texts        []string

	findCalls int
	textCalls int
	typed     string
	typedInto string
	calls     []string
}

func (p *fakePage) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakePage) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.record("navigate")
	return p.navigateErr
}

func (p *fakePage) HideOverlays(ctx context.Context, selectors []string) error {
	p.record("hide")
	return p.hideErr
}

func (p *fakePage) FindVisible(ctx context.Context, selectors []string) (ports.Element, error) {
	p.record("find")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.findCalls++
	if p.findErr != nil {
		return nil, p.findErr
	}
	if p.visibleAfter == 0 || p.findCalls < p.visibleAfter {
		return nil, nil
	}
	if p.visible == nil {
		return fakeElement{name: selectors[0]}, nil
	}
	for _, sel := range selectors {
		if p.visible[sel] {
			return fakeElement{name: sel}, nil
		}
	}
	return nil, nil
}

func (p *fakePage) SelectAll(ctx context.Context, el ports.Element) error {
	p.record("select")
	return nil
}

func (p *fakePage) TypeInto(ctx context.Context, el ports.Element, text string, delay time.Duration) error {
	p.record("type")
	p.mu.Lock()
	defer p.mu.Unlock()
	p.typed = text
	p.typedInto = el.Describe()
	return nil
}

func (p *fakePage) FindButtonByText(ctx context.Context, texts []string) (ports.Element, error) {
	p.record("find_button")
	return p.button, nil
}

func (p *fakePage) Click(ctx context.Context, el ports.Element) error {
	p.record("click")
	return p.clickErr
}

func (p *fakePage) SubmitForm(ctx context.Context, el ports.Element) (bool, error) {
	p.record("submit_form")
	if p.submitErr != nil {
		return false, p.submitErr
	}
	return p.hasForm, nil
}

func (p *fakePage) PressEnter(ctx context.Context) error {
	p.record("enter")
	return p.enterErr
}

func (p *fakePage) EvaluateText(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.texts) == 0 {
		return "", nil
	}
	i := p.textCalls
	if i >= len(p.texts) {
		i = len(p.texts) - 1
	}
	p.textCalls++
	return p.texts[i], nil
}

// fakeBrowser hands out a single fake page.
type fakeBrowser struct {
	page       *fakePage
	newPageErr error
	closeErr   error
	closed     int
}

func (b *fakeBrowser) NewPage(ctx context.Context) (ports.Page, error) {
	if b.newPageErr != nil {
		return nil, b.newPageErr
	}
	return b.page, nil
}

func (b *fakeBrowser) Close() error {
	b.closed++
	return b.closeErr
}

// fakeLauncher counts launches.
type fakeLauncher struct {
	browser     *fakeBrowser
	err         error
	launches    int
	executables []string
}

func (l *fakeLauncher) Launch(ctx context.Context, executable string) (ports.Browser, error) {
	l.launches++
	l.executables = append(l.executables, executable)
	if l.err != nil {
		return nil, l.err
	}
	return l.browser, nil
}

// fakeResolver returns a fixed executable path.
type fakeResolver struct {
	path  string
	err   error
	calls int
}

func (r *fakeResolver) Resolve(ctx context.Context) (string, error) {
	r.calls++
	return r.path, r.err
}

// MockResultCache is a mock implementation of ports.ResultCache.
type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Get(ctx context.Context, trackingCode string) (*domain.ScrapeResult, error) {
	args := m.Called(ctx, trackingCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScrapeResult), args.Error(1)
}

func (m *MockResultCache) Save(ctx context.Context, trackingCode string, result *domain.ScrapeResult, ttl time.Duration) error {
	args := m.Called(ctx, trackingCode, result, ttl)
	return args.Error(0)
}

// recordingObserver keeps every observation.
type recordingObserver struct {
	mu        sync.Mutex
	outcomes  []string
	stages    []string
	cacheHits int
}

func (o *recordingObserver) ObserveScrape(outcome string, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) ObserveStageFailure(stage string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, stage)
}

func (o *recordingObserver) ObserveCacheHit() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cacheHits++
}

// testScrapeConfig uses short bounds so timeouts resolve quickly.
func testScrapeConfig() config.ScrapeConfig {
	return config.ScrapeConfig{
		TargetURL:         "https://carrier.test/paquetes/",
		PageTimeout:       time.Second,
		NavigationTimeout: time.Second,
		LocatorTimeout:    100 * time.Millisecond,
		LocatorPoll:       5 * time.Millisecond,
		TypeDelay:         0,
		SettleDelay:       20 * time.Millisecond,
		ResultTimeout:     100 * time.Millisecond,
		ResultPoll:        5 * time.Millisecond,
		SnippetLength:     40,
	}
}

const resultPageText = "Paquetes no identificados\nSACO CB#12345\nFECHA DE INGRESO 15/3/2024"

// newFixture builds a service around a cooperative fake page.
func newFixture(page *fakePage, opts ...Option) (*ScrapeService, *fakeLauncher, *fakeResolver, *fakeBrowser) {
	browser := &fakeBrowser{page: page}
	launcher := &fakeLauncher{browser: browser}
	resolver := &fakeResolver{path: "/opt/chrome/chrome"}
	svc := NewScrapeService(testScrapeConfig(), resolver, launcher, opts...)
	return svc, launcher, resolver, browser
}

func cooperativePage(texts ...string) *fakePage {
	return &fakePage{
		visibleAfter: 1,
		button:       fakeElement{name: "button"},
		texts:        texts,
	}
}
