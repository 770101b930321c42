package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gel-tracker/internal/core/config"
	"gel-tracker/internal/features/tracking/domain"
	"gel-tracker/internal/features/tracking/extractor"
	"gel-tracker/internal/features/tracking/ports"

	"go.uber.org/zap"
)

// ScrapeService runs the full lookup pipeline for one tracking code per call.
// Each call launches its own browser and always closes it before returning.
type ScrapeService struct {
	cfg      config.ScrapeConfig
	resolver ports.ExecutableResolver
	launcher ports.BrowserLauncher
	cache    ports.ResultCache
	cacheTTL time.Duration
	observer ports.ScrapeObserver
	logger   *zap.Logger
}

// Option customizes a ScrapeService.
type Option func(*ScrapeService)

// WithCache enables the result cache.
func WithCache(cache ports.ResultCache, ttl time.Duration) Option {
	return func(s *ScrapeService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithObserver reports pipeline outcomes to o.
func WithObserver(o ports.ScrapeObserver) Option {
	return func(s *ScrapeService) {
		s.observer = o
	}
}

// WithLogger overrides the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *ScrapeService) {
		s.logger = l
	}
}

// NewScrapeService creates a new ScrapeService.
func NewScrapeService(cfg config.ScrapeConfig, resolver ports.ExecutableResolver, launcher ports.BrowserLauncher, opts ...Option) *ScrapeService {
	s := &ScrapeService{
		cfg:      cfg,
		resolver: resolver,
		launcher: launcher,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunScrape resolves req against the carrier page.
// Empty codes are rejected before any browser work happens.
func (s *ScrapeService) RunScrape(ctx context.Context, req domain.ScrapeRequest) (*domain.ScrapeResult, error) {
	code := strings.TrimSpace(req.TrackingCode)
	if code == "" {
		return nil, domain.NewScrapeError(domain.KindInputInvalid, domain.StageInput, "tracking code is required", nil)
	}
	req.TrackingCode = code

	if cached := s.cached(ctx, code); cached != nil {
		return cached, nil
	}

	start := time.Now()
	result, err := s.scrape(ctx, req)
	duration := time.Since(start)

	if err != nil {
		s.reportFailure(code, err, duration)
		return nil, err
	}

	s.observe(outcomeOf(result), duration)
	s.store(ctx, code, result)

	return result, nil
}

func (s *ScrapeService) scrape(ctx context.Context, req domain.ScrapeRequest) (*domain.ScrapeResult, error) {
	log := s.logger.With(zap.String("tracking_code", req.TrackingCode))

	executable, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, domain.NewScrapeError(domain.KindBrowserUnavailable, domain.StageSession, "no browser executable available", err)
	}

	log.Debug("Launching browser...", zap.String("executable", executable))

	browser, err := s.launcher.Launch(ctx, executable)
	if err != nil {
		return nil, domain.NewScrapeError(domain.KindBrowserUnavailable, domain.StageSession, "failed to launch browser", err)
	}
	defer s.release(browser, log)

	page, err := browser.NewPage(ctx)
	if err != nil {
		return nil, domain.NewScrapeError(domain.KindInternal, domain.StageSession, "failed to open page", err)
	}

	if err := s.navigate(ctx, page, log); err != nil {
		return nil, err
	}

	input, err := s.locate(ctx, page)
	if err != nil {
		return nil, err
	}
	log.Debug("Search input located", zap.String("element", input.Describe()))

	via, err := s.submit(ctx, page, input, req.TrackingCode, log)
	if err != nil {
		return nil, err
	}

	text, err := s.awaitResult(ctx, page)
	if err != nil {
		return nil, err
	}

	result := extractor.Analyze(text, s.bannerPolicy())
	if s.cfg.IncludeSnippet {
		result.RawTextSnippet = domain.Truncate(text, s.cfg.SnippetLength)
	}

	log.Info("Scrape completed",
		zap.Bool("found", result.Found),
		zap.String("submit_via", string(via)),
		zap.Bool("negative_banner", extractor.HasNegativeBanner(text)),
	)

	return &result, nil
}

// release closes the browser. Close failures are logged and never surface.
func (s *ScrapeService) release(browser ports.Browser, log *zap.Logger) {
	if err := browser.Close(); err != nil {
		log.Warn("Failed to close browser", zap.Error(err))
	}
}

func (s *ScrapeService) bannerPolicy() extractor.BannerPolicy {
	if s.cfg.BannerAuthoritative {
		return extractor.BannerAuthoritative
	}
	return extractor.BannerOverridable
}

func (s *ScrapeService) cached(ctx context.Context, code string) *domain.ScrapeResult {
	if s.cache == nil {
		return nil
	}

	result, err := s.cache.Get(ctx, code)
	if err != nil {
		s.logger.Warn("Result cache lookup failed", zap.String("tracking_code", code), zap.Error(err))
		return nil
	}
	if result == nil {
		return nil
	}

	if s.observer != nil {
		s.observer.ObserveCacheHit()
	}
	result.Cached = true
	return result
}

// store caches found results only; a code missing now may be listed later.
func (s *ScrapeService) store(ctx context.Context, code string, result *domain.ScrapeResult) {
	if s.cache == nil || !result.OK || !result.Found {
		return
	}
	if err := s.cache.Save(ctx, code, result, s.cacheTTL); err != nil {
		s.logger.Warn("Result cache save failed", zap.String("tracking_code", code), zap.Error(err))
	}
}

func (s *ScrapeService) reportFailure(code string, err error, duration time.Duration) {
	fields := []zap.Field{
		zap.String("tracking_code", code),
		zap.Duration("duration", duration),
		zap.Error(err),
	}

	outcome := strings.ToLower(string(domain.KindInternal))
	var se *domain.ScrapeError
	if errors.As(err, &se) {
		outcome = strings.ToLower(string(se.Kind))
		fields = append(fields, zap.String("stage", string(se.Stage)))
		if se.Snippet != "" {
			fields = append(fields, zap.String("snippet", se.Snippet))
		}
		if s.observer != nil {
			s.observer.ObserveStageFailure(string(se.Stage))
		}
	}

	s.logger.Error("Scrape failed", fields...)
	s.observe(outcome, duration)
}

func (s *ScrapeService) observe(outcome string, duration time.Duration) {
	if s.observer != nil {
		s.observer.ObserveScrape(outcome, duration)
	}
}

func outcomeOf(result *domain.ScrapeResult) string {
	if result.Found {
		return "found"
	}
	return "not_found"
}
