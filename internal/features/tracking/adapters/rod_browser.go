package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"gel-tracker/internal/core/config"
	"gel-tracker/internal/core/logger"
	"gel-tracker/internal/core/proxy"
	"gel-tracker/internal/features/tracking/ports"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
	"go.uber.org/zap"
)

// containerFlags keep Chromium stable inside minimal containers.
var containerFlags = []flags.Flag{
	"disable-setuid-sandbox",
	"disable-dev-shm-usage",
	"disable-gpu",
	"no-first-run",
	"no-zygote",
}

// RodLauncher starts a fresh Chromium process per lookup.
type RodLauncher struct {
	browserCfg     config.BrowserConfig
	userAgent      string
	acceptLanguage string
	targetHost     string
	proxy          proxy.Settings
	logger         *zap.Logger
}

// NewRodLauncher creates a new RodLauncher.
func NewRodLauncher(browserCfg config.BrowserConfig, scrapeCfg config.ScrapeConfig, proxySettings proxy.Settings) *RodLauncher {
	targetHost := ""
	if u, err := url.Parse(scrapeCfg.TargetURL); err == nil {
		targetHost = u.Hostname()
	}
	return &RodLauncher{
		browserCfg:     browserCfg,
		userAgent:      scrapeCfg.UserAgent,
		acceptLanguage: scrapeCfg.AcceptLanguage,
		targetHost:     targetHost,
		proxy:          proxySettings,
		logger:         logger.Get(),
	}
}

// Launch starts executable and connects to it.
func (l *RodLauncher) Launch(ctx context.Context, executable string) (ports.Browser, error) {
	// Chromium cannot authenticate against a proxy from the command line,
	// so credentials go through a local forwarder. Only the target host is
	// tunneled; third-party assets go direct.
	var forwarder *proxy.ForwardingProxy
	proxyAddr := ""
	if l.proxy.HasCredentials() {
		var err error
		forwarder, err = proxy.NewForwardingProxy(l.proxy.FullURL(), l.targetHost)
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy forwarder: %w", err)
		}
		proxyAddr, err = forwarder.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to start proxy forwarder: %w", err)
		}
	} else if l.proxy.HasProxy() {
		proxyAddr = l.proxy.HostPort()
	}

	l.logger.Debug("Launching browser...",
		zap.String("executable", executable),
		zap.Bool("headless", l.browserCfg.Headless),
		zap.Bool("proxy_enabled", proxyAddr != ""),
	)

	ln := l.newLauncher(ctx, executable, proxyAddr)

	u, err := ln.Launch()
	if err != nil {
		stopForwarder(forwarder)
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		ln.Kill()
		ln.Cleanup()
		stopForwarder(forwarder)
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &RodBrowser{
		browser:        browser,
		launcher:       ln,
		forwarder:      forwarder,
		userAgent:      l.userAgent,
		acceptLanguage: l.acceptLanguage,
		stealth:        l.browserCfg.Stealth,
		blockResources: l.browserCfg.BlockResources,
		logger:         l.logger,
	}, nil
}

func (l *RodLauncher) newLauncher(ctx context.Context, executable, proxyAddr string) *launcher.Launcher {
	ln := launcher.New().
		Context(ctx).
		Bin(executable).
		Headless(l.browserCfg.Headless).
		NoSandbox(true)

	for _, f := range containerFlags {
		ln.Set(f)
	}
	ln.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	ln.Delete(flags.Flag("enable-automation"))

	if proxyAddr != "" {
		ln.Proxy(proxyAddr)
	}
	return ln
}

// RodBrowser owns one browser process and everything started for it.
type RodBrowser struct {
	browser        *rod.Browser
	launcher       *launcher.Launcher
	forwarder      *proxy.ForwardingProxy
	userAgent      string
	acceptLanguage string
	stealth        bool
	blockResources bool
	logger         *zap.Logger

	mu      sync.Mutex
	routers []*rod.HijackRouter
	closed  bool
}

// NewPage opens a blank tab with the identity headers, stealth script and
// resource blocking applied.
func (b *RodBrowser) NewPage(ctx context.Context) (ports.Page, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}

	if b.stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			b.logger.Warn("Stealth injection failed, proceeding without stealth", zap.Error(err))
		}
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      b.userAgent,
		AcceptLanguage: b.acceptLanguage,
	}); err != nil {
		return nil, fmt.Errorf("failed to set user agent: %w", err)
	}

	if b.acceptLanguage != "" {
		err := proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{"Accept-Language": gson.New(b.acceptLanguage)},
		}.Call(page)
		if err != nil {
			return nil, fmt.Errorf("failed to set request headers: %w", err)
		}
	}

	if b.blockResources {
		router, err := blockResources(page)
		if err != nil {
			return nil, fmt.Errorf("failed to install request interceptor: %w", err)
		}
		b.mu.Lock()
		b.routers = append(b.routers, router)
		b.mu.Unlock()
	}

	return &RodPage{page: page}, nil
}

// Close stops interceptors, closes the browser, kills the process and
// removes its profile directory. It is safe to call more than once.
func (b *RodBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	for _, router := range b.routers {
		if err := router.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop interceptor: %w", err))
		}
	}

	if err := b.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	b.launcher.Kill()
	b.launcher.Cleanup()

	if b.forwarder != nil {
		if err := b.forwarder.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop proxy forwarder: %w", err))
		}
	}

	return errors.Join(errs...)
}

func stopForwarder(fp *proxy.ForwardingProxy) {
	if fp != nil {
		_ = fp.Stop()
	}
}
