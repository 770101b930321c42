package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gel-tracker/internal/core/config"
	"gel-tracker/internal/core/logger"

	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"
)

// ErrNoExecutable is returned when no browser can be found or fetched.
var ErrNoExecutable = errors.New("no browser executable found")

// ExecutableResolver locates the browser binary: an explicit path first,
// then a system install, then an optional managed download.
type ExecutableResolver struct {
	cfg      config.BrowserConfig
	lookPath func() (string, bool)
	download func(ctx context.Context, dir string) (string, error)
	logger   *zap.Logger
}

// NewExecutableResolver creates a new ExecutableResolver.
func NewExecutableResolver(cfg config.BrowserConfig) *ExecutableResolver {
	return &ExecutableResolver{
		cfg:      cfg,
		lookPath: launcher.LookPath,
		download: downloadBrowser,
		logger:   logger.Get(),
	}
}

// Resolve returns the path of a runnable browser executable.
func (r *ExecutableResolver) Resolve(ctx context.Context) (string, error) {
	if r.cfg.Bin != "" {
		info, err := os.Stat(r.cfg.Bin)
		if err != nil {
			return "", fmt.Errorf("configured browser %s: %w", r.cfg.Bin, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("configured browser %s is a directory", r.cfg.Bin)
		}
		return r.cfg.Bin, nil
	}

	if path, ok := r.lookPath(); ok {
		return path, nil
	}

	if !r.cfg.Download {
		return "", fmt.Errorf("%w: set BROWSER_BIN or enable BROWSER_DOWNLOAD", ErrNoExecutable)
	}

	r.logger.Info("Downloading browser...", zap.String("dir", r.cfg.CacheDir))

	path, err := r.download(ctx, r.cfg.CacheDir)
	if err != nil {
		return "", fmt.Errorf("%w: download failed: %v", ErrNoExecutable, err)
	}
	return path, nil
}

func downloadBrowser(ctx context.Context, dir string) (string, error) {
	b := launcher.NewBrowser()
	b.Context = ctx
	if dir != "" {
		b.RootDir = dir
	}
	return b.Get()
}
