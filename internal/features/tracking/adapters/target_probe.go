package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gel-tracker/internal/core/logger"

	"go.uber.org/zap"
)

// searchFormMarker identifies the search form in the raw page markup.
const searchFormMarker = "gv-search"

// maxProbeBody caps how much of the page is read.
const maxProbeBody = 2 << 20

// ProbeReport describes a reachability check of the target page.
type ProbeReport struct {
	StatusCode    int  `json:"statusCode"`
	HasSearchForm bool `json:"hasSearchForm"`
}

// TargetProbe checks that the carrier page is reachable without a browser.
type TargetProbe struct {
	client    *http.Client
	targetURL string
	userAgent string
	logger    *zap.Logger
}

// NewTargetProbe creates a new TargetProbe.
func NewTargetProbe(client *http.Client, targetURL, userAgent string) *TargetProbe {
	return &TargetProbe{
		client:    client,
		targetURL: targetURL,
		userAgent: userAgent,
		logger:    logger.Get(),
	}
}

// Check fetches the target page once. A non-2xx status is an error.
// A page without the search form markup is reported but not an error,
// since the form may be rendered by script.
func (p *TargetProbe) Check(ctx context.Context) (*ProbeReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build probe request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("target unreachable: %w", err)
	}
	defer resp.Body.Close()

	report := &ProbeReport{StatusCode: resp.StatusCode}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return report, fmt.Errorf("target returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return report, fmt.Errorf("failed to read target page: %w", err)
	}
	report.HasSearchForm = strings.Contains(string(body), searchFormMarker)

	if !report.HasSearchForm {
		p.logger.Warn("Target page has no search form markup", zap.String("url", p.targetURL))
	}
	return report, nil
}
