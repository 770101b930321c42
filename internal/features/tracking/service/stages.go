package service

import (
	"context"
	"fmt"
	"time"

	"gel-tracker/internal/features/tracking/domain"
	"gel-tracker/internal/features/tracking/extractor"
	"gel-tracker/internal/features/tracking/ports"

	"go.uber.org/zap"
)

// SearchInputSelectors are tried in order; the form markup is generated by a
// form-builder plugin and has changed shape between releases.
var SearchInputSelectors = []string{
	`input[placeholder*="Tracking" i]`,
	`input[placeholder*="Rastreo" i]`,
	`input[type="search"]`,
	`input[name^="filter_"]`,
	`input[type="text"]`,
}

// OverlaySelectors cover cookie banners, popups and preloaders seen on the target.
var OverlaySelectors = []string{
	`#cookie-law-info-bar`,
	`.cli-modal-backdrop`,
	`#cmplz-cookiebanner-container`,
	`.cookie-notice-container`,
	`[id*="cookie" i]`,
	`[class*="cookie-banner" i]`,
	`[class*="popup" i][style*="fixed"]`,
	`.elementor-popup-modal`,
	`#preloader`,
	`.preloader`,
	`[class*="loader-wrapper" i]`,
}

// SubmitButtonTexts are the visible labels accepted for the search button.
var SubmitButtonTexts = []string{"search", "buscar"}

// snippetTimeout bounds the best-effort text capture done for diagnostics.
const snippetTimeout = 2 * time.Second

func (s *ScrapeService) navigate(ctx context.Context, page ports.Page, log *zap.Logger) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	if err := page.Navigate(navCtx, s.cfg.TargetURL); err != nil {
		return domain.NewScrapeError(domain.KindNavigationFailed, domain.StageNavigate,
			fmt.Sprintf("failed to load %s", s.cfg.TargetURL), err)
	}

	hideCtx, cancelHide := context.WithTimeout(ctx, s.cfg.PageTimeout)
	defer cancelHide()

	if err := page.HideOverlays(hideCtx, OverlaySelectors); err != nil {
		log.Debug("Overlay suppression skipped", zap.Error(err))
	}
	return nil
}

func (s *ScrapeService) locate(ctx context.Context, page ports.Page) (ports.Element, error) {
	locCtx, cancel := context.WithTimeout(ctx, s.cfg.LocatorTimeout)
	defer cancel()

	var input ports.Element
	err := pollUntil(locCtx, s.cfg.LocatorPoll, func(c context.Context) (bool, error) {
		el, err := page.FindVisible(c, SearchInputSelectors)
		if err != nil {
			return false, err
		}
		input = el
		return el != nil, nil
	})
	if err != nil {
		return nil, domain.NewScrapeError(domain.KindLocatorTimeout, domain.StageLocate,
			fmt.Sprintf("no visible search input within %s", s.cfg.LocatorTimeout), err).
			WithSnippet(s.snippet(ctx, page))
	}
	return input, nil
}

// submit types the code and submits it with the first mechanism that works:
// a search button, then the enclosing form, then the Enter key.
func (s *ScrapeService) submit(ctx context.Context, page ports.Page, input ports.Element, code string, log *zap.Logger) (domain.SubmitMechanism, error) {
	subCtx, cancel := context.WithTimeout(ctx, s.cfg.PageTimeout)
	defer cancel()

	if err := page.SelectAll(subCtx, input); err != nil {
		return "", domain.NewScrapeError(domain.KindSubmissionFailure, domain.StageSubmit, "failed to focus search input", err)
	}
	if err := page.TypeInto(subCtx, input, code, s.cfg.TypeDelay); err != nil {
		return "", domain.NewScrapeError(domain.KindSubmissionFailure, domain.StageSubmit, "failed to type tracking code", err)
	}

	button, err := page.FindButtonByText(subCtx, SubmitButtonTexts)
	if err != nil {
		log.Debug("Search button lookup failed", zap.Error(err))
	}
	if button != nil {
		err := page.Click(subCtx, button)
		if err == nil {
			return domain.SubmitViaButton, nil
		}
		log.Debug("Search button click failed", zap.String("element", button.Describe()), zap.Error(err))
	}

	submitted, err := page.SubmitForm(subCtx, input)
	if err == nil && submitted {
		return domain.SubmitViaForm, nil
	}
	if err != nil {
		log.Debug("Form submit failed", zap.Error(err))
	}

	if err := page.PressEnter(subCtx); err != nil {
		return "", domain.NewScrapeError(domain.KindSubmissionFailure, domain.StageSubmit, "no submission mechanism succeeded", err)
	}
	return domain.SubmitViaEnter, nil
}

// awaitResult waits for the settle delay, then polls the body text until it shows
// a result or the negative banner. It returns the text that satisfied the check.
func (s *ScrapeService) awaitResult(ctx context.Context, page ports.Page) (string, error) {
	if err := sleep(ctx, s.cfg.SettleDelay); err != nil {
		return "", domain.NewScrapeError(domain.KindResultTimeout, domain.StageAwait, "canceled while settling", err)
	}

	awaitCtx, cancel := context.WithTimeout(ctx, s.cfg.ResultTimeout)
	defer cancel()

	var text string
	err := pollUntil(awaitCtx, s.cfg.ResultPoll, func(c context.Context) (bool, error) {
		t, err := page.EvaluateText(c)
		if err != nil {
			return false, err
		}
		text = t
		return extractor.HasTerminalMarker(t), nil
	})
	if err != nil {
		return "", domain.NewScrapeError(domain.KindResultTimeout, domain.StageAwait,
			fmt.Sprintf("no result within %s", s.cfg.ResultTimeout), err).
			WithSnippet(domain.Truncate(text, s.cfg.SnippetLength))
	}
	return text, nil
}

// snippet captures the page text for diagnostics. Failures return "".
func (s *ScrapeService) snippet(ctx context.Context, page ports.Page) string {
	if ctx.Err() != nil {
		return ""
	}
	snipCtx, cancel := context.WithTimeout(ctx, snippetTimeout)
	defer cancel()

	text, err := page.EvaluateText(snipCtx)
	if err != nil {
		return ""
	}
	return domain.Truncate(text, s.cfg.SnippetLength)
}

// pollUntil calls check immediately and then every interval until it reports
// done or ctx expires. The last check error is attached to the timeout.
func pollUntil(ctx context.Context, interval time.Duration, check func(context.Context) (bool, error)) error {
	var lastErr error
	for {
		done, err := check(ctx)
		if err == nil && done {
			return nil
		}
		if err != nil {
			lastErr = err
		}

		if err := sleep(ctx, interval); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %v)", err, lastErr)
			}
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
