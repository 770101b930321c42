package domain

import "fmt"

// ErrorKind classifies pipeline failures.
type ErrorKind string

const (
	KindInputInvalid       ErrorKind = "INPUT_INVALID"
	KindBrowserUnavailable ErrorKind = "BROWSER_UNAVAILABLE"
	KindNavigationFailed   ErrorKind = "NAVIGATION_FAILED"
	KindLocatorTimeout     ErrorKind = "LOCATOR_TIMEOUT"
	KindSubmissionFailure  ErrorKind = "SUBMISSION_FAILURE"
	KindResultTimeout      ErrorKind = "RESULT_TIMEOUT"
	KindInternal           ErrorKind = "INTERNAL_ERROR"
)

// Stage names a step of the scrape pipeline.
type Stage string

const (
	StageInput    Stage = "input"
	StageSession  Stage = "session"
	StageNavigate Stage = "navigate"
	StageLocate   Stage = "locate"
	StageSubmit   Stage = "submit"
	StageAwait    Stage = "await"
	StageExtract  Stage = "extract"
)

// Sentinel errors for errors.Is checks. Matching is done on Kind only.
var (
	ErrInputInvalid       = &ScrapeError{Kind: KindInputInvalid}
	ErrBrowserUnavailable = &ScrapeError{Kind: KindBrowserUnavailable}
	ErrNavigationFailed   = &ScrapeError{Kind: KindNavigationFailed}
	ErrLocatorTimeout     = &ScrapeError{Kind: KindLocatorTimeout}
	ErrSubmissionFailure  = &ScrapeError{Kind: KindSubmissionFailure}
	ErrResultTimeout      = &ScrapeError{Kind: KindResultTimeout}
)

// ScrapeError is a pipeline failure tagged with its kind and stage.
type ScrapeError struct {
	Kind    ErrorKind
	Stage   Stage
	Message string
	// Snippet is a truncated copy of the page text, when one was captured.
	Snippet string
	Err     error
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(kind ErrorKind, stage Stage, message string, err error) *ScrapeError {
	return &ScrapeError{Kind: kind, Stage: stage, Message: message, Err: err}
}

// WithSnippet attaches a page text snippet and returns the same error.
func (e *ScrapeError) WithSnippet(snippet string) *ScrapeError {
	e.Snippet = snippet
	return e
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Is matches any ScrapeError of the same kind.
func (e *ScrapeError) Is(target error) bool {
	t, ok := target.(*ScrapeError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
