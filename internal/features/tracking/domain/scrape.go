package domain

import "strings"

// ScrapeRequest is a single lookup of a tracking code against the carrier page.
type ScrapeRequest struct {
	// TrackingCode is the trimmed, non-empty code typed into the search form.
	TrackingCode string
}

// NewScrapeRequest trims the raw caller input and rejects empty codes.
func NewScrapeRequest(raw string) (ScrapeRequest, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return ScrapeRequest{}, NewScrapeError(KindInputInvalid, StageInput, "tracking code is required", nil)
	}
	return ScrapeRequest{TrackingCode: code}, nil
}

// ExtractedFields holds the two values parsed out of the page text.
// A nil pointer means the field was not found.
type ExtractedFields struct {
	// Code is the bag/container identifier in canonical CB#/SACO# form.
	Code *string `json:"code"`
	// ReceivedDate is the D/M/YYYY date exactly as rendered by the page.
	ReceivedDate *string `json:"receivedDate"`
}

// Empty reports whether neither field was extracted.
func (f ExtractedFields) Empty() bool {
	return f.Code == nil && f.ReceivedDate == nil
}

// ScrapeResult is the payload returned to callers for a completed lookup.
type ScrapeResult struct {
	OK           bool    `json:"ok"`
	Found        bool    `json:"found"`
	Code         *string `json:"code"`
	ReceivedDate *string `json:"receivedDate"`
	// RawTextSnippet is only filled when snippets are enabled in config.
	RawTextSnippet string `json:"rawTextSnippet,omitempty"`
	// Cached is set when the result was served from the result cache.
	Cached bool `json:"cached,omitempty"`
}

// SubmitMechanism names the way the search form was submitted.
type SubmitMechanism string

const (
	SubmitViaButton SubmitMechanism = "button"
	SubmitViaForm   SubmitMechanism = "form"
	SubmitViaEnter  SubmitMechanism = "enter"
)

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
