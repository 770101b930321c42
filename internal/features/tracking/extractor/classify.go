package extractor

import "gel-tracker/internal/features/tracking/domain"

// BannerPolicy decides how the negative-result banner interacts with extracted fields.
type BannerPolicy int

const (
	// BannerOverridable treats the banner as stale UI text whenever a field was extracted.
	BannerOverridable BannerPolicy = iota
	// BannerAuthoritative reports found=false whenever the banner is shown.
	BannerAuthoritative
)

// Classify builds the caller-facing result from the extracted fields.
func Classify(fields domain.ExtractedFields, banner bool, policy BannerPolicy) domain.ScrapeResult {
	found := !fields.Empty()
	if banner && policy == BannerAuthoritative {
		found = false
	}

	return domain.ScrapeResult{
		OK:           true,
		Found:        found,
		Code:         fields.Code,
		ReceivedDate: fields.ReceivedDate,
	}
}

// Analyze runs extraction and classification over a raw page text snapshot.
func Analyze(text string, policy BannerPolicy) domain.ScrapeResult {
	normalized := Normalize(text)
	return Classify(ExtractFields(normalized), HasNegativeBanner(normalized), policy)
}
