package captions

import (
	"github.com/RadhiFadlillah/whatlanggo"

	"ytscribe/internal/language"
)

// WhatlangDetector detects caption sample languages with whatlanggo's
// trigram profiles. It needs no model files, so presence is a compile-time
// fact; unreliable detections still report ok=false.
type WhatlangDetector struct{}

// NewWhatlangDetector returns the default language detection capability.
func NewWhatlangDetector() *WhatlangDetector {
	return &WhatlangDetector{}
}

// DetectLanguage implements Detector, reporting an ISO 639-1 code.
func (d *WhatlangDetector) DetectLanguage(sample string) (string, bool) {
	if sample == "" {
		return "", false
	}
	info := whatlanggo.Detect(sample)
	if !info.IsReliable() {
		return "", false
	}
	code := language.ToISO2(whatlanggo.LangToString(info.Lang))
	if code == "" {
		return "", false
	}
	return code, true
}
