// Package extract pulls the single description text out of a generateContent
// reply and derives its display confidence.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/buger/jsonparser"

	"github.com/satriahrh/snapspeak/domain/entities"
)

var descriptionPath = []string{"candidates", "[0]", "content", "parts", "[0]", "text"}

// Description returns candidates[0].content.parts[0].text. The second result
// is false when any link of the path is missing or has the wrong shape, the
// body is not JSON, or the text is blank.
func Description(resp *entities.AnalysisResponse) (string, bool) {
	if resp == nil {
		return "", false
	}
	return DescriptionFromJSON(resp.Raw)
}

// DescriptionFromJSON is Description over a raw response body.
func DescriptionFromJSON(raw []byte) (text string, ok bool) {
	if len(raw) == 0 {
		return "", false
	}
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	value, err := jsonparser.GetString(raw, descriptionPath...)
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

const (
	confidenceBase = 40
	confidenceSpan = 60
	confidenceMax  = 95
)

// Confidence is a display placeholder derived from the text length, not a
// model probability: min(95, 40 + len % 60) with len counted in runes.
func Confidence(text string) float64 {
	value := confidenceBase + utf8.RuneCountInString(text)%confidenceSpan
	if value > confidenceMax {
		value = confidenceMax
	}
	return float64(value)
}
