// Package sentiment classifies free-form text into a categorical label with
// a confidence score. The production implementation uses VADER, which works
// well on short social-media text without an external model server.
package sentiment

import (
	"math"
	"strings"

	"github.com/jonreiter/govader"

	errs "tokpulse/pkg/errors"
)

// Sentiment labels
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Compound score thresholds for labeling
const (
	positiveThreshold = 0.20
	negativeThreshold = -0.20
)

// Result is a classified label with a confidence score in [0,1]
type Result struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier converts text to a sentiment label and confidence score
type Classifier interface {
	Classify(text string) (Result, error)
}

// VADER implements Classifier using the VADER lexicon
type VADER struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVADER creates a VADER-backed classifier
func NewVADER() *VADER {
	return &VADER{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Classify scores the text. The confidence is the magnitude of the compound
// polarity for polarized labels, and the neutral proportion otherwise, so it
// always lands in [0,1].
func (v *VADER) Classify(text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{Label: LabelNeutral, Score: 1}, nil
	}

	scores := v.analyzer.PolarityScores(text)
	compound := scores.Compound
	if math.IsNaN(compound) {
		return Result{}, errs.Newf(errs.ErrorTypeClassifier, "polarity score is NaN for %q", text)
	}

	var result Result
	switch {
	case compound >= positiveThreshold:
		result = Result{Label: LabelPositive, Score: math.Abs(compound)}
	case compound <= negativeThreshold:
		result = Result{Label: LabelNegative, Score: math.Abs(compound)}
	default:
		result = Result{Label: LabelNeutral, Score: scores.Neutral}
	}

	if result.Score > 1 {
		result.Score = 1
	}
	if result.Score < 0 {
		result.Score = 0
	}

	return result, nil
}
