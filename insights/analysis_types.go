package insights

import (
	"errors"

	"github.com/tidwall/gjson"
)

// Canonical tone labels. Anything else the model returns is tallied as-is.
const (
	TonePositive = "Positive"
	ToneNegative = "Negative"
	ToneNeutral  = "Neutral"
	ToneMixed    = "Mixed"
)

type Breakdown struct {
	PositivePercent float64 `json:"positive_percent"`
	NegativePercent float64 `json:"negative_percent"`
	NeutralPercent  float64 `json:"neutral_percent"`
}

type Sentiment struct {
	OverallTone string    `json:"overall_tone" jsonschema:"enum=Positive,enum=Negative,enum=Neutral,enum=Mixed"`
	Breakdown   Breakdown `json:"breakdown"`
	Commentary  string    `json:"commentary"`
}

type ViewerQuestion struct {
	Question string `json:"question"`
	Type     string `json:"type"`
}

type KeyFeedback struct {
	Type    string `json:"type"`
	Summary string `json:"summary"`
	// EmotionWords are quoted from the original comment, untranslated.
	EmotionWords []string `json:"emotion_words"`
}

// Analysis is the structured judgment for one comment. Every field may be missing in model
// output; missing values decode to their zero value.
type Analysis struct {
	Sentiment          Sentiment        `json:"sentiment"`
	ThemesAndTopics    []string         `json:"themes_and_topics"`
	ViewerQuestions    []ViewerQuestion `json:"viewer_questions"`
	KeyFeedback        KeyFeedback      `json:"key_feedback"`
	ActionableInsights []string         `json:"actionable_insights"`
}

// AnalysisResult pairs an Analysis with the record it was produced for.
type AnalysisResult struct {
	PostID   string   `json:"post_id"`
	Comment  string   `json:"comment"`
	Analysis Analysis `json:"analysis"`
	Language string   `json:"language,omitempty"`
}

// ParseAnalysis reads an analysis object tolerantly: absent, null, or mistyped fields become
// empty values instead of errors.
func ParseAnalysis(v gjson.Result) Analysis {
	s := v.Get("sentiment")
	a := Analysis{
		Sentiment: Sentiment{
			OverallTone: scalarString(s.Get("overall_tone")),
			Breakdown: Breakdown{
				PositivePercent: s.Get("breakdown.positive_percent").Float(),
				NegativePercent: s.Get("breakdown.negative_percent").Float(),
				NeutralPercent:  s.Get("breakdown.neutral_percent").Float(),
			},
			Commentary: scalarString(s.Get("commentary")),
		},
		ThemesAndTopics: stringList(v.Get("themes_and_topics")),
		ViewerQuestions: []ViewerQuestion{},
		KeyFeedback: KeyFeedback{
			Type:         scalarString(v.Get("key_feedback.type")),
			Summary:      scalarString(v.Get("key_feedback.summary")),
			EmotionWords: stringList(v.Get("key_feedback.emotion_words")),
		},
		ActionableInsights: stringList(v.Get("actionable_insights")),
	}
	if q := v.Get("viewer_questions"); q.IsArray() {
		q.ForEach(func(_, item gjson.Result) bool {
			switch {
			case item.IsObject():
				a.ViewerQuestions = append(a.ViewerQuestions, ViewerQuestion{
					Question: scalarString(item.Get("question")),
					Type:     scalarString(item.Get("type")),
				})
			case item.Type == gjson.String:
				a.ViewerQuestions = append(a.ViewerQuestions, ViewerQuestion{Question: item.String()})
			}
			return true
		})
	}
	return a
}

// DecodeAnalysisResults reads a persisted result list. Entries that are not objects are
// skipped and counted; entries with missing fields keep them empty.
func DecodeAnalysisResults(data []byte) (results []AnalysisResult, skipped int, err error) {
	if !gjson.ValidBytes(data) {
		return nil, 0, &MalformedSourceError{Source: "analysis results", Err: errors.New("invalid JSON")}
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, 0, &MalformedSourceError{Source: "analysis results", Err: errors.New("top-level value is not an array")}
	}
	results = []AnalysisResult{}
	root.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			skipped++
			return true
		}
		results = append(results, AnalysisResult{
			PostID:   scalarString(item.Get("post_id")),
			Comment:  scalarString(item.Get("comment")),
			Analysis: ParseAnalysis(item.Get("analysis")),
			Language: scalarString(item.Get("language")),
		})
		return true
	})
	return results, skipped, nil
}

func scalarString(v gjson.Result) string {
	switch v.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		return v.String()
	default:
		return ""
	}
}

func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.IsArray() {
		return out
	}
	v.ForEach(func(_, item gjson.Result) bool {
		switch item.Type {
		case gjson.String, gjson.Number:
			out = append(out, item.String())
		}
		return true
	})
	return out
}
