package insights

import (
	"encoding/json"
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	// ToneUnknown buckets results whose tone is missing, so tone counts always sum to the total.
	ToneUnknown = "Unknown"
	// FeedbackUnknown buckets results whose feedback type is missing.
	FeedbackUnknown = "Unknown"

	// EmptyReportMessage is the sentinel error text for a report over zero results.
	EmptyReportMessage = "no comments analyzed"

	topThemeLimit = 5
)

var characterThemes = []string{"Characterization", "Character Analysis"}

// CountPair is a label with its count. It serializes as a two-element array.
type CountPair struct {
	Label string
	Count int
}

func (p CountPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Label, p.Count})
}

func (p *CountPair) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("CountPair: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &p.Label); err != nil {
		return fmt.Errorf("CountPair label: %w", err)
	}
	if err := json.Unmarshal(pair[1], &p.Count); err != nil {
		return fmt.Errorf("CountPair count: %w", err)
	}
	return nil
}

type SentimentKPI struct {
	OverallPositiveRate string `json:"Overall_Positive_Rate"`
	// ToneDistribution keeps tones in first-seen order; values are percent strings.
	ToneDistribution *orderedmap.OrderedMap[string, string] `json:"Tone_Distribution"`
	PositiveCount    int                                    `json:"Positive_Count"`
	NegativeCount    int                                    `json:"Negative_Count"`
	NeutralCount     int                                    `json:"Neutral_Count"`
	MixedCount       int                                    `json:"Mixed_Count"`
}

// KPIReport is the aggregate over a set of analysis results. A report over zero results
// carries only Error and serializes as {"Error": ...}.
type KPIReport struct {
	Error                    string       `json:"Error,omitempty"`
	TotalAnalyzed            int          `json:"Total Comments Analyzed"`
	Sentiment                SentimentKPI `json:"Sentiment Analysis"`
	TopThemes                []CountPair  `json:"Top Themes & Topics"`
	CharacterFocusRate       string       `json:"Character_Focus_Rate"`
	ViewerCuriosityVolume    int          `json:"Viewer_Curiosity_Volume"`
	FeedbackTypeDistribution []CountPair  `json:"Feedback_Type_Distribution"`
	TotalActionableInsights  int          `json:"Total_Actionable_Insights"`
}

type kpiReportJSON KPIReport

// MarshalJSON writes the zero-input sentinel as {"Error": ...}. The "Top Themes & Topics" key
// keeps its '&' only when the caller encodes with HTML escaping off, as fileutils does.
func (r KPIReport) MarshalJSON() ([]byte, error) {
	if r.IsEmpty() {
		return json.Marshal(map[string]string{"Error": r.Error})
	}
	return json.Marshal(kpiReportJSON(r))
}

func (r *KPIReport) UnmarshalJSON(data []byte) error {
	var aux kpiReportJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = KPIReport(aux)
	return nil
}

// IsEmpty reports whether r is the zero-input sentinel.
func (r KPIReport) IsEmpty() bool { return r.Error != "" }

// Aggregate computes the KPI report. It is pure: identical input yields an identical report.
func Aggregate(results []AnalysisResult) KPIReport {
	total := len(results)
	if total == 0 {
		return KPIReport{Error: EmptyReportMessage}
	}

	tones := newTally()
	themes := newTally()
	feedback := newTally()
	questions, insights := 0, 0
	for _, res := range results {
		a := res.Analysis
		tone := a.Sentiment.OverallTone
		if tone == "" {
			tone = ToneUnknown
		}
		tones.add(tone)
		for _, t := range a.ThemesAndTopics {
			themes.add(t)
		}
		questions += len(a.ViewerQuestions)
		ft := a.KeyFeedback.Type
		if ft == "" {
			ft = FeedbackUnknown
		}
		feedback.add(ft)
		insights += len(a.ActionableInsights)
	}

	dist := orderedmap.New[string, string]()
	for _, tone := range tones.order {
		dist.Set(tone, percent(tones.counts[tone], total))
	}
	characterMentions := 0
	for _, t := range characterThemes {
		characterMentions += themes.counts[t]
	}

	return KPIReport{
		TotalAnalyzed: total,
		Sentiment: SentimentKPI{
			OverallPositiveRate: percent(tones.counts[TonePositive], total),
			ToneDistribution:    dist,
			PositiveCount:       tones.counts[TonePositive],
			NegativeCount:       tones.counts[ToneNegative],
			NeutralCount:        tones.counts[ToneNeutral],
			MixedCount:          tones.counts[ToneMixed],
		},
		TopThemes:                themes.mostCommon(topThemeLimit),
		CharacterFocusRate:       percent(characterMentions, total),
		ViewerCuriosityVolume:    questions,
		FeedbackTypeDistribution: feedback.mostCommon(0),
		TotalActionableInsights:  insights,
	}
}

func percent(count, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(count)/float64(total)*100)
}

// tally counts labels and remembers first-seen order for tie-breaking.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: map[string]int{}}
}

func (t *tally) add(label string) {
	if _, ok := t.counts[label]; !ok {
		t.order = append(t.order, label)
	}
	t.counts[label]++
}

// mostCommon returns up to n pairs by descending count, ties in first-seen order. n <= 0 returns all.
func (t *tally) mostCommon(n int) []CountPair {
	out := make([]CountPair, 0, len(t.order))
	for _, label := range t.order {
		out = append(out, CountPair{Label: label, Count: t.counts[label]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
