package insights

import (
	"context"
	"errors"
	"fmt"

	"github.com/theimaginaryfoundation/audience-pulse/insights/fileutils"
	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
	"github.com/tidwall/gjson"
)

var errNotObject = errors.New("model output is not a JSON object")

// analysisEnvelope is the shape requested from the model. Provenance fields are echoed back
// but the record's own values win.
type analysisEnvelope struct {
	PostID   string   `json:"post_id"`
	Comment  string   `json:"comment"`
	Analysis Analysis `json:"analysis"`
}

var analysisSchema = provider.GenerateSchema[analysisEnvelope]()

// Analyzer turns one Record into one AnalysisResult with a single model call. It never retries.
type Analyzer struct {
	completer provider.Completer
}

func NewAnalyzer(c provider.Completer) *Analyzer {
	return &Analyzer{completer: c}
}

// Analyze returns *AnalysisError for both service failures and unusable output.
func (a *Analyzer) Analyze(ctx context.Context, rec Record) (AnalysisResult, error) {
	if a == nil || a.completer == nil {
		return AnalysisResult{}, errors.New("Analyze: completer is nil")
	}
	out, err := a.completer.Complete(ctx, provider.Request{
		System:     analysisSystemPrompt,
		User:       BuildAnalysisPrompt(rec),
		Format:     provider.FormatJSONObject,
		Schema:     analysisSchema,
		SchemaName: "comment_analysis",
	})
	if err != nil {
		return AnalysisResult{}, &AnalysisError{Kind: ServiceFailure, PostID: rec.ID, Class: provider.Classify(err), Err: err}
	}
	return parseAnalysisOutput(rec, out)
}

func parseAnalysisOutput(rec Record, out string) (AnalysisResult, error) {
	raw, err := fileutils.ExtractModelJSON(out)
	if err != nil {
		return AnalysisResult{}, &AnalysisError{Kind: MalformedOutput, PostID: rec.ID, Err: fmt.Errorf("extract json: %w (output=%q)", err, fileutils.Truncate(out, 200))}
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return AnalysisResult{}, &AnalysisError{Kind: MalformedOutput, PostID: rec.ID, Err: errNotObject}
	}

	node := doc.Get("analysis")
	if !node.IsObject() && doc.Get("sentiment").Exists() {
		// Some models drop the envelope and return the analysis fields at top level.
		node = doc
	}
	return AnalysisResult{
		PostID:   rec.ID,
		Comment:  rec.Comment,
		Analysis: ParseAnalysis(node),
		Language: DetectLanguage(rec.Comment),
	}, nil
}
