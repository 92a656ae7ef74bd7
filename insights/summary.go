package insights

import (
	"context"
	"errors"
	"strings"

	"github.com/theimaginaryfoundation/audience-pulse/insights/fileutils"
	"github.com/theimaginaryfoundation/audience-pulse/insights/provider"
)

// SummaryFailurePrefix starts the narrative text when generation fails.
const SummaryFailurePrefix = "ERROR during LLM summarization: "

// Narrative is the executive summary text. On failure Text carries SummaryFailurePrefix and the
// cause, and Err is set; callers still write Text.
type Narrative struct {
	Text string
	Err  error
}

func (n Narrative) Failed() bool { return n.Err != nil }

// SummaryGenerator turns a KPIReport into prose with one model call.
type SummaryGenerator struct {
	completer provider.Completer
}

func NewSummaryGenerator(c provider.Completer) *SummaryGenerator {
	return &SummaryGenerator{completer: c}
}

// Summarize never returns an error: failures are folded into the Narrative.
func (g *SummaryGenerator) Summarize(ctx context.Context, report KPIReport) Narrative {
	if g == nil || g.completer == nil {
		return failedNarrative(errors.New("completer is nil"))
	}
	payload, err := fileutils.MarshalJSONIndent(report, "    ")
	if err != nil {
		return failedNarrative(err)
	}
	out, err := g.completer.Complete(ctx, provider.Request{
		System: summarySystemPrompt,
		User:   BuildSummaryPrompt(string(payload)),
		Format: provider.FormatText,
	})
	if err != nil {
		return failedNarrative(err)
	}
	text := strings.TrimSpace(out)
	if text == "" {
		return failedNarrative(provider.ErrEmptyResponse)
	}
	return Narrative{Text: text}
}

func failedNarrative(err error) Narrative {
	return Narrative{Text: SummaryFailurePrefix + err.Error(), Err: err}
}
