// Package classify decides whether a request could have been served by
// cheaper local inference instead of a premium API.
package classify

import (
	"fmt"
	"strings"

	"github.com/rmirandamx/agentspend/internal/model"
)

// Record is the classifier's view of one parsed message. The caller sets
// HasMessage/HasUsage false when the corresponding block was absent.
type Record struct {
	HasMessage     bool
	HasUsage       bool
	InputTokens    int64
	ThinkingTokens int64
	ToolsCount     int
	PromptText     string
}

// Classifier is a pure, stateless classification strategy. Alternate
// keyword policies can be swapped in for testing without touching I/O.
type Classifier struct {
	localKeywords   []string
	premiumKeywords []string
}

// defaultLocalKeywords mark work a small local model handles well:
// transcription, extraction, formatting, simple triage.
var defaultLocalKeywords = []string{
	"transcribe", "audio", "foto", "extract", "triage",
	"categorize", "clasificar", "resumen", "parse",
	"diagnóstico simple", "simple summary", "format", "convert",
}

// defaultPremiumKeywords mark work that needs frontier-model capability.
var defaultPremiumKeywords = []string{
	"debug", "architecture", "design", "refactor", "code-review",
	"reasoning", "agentic", "loop", "complex", "orchestration",
}

// New returns a classifier with the default keyword sets.
func New() *Classifier {
	return &Classifier{
		localKeywords:   defaultLocalKeywords,
		premiumKeywords: defaultPremiumKeywords,
	}
}

// NewWithKeywords returns a classifier with caller-supplied keyword sets.
func NewWithKeywords(local, premium []string) *Classifier {
	return &Classifier{localKeywords: local, premiumKeywords: premium}
}

// Classify maps a record to a classification label and a reasoning string
// that encodes the deciding factors. Deterministic; rule order is a designed
// tie-break: the premium rule always wins over the local-viable rule.
func (c *Classifier) Classify(rec Record) (model.Classification, string) {
	if !rec.HasMessage {
		return model.Unknown, "missing message data"
	}
	if !rec.HasUsage {
		return model.Unknown, "missing usage data"
	}

	prompt := strings.ToLower(rec.PromptText)
	hasLocal := containsAny(prompt, c.localKeywords)
	hasPremium := containsAny(prompt, c.premiumKeywords)
	hasThinking := rec.ThinkingTokens > 0

	switch {
	case rec.ToolsCount >= 3 || hasPremium || hasThinking:
		return model.NeedsClaude,
			fmt.Sprintf("tools=%d, complex=%t, thinking=%t", rec.ToolsCount, hasPremium, hasThinking)

	case rec.InputTokens < 4000 && rec.ToolsCount == 0 && hasLocal:
		return model.LocalViable,
			fmt.Sprintf("input=%d<4k, no tools, local keywords present", rec.InputTokens)

	case rec.InputTokens <= 8000 && rec.ToolsCount <= 2:
		return model.EdgeCase,
			fmt.Sprintf("input=%d, tools=%d, ambiguous", rec.InputTokens, rec.ToolsCount)

	case rec.InputTokens < 4000 && rec.ToolsCount == 0:
		return model.LocalViable,
			fmt.Sprintf("input=%d<4k, simple request, no tools", rec.InputTokens)

	default:
		return model.EdgeCase,
			fmt.Sprintf("default: input=%d, tools=%d", rec.InputTokens, rec.ToolsCount)
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
