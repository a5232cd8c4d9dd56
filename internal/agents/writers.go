package agents

import (
	"context"

	"github.com/tnglemongrass/blogwriter/internal/llm"
	"github.com/tnglemongrass/blogwriter/internal/prompts"
)

// ContentAgent drafts a single section.
type ContentAgent struct {
	base
}

// NewContentAgent creates a ContentAgent backed by c.
func NewContentAgent(c llm.Completer, opts Options) *ContentAgent {
	return &ContentAgent{base: newBase("content", c, opts)}
}

// GenerateContent returns the model's text verbatim, or "" on failure.
func (a *ContentAgent) GenerateContent(ctx context.Context, sectionTitle, referenceText, writingPrompt string, temperature float64, model string) string {
	return a.call(ctx, prompts.ContentSystemPrompt, prompts.ContentUserPrompt(sectionTitle, referenceText, writingPrompt), temperature, model)
}

// PolishAgent revises a drafted section against the reference text, using
// the already polished sections before it for continuity.
type PolishAgent struct {
	base
}

// NewPolishAgent creates a PolishAgent backed by c.
func NewPolishAgent(c llm.Completer, opts Options) *PolishAgent {
	return &PolishAgent{base: newBase("polish", c, opts)}
}

// PolishContent returns the model's text verbatim, or "" on failure.
func (a *PolishAgent) PolishContent(ctx context.Context, priorContext, sectionDraft, referenceText string, temperature float64, model string) string {
	return a.call(ctx, prompts.PolishSystemPrompt, prompts.PolishUserPrompt(priorContext, sectionDraft, referenceText), temperature, model)
}
