package pipeline

import (
	"errors"
	"fmt"
)

// PromptPolicy decides what happens when the outline and writing-prompt
// lists differ in length.
type PromptPolicy string

const (
	// PolicyTruncate pairs items up to the shorter list and drops the rest.
	PolicyTruncate PromptPolicy = "truncate"
	// PolicyBackfill keeps every section and gives sections without a prompt
	// the default prompt. Surplus prompts are dropped.
	PolicyBackfill PromptPolicy = "backfill"
	// PolicyStrict fails the run before drafting.
	PolicyStrict PromptPolicy = "strict"
)

// DefaultWritingPrompt is used by PolicyBackfill when none is configured.
const DefaultWritingPrompt = "围绕本节标题，结合参考文本展开论述。"

// ErrOutlineMismatch is returned under PolicyStrict.
var ErrOutlineMismatch = errors.New("outline and writing prompts differ in length")

// ParsePromptPolicy validates a policy name. An empty name means truncate.
func ParsePromptPolicy(s string) (PromptPolicy, error) {
	switch p := PromptPolicy(s); p {
	case "":
		return PolicyTruncate, nil
	case PolicyTruncate, PolicyBackfill, PolicyStrict:
		return p, nil
	default:
		return "", fmt.Errorf("unknown prompt policy %q (want truncate, backfill or strict)", s)
	}
}

// pair builds the section list from the outline according to policy.
func pair(titles, writingPrompts []string, policy PromptPolicy, defaultPrompt string) ([]Section, error) {
	n := min(len(titles), len(writingPrompts))
	switch policy {
	case PolicyStrict:
		if len(titles) != len(writingPrompts) {
			return nil, fmt.Errorf("%w: %d sections, %d prompts", ErrOutlineMismatch, len(titles), len(writingPrompts))
		}
	case PolicyBackfill:
		n = len(titles)
		if defaultPrompt == "" {
			defaultPrompt = DefaultWritingPrompt
		}
	}

	sections := make([]Section, 0, n)
	for i := 0; i < n; i++ {
		s := Section{Title: titles[i], WritingPrompt: defaultPrompt}
		if i < len(writingPrompts) {
			s.WritingPrompt = writingPrompts[i]
		}
		sections = append(sections, s)
	}
	return sections, nil
}
