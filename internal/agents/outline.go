package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/tnglemongrass/blogwriter/internal/llm"
	"github.com/tnglemongrass/blogwriter/internal/prompts"
)

// ErrOutlineFormat is returned by ParseOutline when the response does not
// have the expected structure.
var ErrOutlineFormat = errors.New("outline response not in expected format")

// OutlineAgent plans the article: section titles plus one writing prompt each.
type OutlineAgent struct {
	base
}

// NewOutlineAgent creates an OutlineAgent backed by c.
func NewOutlineAgent(c llm.Completer, opts Options) *OutlineAgent {
	return &OutlineAgent{base: newBase("outline", c, opts)}
}

// GenerateOutline returns parallel lists of section titles and writing
// prompts. On any failure both lists are empty.
func (a *OutlineAgent) GenerateOutline(ctx context.Context, referenceText, style string, temperature float64, model string) (sections, writingPrompts []string) {
	raw := a.call(ctx, prompts.OutlineSystemPrompt, prompts.OutlineUserPrompt(style, referenceText), temperature, model)

	sections, writingPrompts, err := ParseOutline(raw)
	if err != nil {
		a.opts.Logger.Error("error parsing outline", "agent", a.name, "error", err)
		return []string{}, []string{}
	}
	return sections, writingPrompts
}

// ParseOutline splits raw on the writing-prompt header. Everything after the
// outline header in the first part is the outline block and everything after
// the split is the prompts block. Within a block only lines starting with a
// digit are kept, minus their "N. " marker.
func ParseOutline(raw string) (sections, writingPrompts []string, err error) {
	parts := strings.Split(raw, prompts.WritingPromptHeader)
	if len(parts) < 2 {
		return nil, nil, fmt.Errorf("%w: missing %q header", ErrOutlineFormat, prompts.WritingPromptHeader)
	}
	_, outlineBlock, ok := strings.Cut(parts[0], prompts.OutlineHeader)
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing %q header", ErrOutlineFormat, prompts.OutlineHeader)
	}

	sections = numberedItems(outlineBlock)
	writingPrompts = numberedItems(parts[1])
	if len(sections) == 0 && len(writingPrompts) == 0 {
		return nil, nil, fmt.Errorf("%w: no numbered items", ErrOutlineFormat)
	}
	return sections, writingPrompts, nil
}

func numberedItems(block string) []string {
	items := []string{}
	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r := []rune(line)
		if !unicode.IsDigit(r[0]) {
			continue
		}
		if len(r) <= 3 {
			items = append(items, "")
			continue
		}
		items = append(items, strings.TrimSpace(string(r[3:])))
	}
	return items
}
