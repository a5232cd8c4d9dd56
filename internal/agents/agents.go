// Package agents wraps an LLM completer with the three writing roles: outline
// planning, section drafting and polishing. Agents hold no state between
// calls. A failed call never escapes an agent; it is logged and surfaces as
// empty output so a run degrades instead of aborting.
package agents

import (
	"context"
	"log/slog"

	"github.com/tnglemongrass/blogwriter/internal/llm"
)

// Default model and per-stage sampling temperatures.
const (
	DefaultModel              = "deepseek-chat"
	DefaultOutlineTemperature = 0.5
	DefaultContentTemperature = 0.3
	DefaultPolishTemperature  = 0.3
)

// Options tune how agents talk to the model.
type Options struct {
	// MaxTokens caps each completion when non-nil.
	MaxTokens *int
	// Stream requests streamed completions when the completer supports it.
	Stream bool
	// OnDelta receives streamed fragments.
	OnDelta llm.StreamCallback
	Logger  *slog.Logger
}

type base struct {
	name string
	llm  llm.Completer
	opts Options
}

func newBase(name string, c llm.Completer, opts Options) base {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return base{name: name, llm: c, opts: opts}
}

// call sends a system+user pair and returns the first choice's text, or ""
// on any failure.
func (b base) call(ctx context.Context, system, user string, temperature float64, model string) string {
	req := llm.Request{
		Model:       model,
		Messages:    []llm.Message{llm.SystemMessage(system), llm.UserMessage(user)},
		Temperature: temperature,
		MaxTokens:   b.opts.MaxTokens,
	}
	log := b.opts.Logger.With("agent", b.name, "model", model)

	if sc, ok := b.llm.(llm.StreamCompleter); ok && b.opts.Stream {
		text, err := sc.CompleteStream(ctx, req, b.opts.OnDelta)
		if err != nil {
			logFailure(log, err)
			return ""
		}
		return text
	}

	resp, err := b.llm.Complete(ctx, req)
	if err != nil {
		logFailure(log, err)
		return ""
	}
	if len(resp.Choices) == 0 {
		log.Warn("completion returned no choices")
		return ""
	}
	return resp.Text()
}

func logFailure(log *slog.Logger, err error) {
	kind, _ := llm.KindOf(err)
	log.Error("error calling llm", "kind", kind.String(), "error", err)
}
