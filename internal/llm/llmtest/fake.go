// Package llmtest provides a scripted llm.StreamCompleter for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/tnglemongrass/blogwriter/internal/llm"
)

// Fake answers every request through Respond and records what it was asked.
// It is safe for concurrent use.
type Fake struct {
	Respond func(req llm.Request) (string, error)

	mu       sync.Mutex
	requests []llm.Request
	streamed int
}

// Complete returns a single-choice completion with Respond's text.
func (f *Fake) Complete(_ context.Context, req llm.Request) (*llm.Completion, error) {
	text, err := f.answer(req)
	if err != nil {
		return nil, err
	}
	reason := "stop"
	return &llm.Completion{
		ID:     "fake",
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []llm.Choice{{
			Message:      llm.Message{Role: llm.RoleAssistant, Content: text},
			FinishReason: &reason,
		}},
	}, nil
}

// CompleteStream delivers Respond's text in two fragments.
func (f *Fake) CompleteStream(_ context.Context, req llm.Request, cb llm.StreamCallback) (string, error) {
	text, err := f.answer(req)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.streamed++
	f.mu.Unlock()

	if cb != nil {
		r := []rune(text)
		for _, part := range []string{string(r[:len(r)/2]), string(r[len(r)/2:])} {
			if part != "" {
				cb(part)
			}
		}
	}
	return text, nil
}

// Requests returns a copy of every request seen so far, in arrival order.
func (f *Fake) Requests() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]llm.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Streamed reports how many requests went through CompleteStream.
func (f *Fake) Streamed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streamed
}

func (f *Fake) answer(req llm.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	respond := f.Respond
	f.mu.Unlock()

	if respond == nil {
		return "", nil
	}
	return respond(req)
}

// UserContent returns the content of the last user message in req.
func UserContent(req llm.Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == llm.RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

// SystemContent returns the content of the first system message in req.
func SystemContent(req llm.Request) string {
	for _, m := range req.Messages {
		if m.Role == llm.RoleSystem {
			return m.Content
		}
	}
	return ""
}
