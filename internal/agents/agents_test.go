package agents

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnglemongrass/blogwriter/internal/llm"
	"github.com/tnglemongrass/blogwriter/internal/llm/llmtest"
	"github.com/tnglemongrass/blogwriter/internal/prompts"
)

const stubOutline = "大纲：\n1. Intro\n2. Body\n3. Conclusion\n\n写作提示：\n1. p1\n2. p2\n3. p3"

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestParseOutline(t *testing.T) {
	sections, writingPrompts, err := ParseOutline(stubOutline)
	require.NoError(t, err)
	assert.Equal(t, []string{"Intro", "Body", "Conclusion"}, sections)
	assert.Equal(t, []string{"p1", "p2", "p3"}, writingPrompts)
}

func TestParseOutlineIgnoresProse(t *testing.T) {
	raw := "好的，以下是大纲。\n大纲：\n  1. 背景介绍\n说明文字\n2. 核心方法\n\n写作提示：\n1. 介绍背景\n- 不是编号\n2. 讲清方法\n"
	sections, writingPrompts, err := ParseOutline(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"背景介绍", "核心方法"}, sections)
	assert.Equal(t, []string{"介绍背景", "讲清方法"}, writingPrompts)
}

func TestParseOutlineTwoDigitMarker(t *testing.T) {
	raw := "大纲：\n10. Ten\n\n写作提示：\n10. ten prompt"
	sections, writingPrompts, err := ParseOutline(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ten"}, sections)
	assert.Equal(t, []string{"ten prompt"}, writingPrompts)
}

func TestParseOutlineFailures(t *testing.T) {
	tests := map[string]string{
		"empty":              "",
		"no prompts header":  "大纲：\n1. Intro\n2. Body",
		"no outline header":  "1. Intro\n\n写作提示：\n1. p1",
		"no numbered items":  "大纲：\nIntro\n\n写作提示：\np1",
		"unrelated response": "I cannot help with that.",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseOutline(raw)
			assert.ErrorIs(t, err, ErrOutlineFormat)
		})
	}
}

func TestParseOutlineMismatchedLengths(t *testing.T) {
	sections, writingPrompts, err := ParseOutline("大纲：\n1. A\n2. B\n3. C\n写作提示：\n1. a\n")
	require.NoError(t, err)
	assert.Len(t, sections, 3)
	assert.Len(t, writingPrompts, 1)
}

func TestGenerateOutline(t *testing.T) {
	fake := &llmtest.Fake{Respond: func(llm.Request) (string, error) { return stubOutline, nil }}
	a := NewOutlineAgent(fake, Options{})

	sections, writingPrompts := a.GenerateOutline(context.Background(), "ref", "technical, concise", DefaultOutlineTemperature, "m")
	assert.Equal(t, []string{"Intro", "Body", "Conclusion"}, sections)
	assert.Equal(t, []string{"p1", "p2", "p3"}, writingPrompts)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "m", reqs[0].Model)
	assert.Equal(t, 0.5, reqs[0].Temperature)
	require.Len(t, reqs[0].Messages, 2)
	assert.Equal(t, prompts.OutlineSystemPrompt, llmtest.SystemContent(reqs[0]))
	assert.Contains(t, llmtest.UserContent(reqs[0]), "technical, concise")
}

func TestGenerateOutlineParseMiss(t *testing.T) {
	var logs bytes.Buffer
	fake := &llmtest.Fake{Respond: func(llm.Request) (string, error) { return "no structure here", nil }}
	a := NewOutlineAgent(fake, Options{Logger: testLogger(&logs)})

	sections, writingPrompts := a.GenerateOutline(context.Background(), "ref", "", 0.5, "m")
	assert.Empty(t, sections)
	assert.Empty(t, writingPrompts)
	assert.NotNil(t, sections)
	assert.Contains(t, logs.String(), "error parsing outline")
}

func TestAgentsSwallowClientErrors(t *testing.T) {
	for _, kind := range []llm.Kind{llm.KindAPI, llm.KindAuthentication, llm.KindRateLimit, llm.KindBadRequest} {
		t.Run(kind.String(), func(t *testing.T) {
			var logs bytes.Buffer
			fake := &llmtest.Fake{Respond: func(llm.Request) (string, error) {
				return "", &llm.Error{Kind: kind, Message: "nope"}
			}}
			opts := Options{Logger: testLogger(&logs)}
			ctx := context.Background()

			sections, writingPrompts := NewOutlineAgent(fake, opts).GenerateOutline(ctx, "ref", "", 0.5, "m")
			assert.Empty(t, sections)
			assert.Empty(t, writingPrompts)
			assert.Equal(t, "", NewContentAgent(fake, opts).GenerateContent(ctx, "t", "ref", "p", 0.3, "m"))
			assert.Equal(t, "", NewPolishAgent(fake, opts).PolishContent(ctx, "", "draft", "ref", 0.3, "m"))
			assert.Contains(t, logs.String(), "error calling llm")
			assert.Contains(t, logs.String(), "kind="+kind.String())
		})
	}
}

func TestGenerateContent(t *testing.T) {
	fake := &llmtest.Fake{Respond: func(req llm.Request) (string, error) { return "  body text\n", nil }}
	got := NewContentAgent(fake, Options{}).GenerateContent(context.Background(), "Intro", "ref", "p1", DefaultContentTemperature, "m")
	assert.Equal(t, "  body text\n", got, "returned verbatim")

	req := fake.Requests()[0]
	assert.Equal(t, prompts.ContentSystemPrompt, llmtest.SystemContent(req))
	assert.Equal(t, prompts.ContentUserPrompt("Intro", "ref", "p1"), llmtest.UserContent(req))
	assert.Equal(t, 0.3, req.Temperature)
}

func TestPolishContent(t *testing.T) {
	fake := &llmtest.Fake{Respond: func(req llm.Request) (string, error) { return "polished", nil }}
	got := NewPolishAgent(fake, Options{}).PolishContent(context.Background(), "prior", "draft", "ref", DefaultPolishTemperature, "m")
	assert.Equal(t, "polished", got)

	req := fake.Requests()[0]
	assert.Equal(t, prompts.PolishSystemPrompt, llmtest.SystemContent(req))
	assert.Equal(t, prompts.PolishUserPrompt("prior", "draft", "ref"), llmtest.UserContent(req))
}

func TestStreamingOption(t *testing.T) {
	fake := &llmtest.Fake{Respond: func(llm.Request) (string, error) { return "streamed text", nil }}
	var deltas []string
	a := NewContentAgent(fake, Options{Stream: true, OnDelta: func(d string) { deltas = append(deltas, d) }})

	got := a.GenerateContent(context.Background(), "t", "ref", "p", 0.3, "m")
	assert.Equal(t, "streamed text", got)
	assert.Equal(t, 1, fake.Streamed())
	assert.Equal(t, "streamed text", deltas[0]+deltas[1])
}

func TestMaxTokensForwarded(t *testing.T) {
	fake := &llmtest.Fake{}
	n := 256
	NewContentAgent(fake, Options{MaxTokens: &n}).GenerateContent(context.Background(), "t", "ref", "p", 0.3, "m")
	require.NotNil(t, fake.Requests()[0].MaxTokens)
	assert.Equal(t, 256, *fake.Requests()[0].MaxTokens)
}

type noChoices struct{}

func (noChoices) Complete(context.Context, llm.Request) (*llm.Completion, error) {
	return &llm.Completion{}, nil
}

func TestZeroChoicesIsEmptyAnswer(t *testing.T) {
	var logs bytes.Buffer
	got := NewContentAgent(noChoices{}, Options{Logger: testLogger(&logs), Stream: true}).GenerateContent(context.Background(), "t", "ref", "p", 0.3, "m")
	assert.Equal(t, "", got)
	assert.Contains(t, logs.String(), "no choices")
}
