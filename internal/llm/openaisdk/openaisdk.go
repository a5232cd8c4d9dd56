// Package openaisdk adapts the official openai-go SDK to llm.StreamCompleter,
// so the same OpenAI-compatible endpoint can be driven through the SDK
// transport instead of the built-in client. Failures are mapped onto the
// llm error kinds.
package openaisdk

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/tnglemongrass/blogwriter/internal/llm"
)

// Client implements llm.StreamCompleter on top of openai-go.
type Client struct {
	sdk openai.Client
}

// New creates a Client for baseURL authenticated with apiKey. SDK retries are
// disabled; a failed call surfaces immediately.
func New(baseURL, apiKey string, extra ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	opts = append(opts, extra...)
	return &Client{sdk: openai.NewClient(opts...)}, nil
}

// Complete sends a non-streaming request.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Completion, error) {
	resp, err := c.sdk.Chat.Completions.New(ctx, params(req), extraOptions(req)...)
	if err != nil {
		return nil, mapError(err)
	}

	out := &llm.Completion{
		ID:      resp.ID,
		Object:  string(resp.Object),
		Created: resp.Created,
		Model:   resp.Model,
		Choices: make([]llm.Choice, 0, len(resp.Choices)),
	}
	if out.Model == "" {
		out.Model = req.Model
	}
	if resp.Usage.TotalTokens > 0 {
		out.Usage = &llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		}
	}
	for _, ch := range resp.Choices {
		choice := llm.Choice{
			Index:   int(ch.Index),
			Message: llm.Message{Role: llm.RoleAssistant, Content: ch.Message.Content},
		}
		if ch.FinishReason != "" {
			reason := ch.FinishReason
			choice.FinishReason = &reason
		}
		out.Choices = append(out.Choices, choice)
	}
	return out, nil
}

// CompleteStream streams a completion and returns the concatenated text.
func (c *Client) CompleteStream(ctx context.Context, req llm.Request, cb llm.StreamCallback) (string, error) {
	stream := c.sdk.Chat.Completions.NewStreaming(ctx, params(req), extraOptions(req)...)
	defer stream.Close()

	var full strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		d := chunk.Choices[0].Delta.Content
		if d == "" {
			continue
		}
		full.WriteString(d)
		if cb != nil {
			cb(d)
		}
	}
	if err := stream.Err(); err != nil {
		return full.String(), mapError(err)
	}
	return full.String(), nil
}

func params(req llm.Request) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case llm.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	p := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    msgs,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens != nil {
		p.MaxTokens = openai.Int(int64(*req.MaxTokens))
	}
	return p
}

func extraOptions(req llm.Request) []option.RequestOption {
	var opts []option.RequestOption
	for k, v := range req.Extra {
		opts = append(opts, option.WithJSONSet(k, v))
	}
	return opts
}

// mapError converts SDK failures into *llm.Error.
func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return &llm.Error{
			Kind:       llm.KindForStatus(apiErr.StatusCode),
			Message:    msg,
			HTTPStatus: apiErr.StatusCode,
			Err:        err,
		}
	}
	return &llm.Error{Kind: llm.KindAPI, Message: err.Error(), Err: err}
}
