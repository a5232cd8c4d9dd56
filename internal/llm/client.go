// Package llm provides an OpenAI-compatible HTTP client for chat completions.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client communicates with an OpenAI-compatible API. BaseURL and APIKey are
// fixed at construction; a Client holds no other state between calls and is
// safe for concurrent use.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *slog.Logger

	now func() time.Time
}

// NewClient creates a Client for the endpoint root baseURL, e.g.
// "https://api.deepseek.com/v1".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: http.DefaultClient,
		Logger:     slog.Default(),
		now:        time.Now,
	}
}

// Complete sends a non-streaming chat completion request.
func (c *Client) Complete(ctx context.Context, req Request) (*Completion, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(fmt.Errorf("read response: %w", err))
	}
	var w wireCompletion
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, &Error{Kind: KindAPI, Message: fmt.Sprintf("decode response: %v", err), HTTPStatus: resp.StatusCode, RawResponse: body, Err: err}
	}
	return c.convert(w, req.Model, "chat.completion", false), nil
}

// Stream sends a streaming chat completion request. The returned Stream must
// be closed by the caller.
func (c *Client) Stream(ctx context.Context, req Request) (*Stream, error) {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return newStream(resp.Body, func(w wireCompletion) *Completion {
		return c.convert(w, req.Model, "chat.completion.chunk", true)
	}), nil
}

// StreamCallback is called for each streamed content delta.
type StreamCallback func(delta string)

// CompleteStream streams a completion, calls cb for each non-empty delta and
// returns the concatenated text.
func (c *Client) CompleteStream(ctx context.Context, req Request, cb StreamCallback) (string, error) {
	s, err := c.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	defer s.Close()

	var full strings.Builder
	for s.Next() {
		d := s.Current().DeltaText()
		if d == "" {
			continue
		}
		full.WriteString(d)
		if cb != nil {
			cb(d)
		}
	}
	return full.String(), s.Err()
}

// ListModels fetches the models offered by the endpoint.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/models", nil)
	if err != nil {
		return nil, transportError(fmt.Errorf("create request: %w", err))
	}
	c.setHeaders(httpReq)

	resp, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result ModelListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &Error{Kind: KindAPI, Message: fmt.Sprintf("decode models: %v", err), HTTPStatus: resp.StatusCode, Err: err}
	}
	return result.Data, nil
}

// post issues the completion request and returns a response with a 2xx
// status; any other status is classified into an *Error.
func (c *Client) post(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	body, err := json.Marshal(requestBody(req, stream))
	if err != nil {
		return nil, &Error{Kind: KindBadRequest, Message: fmt.Sprintf("marshal request: %v", err), Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, transportError(fmt.Errorf("create request: %w", err))
	}
	c.setHeaders(httpReq)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	c.logger().Debug("chat completion request", "model", req.Model, "messages", len(req.Messages), "stream", stream)
	return c.do(httpReq)
}

func (c *Client) do(httpReq *http.Request) (*http.Response, error) {
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, statusError(resp.StatusCode, respBody)
	}
	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Client) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// requestBody builds the JSON object. Extra options are merged over the
// standard keys; max_tokens is omitted unless set.
func requestBody(req Request, stream bool) map[string]any {
	messages := req.Messages
	if messages == nil {
		messages = []Message{}
	}
	body := map[string]any{
		"model":       req.Model,
		"messages":    messages,
		"temperature": req.Temperature,
		"stream":      stream,
	}
	for k, v := range req.Extra {
		body[k] = v
	}
	if req.MaxTokens != nil {
		body["max_tokens"] = *req.MaxTokens
	} else {
		delete(body, "max_tokens")
	}
	return body
}

// convert fills defaults for fields the provider left out. For streamed
// chunks a Message is synthesized from the delta.
func (c *Client) convert(w wireCompletion, model, object string, chunk bool) *Completion {
	out := &Completion{
		ID:      w.ID,
		Object:  object,
		Model:   model,
		Choices: make([]Choice, 0, len(w.Choices)),
		Usage:   w.Usage,
	}
	if w.Object != nil {
		out.Object = *w.Object
	}
	if w.Created != nil {
		out.Created = *w.Created
	} else {
		out.Created = c.clock().Unix()
	}
	if w.Model != nil {
		out.Model = *w.Model
	}

	for _, wc := range w.Choices {
		ch := Choice{Index: wc.Index, FinishReason: wc.FinishReason}
		src := wc.Message
		if chunk {
			src = wc.Delta
			d := &Delta{}
			if src != nil {
				d.Content = src.Content
				d.Role = src.Role
			}
			ch.Delta = d
		}
		ch.Message = Message{Role: RoleAssistant}
		if src != nil {
			if src.Role != nil {
				ch.Message.Role = *src.Role
			}
			if src.Content != nil {
				ch.Message.Content = *src.Content
			}
		}
		out.Choices = append(out.Choices, ch)
	}
	return out
}
