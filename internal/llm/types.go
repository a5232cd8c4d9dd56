// Package llm provides types for OpenAI-compatible chat completion APIs.
package llm

import "context"

// Role identifies the author of a chat message.
type Role string

// The closed set of message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage returns a message with the system role.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage returns a message with the user role.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Request describes one call to /chat/completions.
// MaxTokens is sent only when non-nil. Extra is merged into the JSON body
// and may override the standard keys, except max_tokens.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   *int
	Extra       map[string]any
}

// Usage tracks token counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Delta holds the incremental content in a streamed chunk.
type Delta struct {
	Content *string `json:"content,omitempty"`
	Role    *Role   `json:"role,omitempty"`
}

// Choice is a single completion choice. Delta is only set on streamed chunks.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason *string `json:"finish_reason,omitempty"`
	Delta        *Delta  `json:"delta,omitempty"`
}

// Completion is a full response or a single streamed chunk.
type Completion struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Text returns the content of the first choice, or "" when the provider
// returned no choices.
func (c *Completion) Text() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

// DeltaText returns the delta content of the first choice, or "".
func (c *Completion) DeltaText() string {
	if c == nil || len(c.Choices) == 0 || c.Choices[0].Delta == nil || c.Choices[0].Delta.Content == nil {
		return ""
	}
	return *c.Choices[0].Delta.Content
}

// ModelInfo represents a single model from the /models endpoint.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
}

// ModelListResponse is the response from /models.
type ModelListResponse struct {
	Data []ModelInfo `json:"data"`
}

// wire shapes, decoded leniently so missing fields can be defaulted.

type wireMessage struct {
	Role    *Role   `json:"role"`
	Content *string `json:"content"`
}

type wireChoice struct {
	Index        int          `json:"index"`
	Message      *wireMessage `json:"message"`
	Delta        *wireMessage `json:"delta"`
	FinishReason *string      `json:"finish_reason"`
}

type wireCompletion struct {
	ID      string       `json:"id"`
	Object  *string      `json:"object"`
	Created *int64       `json:"created"`
	Model   *string      `json:"model"`
	Choices []wireChoice `json:"choices"`
	Usage   *Usage       `json:"usage"`
}

// Completer is anything that can answer a chat completion request.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// StreamCompleter additionally streams completions, calling cb per delta.
type StreamCompleter interface {
	Completer
	CompleteStream(ctx context.Context, req Request, cb StreamCallback) (string, error)
}
