package openaisdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnglemongrass/blogwriter/internal/llm"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "deepseek-chat", body["model"])
		assert.Equal(t, 0.3, body["temperature"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"deepseek-chat",
			"choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/v1", "sk-test")
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), llm.Request{
		Model:       "deepseek-chat",
		Messages:    []llm.Message{llm.SystemMessage("s"), llm.UserMessage("u")},
		Temperature: 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Text())
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 2, resp.Usage.TotalTokens)
}

func TestCompleteMapsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"auth"}}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "sk-test")
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), llm.Request{Model: "m"})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrAuthentication)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("http://localhost", "")
	assert.Error(t, err)
}
