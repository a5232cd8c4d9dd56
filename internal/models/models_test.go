package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnglemongrass/blogwriter/internal/llm"
)

func newTestServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	resp := llm.ModelListResponse{
		Data: []llm.ModelInfo{
			{ID: "deepseek-chat", Object: "model", OwnedBy: "deepseek"},
			{ID: "deepseek-reasoner", Object: "model", OwnedBy: "deepseek"},
		},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		if calls != nil {
			*calls++
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestList(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	mgr := NewManager(llm.NewClient(srv.URL+"/v1", "key"))
	models, err := mgr.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, models, 2)
	assert.Equal(t, "deepseek-chat", models[0].ID)
}

func TestListCaches(t *testing.T) {
	calls := 0
	srv := newTestServer(t, &calls)
	defer srv.Close()

	mgr := NewManager(llm.NewClient(srv.URL+"/v1", ""))
	_, _ = mgr.List(context.Background())
	_, _ = mgr.List(context.Background())
	assert.Equal(t, 1, calls)
}

func TestInvalidate(t *testing.T) {
	calls := 0
	srv := newTestServer(t, &calls)
	defer srv.Close()

	mgr := NewManager(llm.NewClient(srv.URL+"/v1", ""))
	_, _ = mgr.List(context.Background())
	mgr.Invalidate()
	_, _ = mgr.List(context.Background())
	assert.Equal(t, 2, calls)
}

func TestHas(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	mgr := NewManager(llm.NewClient(srv.URL+"/v1", "key"))
	ok, err := mgr.Has(context.Background(), "deepseek-chat")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mgr.Has(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListClassifiesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	mgr := NewManager(llm.NewClient(srv.URL, "bad"))
	_, err := mgr.List(context.Background())
	assert.ErrorIs(t, err, llm.ErrAuthentication)

	_, err = mgr.Has(context.Background(), "x")
	assert.Error(t, err, "errors are not cached")
}
