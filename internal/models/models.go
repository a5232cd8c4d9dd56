// Package models lists the models an OpenAI-compatible endpoint offers.
package models

import (
	"context"
	"sync"

	"github.com/tnglemongrass/blogwriter/internal/llm"
)

// Lister fetches the model list from the endpoint.
type Lister interface {
	ListModels(ctx context.Context) ([]llm.ModelInfo, error)
}

// Manager fetches and caches the list of available models.
type Manager struct {
	lister Lister

	mu     sync.Mutex
	cached []llm.ModelInfo
}

// NewManager creates a Manager backed by l, usually an *llm.Client.
func NewManager(l Lister) *Manager {
	return &Manager{lister: l}
}

// List returns the available models, fetching from the API if not cached.
// Failures are not cached.
func (m *Manager) List(ctx context.Context) ([]llm.ModelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil {
		return m.cached, nil
	}

	models, err := m.lister.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	if models == nil {
		models = []llm.ModelInfo{}
	}
	m.cached = models
	return m.cached, nil
}

// Invalidate clears the cached model list.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = nil
}

// Has returns true if the given model ID is in the list of available models.
func (m *Manager) Has(ctx context.Context, modelID string) (bool, error) {
	models, err := m.List(ctx)
	if err != nil {
		return false, err
	}
	for _, model := range models {
		if model.ID == modelID {
			return true, nil
		}
	}
	return false, nil
}
