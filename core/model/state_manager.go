// Package model provides state management for fitted ensembles.
package model

import (
	"sync"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
)

// StateManager manages the fitted state of a model in a thread-safe manner.
//
// Readers (prediction) run under WithState; writers (fit, warm-start growth)
// run under WithStateMut, so growth is never interleaved with prediction.
type StateManager struct {
	Fitted bool // Public for encoding
	mu     sync.RWMutex

	NFeatures int
	NTrees    int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NFeatures = 0
	s.NTrees = 0
}

// GetDimensions returns the feature count and tree count seen so far.
func (s *StateManager) GetDimensions() (nFeatures, nTrees int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NTrees
}

// RequireFitted returns a NotFittedError naming modelName and method if the
// model has not been fitted. The caller must not hold the lock.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// ModelState represents the serializable part of the state.
type ModelState struct {
	Fitted    bool `json:"fitted"`
	NFeatures int  `json:"n_features,omitempty"`
	NTrees    int  `json:"n_trees,omitempty"`
}

// GetState returns the current state as a ModelState struct.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelState{Fitted: s.Fitted, NFeatures: s.NFeatures, NTrees: s.NTrees}
}

// SetState sets the state from a ModelState struct.
func (s *StateManager) SetState(state ModelState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = state.Fitted
	s.NFeatures = state.NFeatures
	s.NTrees = state.NTrees
}

// WithState executes fn with the state locked for reading.
func (s *StateManager) WithState(fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn()
}

// WithStateMut executes fn with the state locked for writing. fn may update
// the exported fields directly.
func (s *StateManager) WithStateMut(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
