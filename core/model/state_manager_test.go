package model

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("RandomForestRegressor", "Predict")
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Predict", nf.Method)

	require.NoError(t, s.WithStateMut(func() error {
		s.Fitted = true
		s.NFeatures = 3
		s.NTrees = 10
		return nil
	}))
	assert.True(t, s.IsFitted())
	assert.NoError(t, s.RequireFitted("RandomForestRegressor", "Predict"))

	f, n := s.GetDimensions()
	assert.Equal(t, 3, f)
	assert.Equal(t, 10, n)

	s.Reset()
	assert.False(t, s.IsFitted())
	f, n = s.GetDimensions()
	assert.Zero(t, f)
	assert.Zero(t, n)
}

func TestStateManagerStateRoundTrip(t *testing.T) {
	s := NewStateManager()
	s.SetState(ModelState{Fitted: true, NFeatures: 2, NTrees: 5})

	other := NewStateManager()
	other.SetState(s.GetState())
	assert.Equal(t, ModelState{Fitted: true, NFeatures: 2, NTrees: 5}, other.GetState())
}

func TestStateManagerConcurrentReaders(t *testing.T) {
	s := NewStateManager()
	s.SetState(ModelState{Fitted: true, NFeatures: 1, NTrees: 1})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithState(func() error {
				_ = s.NTrees
				return nil
			})
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithStateMut(func() error {
				s.NTrees++
				return nil
			})
		}()
	}
	wg.Wait()
	_, n := s.GetDimensions()
	assert.Equal(t, 9, n)
}

func TestWithStatePropagatesError(t *testing.T) {
	s := NewStateManager()
	want := errors.New("boom")
	assert.ErrorIs(t, s.WithState(func() error { return want }), want)
	assert.ErrorIs(t, s.WithStateMut(func() error { return want }), want)
}

func TestJSONPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, SaveJSON(ModelState{Fitted: true, NTrees: 4}, path))

	var got ModelState
	require.NoError(t, LoadJSON(&got, path))
	assert.Equal(t, ModelState{Fitted: true, NTrees: 4}, got)

	var buf bytes.Buffer
	require.NoError(t, SaveJSONToWriter(got, &buf))
	assert.Contains(t, buf.String(), "\n  \"fitted\": true")

	assert.Error(t, LoadJSON(&got, filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, LoadJSONFromReader(&got, bytes.NewBufferString("{")))
}
