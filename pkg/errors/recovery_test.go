package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "Forest.Predict")
		panic("tree index out of range")
	}

	err := testFunc()
	require.Error(t, err)

	var panicErr *PanicError
	require.True(t, As(err, &panicErr))
	assert.Equal(t, "Forest.Predict", panicErr.Operation)
	assert.Equal(t, "tree index out of range", panicErr.PanicValue)
	assert.NotEmpty(t, panicErr.StackTrace)
	assert.Equal(t, "panic in Forest.Predict: tree index out of range", panicErr.Error())
	assert.Contains(t, panicErr.String(), "Stack trace:")
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "Forest.Predict")
		return nil
	}

	assert.NoError(t, testFunc())
}

func TestRecover_KeepsExistingError(t *testing.T) {
	original := fmt.Errorf("collaborator failed")
	testFunc := func() (err error) {
		defer Recover(&err, "ReturnStd")
		err = original
		panic("then panicked")
	}

	err := testFunc()
	require.Error(t, err)

	var panicErr *PanicError
	assert.True(t, As(err, &panicErr))
	assert.Contains(t, fmt.Sprintf("%+v", err), "collaborator failed")
}

func TestRecover_ErrorPanicValueUnwraps(t *testing.T) {
	err := SafeExecute("tree.Predict", func() error {
		panic(ErrEmptyEnsemble)
	})

	require.Error(t, err)
	assert.True(t, Is(err, ErrEmptyEnsemble))
}

func TestSafeExecute(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		assert.NoError(t, SafeExecute("noop", func() error { return nil }))
	})

	t.Run("function error is returned unchanged", func(t *testing.T) {
		want := fmt.Errorf("objective failed")
		got := SafeExecute("objective", func() error { return want })
		assert.Equal(t, want, got)
	})

	t.Run("panic", func(t *testing.T) {
		err := SafeExecute("divide", func() error {
			var zero int
			_ = 1 / zero
			return nil
		})
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "panic in divide"))
	})
}

func BenchmarkSafeExecute_NoPanic(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = SafeExecute("bench", func() error { return nil })
	}
}
