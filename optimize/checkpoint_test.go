package optimize

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	res := NewResult([]string{"lr", "kernel"}, Maximize)
	res.Record(Params{{"lr", 0.1}, {"kernel", "rbf"}}, -0.8, 3*time.Second)
	res.Record(Params{{"lr", 0.01}, {"kernel", "linear"}}, -0.9, 2*time.Second)
	return res
}

func TestCheckpointCodecs(t *testing.T) {
	for _, codec := range []Codec{CodecNone, CodecZstd, CodecLZ4} {
		t.Run(string(codec), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "run.ckpt")
			require.NoError(t, SaveResult(path, sampleResult(), codec))

			loaded, err := LoadResult(path)
			require.NoError(t, err)
			assert.Equal(t, Maximize, loaded.Direction)
			assert.Equal(t, []string{"lr", "kernel"}, loaded.Names)
			require.Equal(t, 2, loaded.Len())

			best, _ := loaded.Best()
			assert.Equal(t, 1, best.Iteration)
			assert.Equal(t, 0.9, best.Score)
			assert.Equal(t, 2*time.Second, best.Duration)
			kernel, err := best.Params.Text("kernel")
			require.NoError(t, err)
			assert.Equal(t, "linear", kernel)
		})
	}
}

func TestCompressedCheckpointsAreFramed(t *testing.T) {
	var z, l bytes.Buffer
	require.NoError(t, EncodeResult(&z, sampleResult(), CodecZstd))
	require.NoError(t, EncodeResult(&l, sampleResult(), CodecLZ4))

	assert.True(t, bytes.HasPrefix(z.Bytes(), zstdMagic))
	assert.True(t, bytes.HasPrefix(l.Bytes(), lz4Magic))
}

func TestCheckpointUnknownCodec(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, EncodeResult(&buf, sampleResult(), "brotli"))

	dir := t.TempDir()
	path := filepath.Join(dir, "run.ckpt")
	assert.Error(t, SaveResult(path, sampleResult(), "brotli"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary file must be cleaned up")
}

func TestCheckpointSaverOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.ckpt")
	saver := &CheckpointSaver{Path: path, Codec: CodecZstd}

	res := NewResult([]string{"x"}, Minimize)
	record(res, 3)
	stop, err := saver.Step(res)
	require.NoError(t, err)
	assert.False(t, stop)

	record(res, 2)
	_, err = saver.Step(res)
	require.NoError(t, err)

	loaded, err := LoadResult(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
}

func TestLoadResultMissing(t *testing.T) {
	_, err := LoadResult(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
