package optimize

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"github.com/YuminosukeSato/forestopt/pkg/log"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec selects the compression of a checkpoint file.
type Codec string

const (
	CodecNone Codec = "none"
	CodecZstd Codec = "zstd"
	CodecLZ4  Codec = "lz4"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

type resultJSON struct {
	Direction   string       `json:"direction"`
	Names       []string     `json:"names"`
	Evaluations []Evaluation `json:"evaluations"`
}

// MarshalJSON encodes a consistent snapshot of r.
func (r *Result) MarshalJSON() ([]byte, error) {
	r.mu.RLock()
	doc := resultJSON{
		Direction:   r.Direction.String(),
		Names:       r.Names,
		Evaluations: r.Evaluations,
	}
	data, err := json.Marshal(doc)
	r.mu.RUnlock()
	return data, err
}

// UnmarshalJSON replaces the contents of r.
func (r *Result) UnmarshalJSON(data []byte) error {
	var doc resultJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "failed to parse result")
	}
	dir, err := ParseDirection(doc.Direction)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Direction = dir
	r.Names = doc.Names
	r.Evaluations = doc.Evaluations
	return nil
}

// EncodeResult writes res to w using codec.
func EncodeResult(w io.Writer, res *Result, codec Codec) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, "failed to encode result")
	}

	switch codec {
	case CodecNone, "":
		_, err = w.Write(payload)
		return errors.Wrap(err, "failed to write checkpoint")
	case CodecZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return errors.Wrap(err, "failed to create zstd encoder")
		}
		if _, err := enc.Write(payload); err != nil {
			_ = enc.Close()
			return errors.Wrap(err, "failed to compress checkpoint")
		}
		return errors.Wrap(enc.Close(), "failed to flush zstd checkpoint")
	case CodecLZ4:
		zw := lz4.NewWriter(w)
		if _, err := zw.Write(payload); err != nil {
			_ = zw.Close()
			return errors.Wrap(err, "failed to compress checkpoint")
		}
		return errors.Wrap(zw.Close(), "failed to flush lz4 checkpoint")
	default:
		return errors.NewValidationError("codec", "must be none, zstd or lz4", string(codec))
	}
}

// DecodeResult reads a result written by EncodeResult. The codec is detected
// from the frame header.
func DecodeResult(r io.Reader) (*Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read checkpoint")
	}

	var payload []byte
	switch {
	case bytes.HasPrefix(raw, zstdMagic):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create zstd decoder")
		}
		defer dec.Close()
		payload, err = dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decompress zstd checkpoint")
		}
	case bytes.HasPrefix(raw, lz4Magic):
		payload, err = io.ReadAll(lz4.NewReader(bytes.NewReader(raw)))
		if err != nil {
			return nil, errors.Wrap(err, "failed to decompress lz4 checkpoint")
		}
	default:
		payload = raw
	}

	res := &Result{}
	if err := json.Unmarshal(payload, res); err != nil {
		return nil, err
	}
	return res, nil
}

// SaveResult writes res to path. The file is replaced atomically so a crash
// mid-write leaves the previous checkpoint intact.
func SaveResult(path string, res *Result, codec Codec) (err error) {
	path = filepath.Clean(path)
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "failed to create checkpoint")
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = EncodeResult(tmp, res, codec); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close checkpoint")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "failed to replace checkpoint")
	}

	log.GetLoggerWithName("optimize.checkpoint").Debug("Saved checkpoint",
		log.OperationKey, log.OperationCheckpoint,
		log.CheckpointPathKey, path,
		log.IterationKey, res.Len(),
	)
	return nil
}

// LoadResult reads a checkpoint written by SaveResult.
func LoadResult(path string) (*Result, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open checkpoint %s", path)
	}
	defer f.Close()
	return DecodeResult(f)
}
