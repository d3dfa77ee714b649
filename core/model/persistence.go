package model

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
)

// SaveJSON はモデルをJSONとしてファイルに保存する
//
// 使用例:
//
//	forest, _ := ensemble.LoadForest("forest.json")
//	err := model.SaveJSON(forest, "copy.json")
func SaveJSON(v interface{}, filename string) error {
	file, err := os.Create(filepath.Clean(filename))
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	defer file.Close()

	return SaveJSONToWriter(v, file)
}

// LoadJSON はJSONファイルからモデルを読み込む
func LoadJSON(v interface{}, filename string) error {
	file, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	return LoadJSONFromReader(v, file)
}

// SaveJSONToWriter はモデルをio.Writerに保存する
func SaveJSONToWriter(v interface{}, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadJSONFromReader はio.Readerからモデルを読み込む
func LoadJSONFromReader(v interface{}, r io.Reader) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
