package optimize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"github.com/cespare/xxhash/v2"
)

// Param is one named scalar.
type Param struct {
	Name  string
	Value any
}

// Params is the boundary representation of a candidate point: an ordered list
// of text-keyed plain scalars. Order is the declaration order of the search
// space. Params built by ToNamed may repeat a name; see Get.
type Params []Param

// Len returns the number of pairs.
func (p Params) Len() int { return len(p) }

// Names returns the names in order.
func (p Params) Names() []string {
	out := make([]string, len(p))
	for i, kv := range p {
		out[i] = kv.Name
	}
	return out
}

// Values returns the values in order.
func (p Params) Values() []any {
	out := make([]any, len(p))
	for i, kv := range p {
		out[i] = kv.Value
	}
	return out
}

// Get returns the value for name. When a name repeats, the last one wins,
// matching Map.
func (p Params) Get(name string) (any, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Name == name {
			return p[i].Value, true
		}
	}
	return nil, false
}

// Float returns the value for name as a float64.
func (p Params) Float(name string) (float64, error) {
	v, ok := p.Get(name)
	if !ok {
		return 0, errors.NewValidationError(name, "missing parameter", nil)
	}
	f, ok := toFloat64(v)
	if !ok {
		return 0, errors.NewValidationError(name, "not numeric", v)
	}
	return f, nil
}

// Int returns the value for name as an int. Floats must be integral.
func (p Params) Int(name string) (int, error) {
	f, err := p.Float(name)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, errors.NewValidationError(name, "not an integer", f)
	}
	return int(f), nil
}

// Text returns the value for name as a string.
func (p Params) Text(name string) (string, error) {
	v, ok := p.Get(name)
	if !ok {
		return "", errors.NewValidationError(name, "missing parameter", nil)
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.NewValidationError(name, "not a string", v)
	}
	return s, nil
}

// Map returns a map view. Repeated names resolve last-write-wins.
func (p Params) Map() map[string]any {
	out := make(map[string]any, len(p))
	for _, kv := range p {
		out[kv.Name] = kv.Value
	}
	return out
}

// Fingerprint hashes names and values in order. Equal points hash equally,
// so it can key a cache of seen evaluations.
func (p Params) Fingerprint() uint64 {
	d := xxhash.New()
	for _, kv := range p {
		_, _ = d.WriteString(kv.Name)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(formatScalar(kv.Value))
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case float64:
		return "f" + strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return "f" + strconv.FormatFloat(float64(x), 'g', -1, 32)
	case string:
		return "s" + x
	case bool:
		return "b" + strconv.FormatBool(x)
	case nil:
		return "n"
	}
	if i, ok := toInt64(v); ok {
		return "i" + strconv.FormatInt(i, 10)
	}
	b, _ := json.Marshal(v)
	return "j" + string(b)
}

// MarshalJSON encodes p as a JSON object whose keys appear in order.
// Repeated names are written as repeated keys.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(kv.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode name %q", kv.Name)
		}
		val, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode value of %q", kv.Name)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object keeping key order. Integral
// numbers decode as int64, others as float64.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "failed to read params")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.NewValueError("Params.UnmarshalJSON", "expected a JSON object")
	}

	out := Params{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "failed to read param name")
		}
		name, _ := tok.(string)

		tok, err = dec.Token()
		if err != nil {
			return errors.Wrapf(err, "failed to read value of %q", name)
		}
		var value any
		switch v := tok.(type) {
		case json.Delim:
			return errors.NewValidationError(name, "value must be a scalar", v.String())
		case json.Number:
			if i, err := v.Int64(); err == nil {
				value = i
			} else if f, err := v.Float64(); err == nil {
				value = f
			} else {
				return errors.NewValidationError(name, "invalid number", v.String())
			}
		default:
			value = v
		}
		out = append(out, Param{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return errors.Wrap(err, "failed to read params")
	}

	*p = out
	return nil
}

// ParseParams decodes the JSON produced by Params.MarshalJSON.
func ParseParams(data []byte) (Params, error) {
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	if u, ok := v.(uint64); ok {
		return float64(u), true
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	}
	return 0, false
}
