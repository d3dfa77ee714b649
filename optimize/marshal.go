package optimize

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// itemer is implemented by numeric wrappers that hold a single scalar,
// mirroring numpy's ndarray.item().
type itemer interface {
	Item() any
}

// ToNamed pairs names with values by position. Names that are not strings
// are converted with their String method or fmt.Sprint. Values are unwrapped
// to plain scalars (see Unwrap). Output order equals input order and repeated
// names are kept.
func ToNamed[N any](names []N, values []any) (Params, error) {
	if len(names) != len(values) {
		return nil, errors.NewShapeMismatchError("ToNamed", len(names), len(values), 0)
	}

	out := make(Params, len(names))
	for i := range names {
		v, err := Unwrap(values[i])
		if err != nil {
			return nil, err
		}
		out[i] = Param{Name: nameOf(names[i]), Value: v}
	}
	return out, nil
}

// ToSortedNamed is ToNamed keyed by name in lexicographic order. Repeated
// names keep the last value.
func ToSortedNamed[N any](names []N, values []any) (Params, error) {
	named, err := ToNamed(names, values)
	if err != nil {
		return nil, err
	}

	last := make(map[string]int, len(named))
	for i, kv := range named {
		last[kv.Name] = i
	}
	out := make(Params, 0, len(last))
	for _, i := range last {
		out = append(out, named[i])
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func nameOf(n any) string {
	switch v := n.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Unwrap returns v as a plain scalar. Single-element wrappers are unwrapped:
// slices and arrays of length one, 1×1 matrices, length-one vectors, and
// values exposing Item() any. Pointers are dereferenced. Wrappers holding
// more than one element are rejected.
func Unwrap(v any) (any, error) {
	for depth := 0; depth < 8; depth++ {
		switch x := v.(type) {
		case nil, bool, string,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return x, nil
		case itemer:
			v = x.Item()
			continue
		case mat.Vector:
			if x.Len() != 1 {
				return nil, errors.NewValidationError("value", "vector wrapper must hold exactly one element", x.Len())
			}
			return x.AtVec(0), nil
		case mat.Matrix:
			r, c := x.Dims()
			if r != 1 || c != 1 {
				return nil, errors.NewValidationError("value", "matrix wrapper must be 1×1", fmt.Sprintf("%d×%d", r, c))
			}
			return x.At(0, 0), nil
		}

		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if rv.Len() != 1 {
				return nil, errors.NewValidationError("value", "array wrapper must hold exactly one element", rv.Len())
			}
			v = rv.Index(0).Interface()
		case reflect.Pointer:
			if rv.IsNil() {
				return nil, nil
			}
			v = rv.Elem().Interface()
		case reflect.Bool:
			return rv.Bool(), nil
		case reflect.String:
			return rv.String(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return rv.Uint(), nil
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		default:
			return nil, errors.NewValidationError("value", "not a scalar", fmt.Sprintf("%T", v))
		}
	}
	return nil, errors.NewValidationError("value", "wrapper nesting too deep", fmt.Sprintf("%T", v))
}
