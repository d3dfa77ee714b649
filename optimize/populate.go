package optimize

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/forestopt/pkg/errors"
)

// TagName is the struct tag SpaceOf reads:
//
//	type Params struct {
//	    LearningRate float64 `space:"real,1e-4,1,log-uniform"`
//	    Depth        int     `space:"integer,1,12"`
//	    Kernel       string  `space:"categorical,rbf|linear|poly"`
//	}
//
// Untagged fields are not part of the space.
const TagName = "space"

type taggedField struct {
	index []int
	dim   Dimension
}

// SpaceOf derives a search space from the tagged fields of a struct. The
// dimensions are named after the fields and ordered by name.
func SpaceOf(v any) (*Space, error) {
	fields, err := taggedFields(reflect.TypeOf(v))
	if err != nil {
		return nil, err
	}
	dims := make([]Dimension, len(fields))
	for i, f := range fields {
		dims[i] = f.dim
	}
	return NewSpace(dims...)
}

func structType(t reflect.Type) (reflect.Type, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.NewValidationError("target", "must be a struct or pointer to struct", t)
	}
	return t, nil
}

func taggedFields(t reflect.Type) ([]taggedField, error) {
	t, err := structType(t)
	if err != nil {
		return nil, err
	}

	var out []taggedField
	for _, sf := range reflect.VisibleFields(t) {
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok || tag == "-" || !sf.IsExported() {
			continue
		}
		dim, err := parseTag(sf.Name, sf.Type, tag)
		if err != nil {
			return nil, err
		}
		out = append(out, taggedField{index: sf.Index, dim: dim})
	}
	if len(out) == 0 {
		return nil, errors.NewValidationError("target", "no fields tagged `space`", t.Name())
	}
	sort.Slice(out, func(a, b int) bool { return out[a].dim.Name() < out[b].dim.Name() })
	return out, nil
}

func parseTag(name string, typ reflect.Type, tag string) (Dimension, error) {
	parts := strings.Split(tag, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	prior := Uniform
	if len(parts) == 4 {
		prior = Prior(parts[3])
	}

	switch parts[0] {
	case "real":
		if len(parts) < 3 || len(parts) > 4 {
			return nil, errors.NewValidationError(name, "real tag needs low,high[,prior]", tag)
		}
		if !isFloatKind(typ.Kind()) {
			return nil, errors.NewValidationError(name, "real dimension needs a float field", typ.String())
		}
		low, errLow := strconv.ParseFloat(parts[1], 64)
		high, errHigh := strconv.ParseFloat(parts[2], 64)
		if errLow != nil || errHigh != nil {
			return nil, errors.NewValidationError(name, "bounds must be numbers", tag)
		}
		return NewReal(name, low, high, prior)

	case "integer":
		if len(parts) < 3 || len(parts) > 4 {
			return nil, errors.NewValidationError(name, "integer tag needs low,high[,prior]", tag)
		}
		if !isIntKind(typ.Kind()) && !isFloatKind(typ.Kind()) {
			return nil, errors.NewValidationError(name, "integer dimension needs a numeric field", typ.String())
		}
		low, errLow := strconv.ParseInt(parts[1], 10, 64)
		high, errHigh := strconv.ParseInt(parts[2], 10, 64)
		if errLow != nil || errHigh != nil {
			return nil, errors.NewValidationError(name, "bounds must be integers", tag)
		}
		return NewInteger(name, low, high, prior)

	case "categorical":
		if len(parts) != 2 {
			return nil, errors.NewValidationError(name, "categorical tag needs a|b|c", tag)
		}
		if typ.Kind() != reflect.String {
			return nil, errors.NewValidationError(name, "categorical dimension needs a string field", typ.String())
		}
		return NewCategorical(name, strings.Split(parts[1], "|")...)

	default:
		return nil, errors.NewValidationError(name, "unknown dimension kind", parts[0])
	}
}

// PointOf reads the tagged fields of v in space order.
func PointOf(v any) ([]any, error) {
	fields, err := taggedFields(reflect.TypeOf(v))
	if err != nil {
		return nil, err
	}
	rv := reflect.Indirect(reflect.ValueOf(v))
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = rv.FieldByIndex(f.index).Interface()
	}
	return out, nil
}

// Populate assigns params to the tagged fields of the struct dst points to,
// converting numeric values to the field type. Every tagged field must be
// present in params.
func Populate(params Params, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.NewValidationError("dst", "must be a non-nil pointer to struct", dst)
	}
	fields, err := taggedFields(rv.Type())
	if err != nil {
		return err
	}
	target := rv.Elem()

	for _, f := range fields {
		name := f.dim.Name()
		value, ok := params.Get(name)
		if !ok {
			return errors.NewValidationError(name, "missing parameter", nil)
		}
		if err := assign(target.FieldByIndex(f.index), name, value); err != nil {
			return err
		}
	}
	return nil
}

func assign(field reflect.Value, name string, value any) error {
	switch k := field.Kind(); {
	case isFloatKind(k):
		f, ok := toFloat64(value)
		if !ok {
			return errors.NewValidationError(name, "not numeric", value)
		}
		field.SetFloat(f)
	case isIntKind(k):
		f, ok := toFloat64(value)
		if !ok || f != math.Trunc(f) {
			return errors.NewValidationError(name, "not an integer", value)
		}
		if field.OverflowInt(int64(f)) {
			return errors.NewValidationError(name, "overflows "+field.Type().String(), value)
		}
		field.SetInt(int64(f))
	case k == reflect.String:
		field.SetString(nameOf(value))
	case k == reflect.Bool:
		b, ok := value.(bool)
		if !ok {
			return errors.NewValidationError(name, "not a boolean", value)
		}
		field.SetBool(b)
	default:
		return errors.NewValidationError(name, "unsupported field type", field.Type().String())
	}
	return nil
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}
