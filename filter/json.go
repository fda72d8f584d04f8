package filter

import (
	"encoding/base64"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// FromJSON decodes a filter tree from its JSON form:
//
//	{"type": "and", "left": {...}, "right": {...}}
//	{"type": "eq", "column": "age", "value": 30}
//	{"type": "in", "column": "color", "values": ["red", "green"]}
//	{"type": "startsWith", "column": "name", "prefix": "Al"}
//
// Literals are plain JSON scalars, or single-key objects for the types JSON
// has no syntax for: {"decimal": "1.20"}, {"date": "2006-01-02"},
// {"timestamp": "2006-01-02T15:04:05Z"}, {"bytes": "<base64>"}.
func FromJSON(data []byte) (Filter, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return Filter{}, errors.Wrap(err, "couldn't parse json")
	}
	return decodeFilter(v)
}

func decodeFilter(v *fastjson.Value) (Filter, error) {
	if v == nil {
		return Filter{}, errors.New("missing filter object")
	}
	if v.Type() != fastjson.TypeObject {
		return Filter{}, errors.Errorf("expected JSON object, got %s", v.Type())
	}
	filterType := string(v.GetStringBytes("type"))

	switch filterType {
	case "isNull":
		name, err := decodeColumn(v)
		if err != nil {
			return Filter{}, err
		}
		return NewIsNull(name), nil

	case "isNotNull":
		name, err := decodeColumn(v)
		if err != nil {
			return Filter{}, err
		}
		return NewIsNotNull(name), nil

	case "eq", "eqNullSafe", "notEq", "lt", "ltEq", "gt", "gtEq":
		name, err := decodeColumn(v)
		if err != nil {
			return Filter{}, err
		}
		value, err := decodeValue(v.Get("value"))
		if err != nil {
			return Filter{}, errors.Wrapf(err, "couldn't decode value of '%s' filter", filterType)
		}
		switch filterType {
		case "eq":
			return NewEquals(name, value), nil
		case "eqNullSafe":
			return NewEqualNullSafe(name, value), nil
		case "notEq":
			return NewNotEquals(name, value), nil
		case "lt":
			return NewLessThan(name, value), nil
		case "ltEq":
			return NewLessOrEqual(name, value), nil
		case "gt":
			return NewGreaterThan(name, value), nil
		default:
			return NewGreaterOrEqual(name, value), nil
		}

	case "and", "or":
		left, err := decodeFilter(v.Get("left"))
		if err != nil {
			return Filter{}, errors.Wrapf(err, "couldn't decode left side of '%s' filter", filterType)
		}
		right, err := decodeFilter(v.Get("right"))
		if err != nil {
			return Filter{}, errors.Wrapf(err, "couldn't decode right side of '%s' filter", filterType)
		}
		if filterType == "and" {
			return NewAnd(left, right), nil
		}
		return NewOr(left, right), nil

	case "not":
		inner, err := decodeFilter(v.Get("inner"))
		if err != nil {
			return Filter{}, errors.Wrap(err, "couldn't decode inner filter of 'not' filter")
		}
		return NewNot(inner), nil

	case "in":
		name, err := decodeColumn(v)
		if err != nil {
			return Filter{}, err
		}
		elements := v.GetArray("values")
		if elements == nil {
			return Filter{}, errors.New("'in' filter requires a 'values' array")
		}
		values := make([]Value, len(elements))
		for i := range elements {
			values[i], err = decodeValue(elements[i])
			if err != nil {
				return Filter{}, errors.Wrapf(err, "couldn't decode value with index %d of 'in' filter", i)
			}
		}
		return NewIn(name, values...), nil

	case "startsWith":
		name, err := decodeColumn(v)
		if err != nil {
			return Filter{}, err
		}
		prefix := v.Get("prefix")
		if prefix == nil || prefix.Type() != fastjson.TypeString {
			return Filter{}, errors.New("'startsWith' filter requires a string 'prefix'")
		}
		return NewStartsWith(name, string(prefix.GetStringBytes())), nil

	case "":
		return Filter{}, errors.New("filter object is missing the 'type' field")
	default:
		return Filter{}, errors.Errorf("unknown filter type '%s'", filterType)
	}
}

func decodeColumn(v *fastjson.Value) (string, error) {
	column := v.Get("column")
	if column == nil || column.Type() != fastjson.TypeString {
		return "", errors.New("filter requires a string 'column'")
	}
	return string(column.GetStringBytes()), nil
}

func decodeValue(v *fastjson.Value) (Value, error) {
	if v == nil {
		return Value{}, errors.New("missing literal value")
	}

	switch v.Type() {
	case fastjson.TypeNull:
		return NewNull(), nil
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return NewBoolean(v.GetBool()), nil
	case fastjson.TypeString:
		return NewString(string(v.GetStringBytes())), nil
	case fastjson.TypeNumber:
		if i, err := v.Int64(); err == nil {
			return NewInt(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return Value{}, errors.Wrap(err, "couldn't decode number literal")
		}
		return NewFloat(f), nil
	case fastjson.TypeObject:
		if raw := v.GetStringBytes("decimal"); raw != nil {
			out, err := NewDecimalFromString(string(raw))
			if err != nil {
				return Value{}, errors.Wrap(err, "couldn't decode decimal literal")
			}
			return out, nil
		}
		if raw := v.GetStringBytes("date"); raw != nil {
			t, err := time.Parse("2006-01-02", string(raw))
			if err != nil {
				return Value{}, errors.Wrap(err, "couldn't decode date literal")
			}
			return NewDate(t), nil
		}
		if raw := v.GetStringBytes("timestamp"); raw != nil {
			t, err := time.Parse(time.RFC3339Nano, string(raw))
			if err != nil {
				return Value{}, errors.Wrap(err, "couldn't decode timestamp literal")
			}
			return NewTimestamp(t), nil
		}
		if raw := v.GetStringBytes("bytes"); raw != nil {
			out, err := base64.StdEncoding.DecodeString(string(raw))
			if err != nil {
				return Value{}, errors.Wrap(err, "couldn't decode bytes literal")
			}
			return NewBytes(out), nil
		}
		return Value{}, errors.New("literal object must have exactly one of: decimal, date, timestamp, bytes")
	default:
		return Value{}, errors.Errorf("unsupported literal of type %s", v.Type())
	}
}
