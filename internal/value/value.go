package value

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedType is returned when a Go value has no SQL parameter form.
var ErrUnsupportedType = errors.New("unsupported parameter type")

// Value is a sealed interface over the bindable SQL value kinds.
type Value interface {
	sqlValue() // Sealed - only the types below implement it

	// Kind names the storage class ("null", "integer", "real", "text", "blob").
	Kind() string
}

// Null is the SQL NULL value.
type Null struct{}

func (Null) sqlValue()      {}
func (Null) Kind() string   { return "null" }
func (Null) String() string { return "NULL" }

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Int is a 64-bit signed integer.
type Int int64

func (Int) sqlValue()        {}
func (Int) Kind() string     { return "integer" }
func (v Int) String() string { return strconv.FormatInt(int64(v), 10) }

// Float is a 64-bit floating point number.
type Float float64

func (Float) sqlValue()        {}
func (Float) Kind() string     { return "real" }
func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// MarshalJSON implements json.Marshaler for Float.
// NaN and infinities have no JSON form and are written as strings.
func (v Float) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(v.String())
	}
	return json.Marshal(f)
}

// Text is a UTF-8 string.
type Text string

func (Text) sqlValue()        {}
func (Text) Kind() string     { return "text" }
func (v Text) String() string { return string(v) }

// Blob is an opaque byte sequence.
type Blob []byte

func (Blob) sqlValue()    {}
func (Blob) Kind() string { return "blob" }

// String renders the blob as a SQL hex literal.
func (v Blob) String() string {
	return "x'" + hex.EncodeToString(v) + "'"
}

// Of converts a Go value into a Value.
//
// Accepted: nil, Value, all signed and unsigned integer widths, float32/64,
// string, []byte, bool (stored as 0/1) and time.Time (stored as RFC 3339 text).
// A uint64 above math.MaxInt64 cannot be represented and is rejected.
func Of(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		if b, ok := val.(Blob); ok && b == nil {
			return Null{}, nil
		}
		return val, nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint64(uint64(val))
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		return fromUint64(val)
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case string:
		return Text(val), nil
	case []byte:
		if val == nil {
			return Null{}, nil
		}
		return Blob(val), nil
	case bool:
		if val {
			return Int(1), nil
		}
		return Int(0), nil
	case time.Time:
		return Text(val.Format(time.RFC3339Nano)), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

func fromUint64(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("%w: uint64 %d overflows int64", ErrUnsupportedType, u)
	}
	return Int(int64(u)), nil
}

// OfAll converts each argument with Of, reporting the failing position.
// The returned slice is never nil.
func OfAll(args []any) ([]Value, error) {
	vals := make([]Value, len(args))
	for i, a := range args {
		v, err := Of(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		vals[i] = v
	}
	return vals, nil
}

// FromColumn converts a value scanned by the driver into a Value.
// The sqlite3 driver yields int64, float64, string, []byte, bool, time.Time or nil.
func FromColumn(src any) (Value, error) {
	switch val := src.(type) {
	case []byte:
		// database/sql already copied the bytes when scanning into *any.
		return Blob(val), nil
	default:
		return Of(src)
	}
}

// Arg converts a Value into the argument form database/sql expects.
func Arg(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Text:
		return string(val)
	case Blob:
		return []byte(val)
	default:
		return nil
	}
}

// Args converts a slice of Values into driver arguments.
func Args(vals []Value) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = Arg(v)
	}
	return out
}

// Parse interprets a command-line literal.
//
//	null        -> Null
//	42, -7      -> Int
//	3.5, 1e3    -> Float
//	x'cafe'     -> Blob (falls back to Text on bad hex)
//	'quoted'    -> Text without the quotes
//	anything    -> Text
func Parse(s string) Value {
	if strings.EqualFold(s, "null") {
		return Null{}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "nNiI") {
		return Float(f)
	}
	if len(s) >= 3 && (s[0] == 'x' || s[0] == 'X') && s[1] == '\'' && s[len(s)-1] == '\'' {
		if b, err := hex.DecodeString(s[2 : len(s)-1]); err == nil {
			return Blob(b)
		}
	}
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return Text(s[1 : len(s)-1])
	}
	return Text(s)
}

// Equal reports whether two Values have the same kind and content.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Blob:
		bv, ok := b.(Blob)
		return ok && string(av) == string(bv)
	case nil:
		return b == nil
	default:
		return a == b
	}
}
