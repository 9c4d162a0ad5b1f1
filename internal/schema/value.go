package schema

import (
	"encoding/json"
	"strconv"
	"time"
)

// Kind tags a coerced value. The pipeline only ever produces these five;
// payload shapes outside them (objects, arrays) fail coercion instead.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
)

// Value is the typed result of coercing one payload field. It is a tagged
// union rather than a bare `any` so downstream code can switch on Kind
// without re-inspecting the dynamic type.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	t    time.Time
}

func NullValue() Value            { return Value{kind: KindNull} }
func StringValue(s string) Value  { return Value{kind: KindString, str: s} }
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }
func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t.UTC()} }

func (v Value) Kind() Kind { return v.kind }

// Interface returns the plain Go representation used for persistence:
// nil, string, float64 or bool. Datetimes become RFC 3339 UTC strings so
// lead data round-trips through jsonb without loss.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindTime:
		return v.t.Format(time.RFC3339)
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// String renders the value the way the string coercion rule would.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}
