// Package firestore speaks the document store's REST protocol: the typed
// field envelope used for document bodies and the document client itself.
package firestore

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind enumerates the variants a field value can take.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInteger
	KindBoolean
	KindArray
	KindMap
)

// Value is a closed tagged union over the types the store's field envelope
// supports. The zero Value is the null value.
type Value struct {
	kind   Kind
	str    string
	num    int64
	truth  bool
	items  []Value
	fields map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// String wraps a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Integer wraps an integer value. Fractional numbers are not supported by the
// envelope contract, so this is the only numeric constructor.
func Integer(n int64) Value { return Value{kind: KindInteger, num: n} }

// Boolean wraps a boolean value.
func Boolean(b bool) Value { return Value{kind: KindBoolean, truth: b} }

// Array wraps an ordered list of values. Array() produces an empty list.
func Array(items ...Value) Value {
	copied := make([]Value, len(items))
	copy(copied, items)
	return Value{kind: KindArray, items: copied}
}

// Map wraps a nested record.
func Map(fields map[string]Value) Value {
	copied := make(map[string]Value, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Value{kind: KindMap, fields: copied}
}

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload; zero unless Kind is KindString.
func (v Value) Str() string { return v.str }

// Int returns the integer payload; zero unless Kind is KindInteger.
func (v Value) Int() int64 { return v.num }

// Bool returns the boolean payload; false unless Kind is KindBoolean.
func (v Value) Bool() bool { return v.truth }

// Items returns the list payload; nil unless Kind is KindArray.
func (v Value) Items() []Value { return v.items }

// Fields returns the record payload; nil unless Kind is KindMap.
func (v Value) Fields() map[string]Value { return v.fields }

// IsNull reports whether the value is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

type arrayBody struct {
	Values []Value `json:"values"`
}

type mapBody struct {
	Fields map[string]Value `json:"fields"`
}

// MarshalJSON emits the store's typed envelope for the value. Integers are
// serialized in their decimal string form, the representation the store both
// accepts and returns.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte(`{"nullValue":null}`), nil
	case KindString:
		return json.Marshal(struct {
			V string `json:"stringValue"`
		}{v.str})
	case KindInteger:
		return json.Marshal(struct {
			V string `json:"integerValue"`
		}{strconv.FormatInt(v.num, 10)})
	case KindBoolean:
		return json.Marshal(struct {
			V bool `json:"booleanValue"`
		}{v.truth})
	case KindArray:
		values := v.items
		if values == nil {
			values = []Value{}
		}
		return json.Marshal(struct {
			V arrayBody `json:"arrayValue"`
		}{arrayBody{Values: values}})
	case KindMap:
		fields := v.fields
		if fields == nil {
			fields = map[string]Value{}
		}
		return json.Marshal(struct {
			V mapBody `json:"mapValue"`
		}{mapBody{Fields: fields}})
	default:
		return nil, fmt.Errorf("firestore: cannot encode value of kind %d", v.kind)
	}
}

type rawEnvelope struct {
	NullValue    json.RawMessage  `json:"nullValue"`
	StringValue  *string          `json:"stringValue"`
	IntegerValue json.RawMessage  `json:"integerValue"`
	BooleanValue *bool            `json:"booleanValue"`
	ArrayValue   *arrayBody       `json:"arrayValue"`
	MapValue     *mapBody         `json:"mapValue"`
	Fields       map[string]Value `json:"fields"`
}

// UnmarshalJSON decodes a typed envelope, driven by whichever marker key is
// present. Array items produced by some writers arrive as a bare
// {"fields": …} record instead of a mapValue wrapper; both forms decode to
// the same map value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var env rawEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("firestore: decode envelope: %w", err)
	}

	switch {
	case env.StringValue != nil:
		*v = String(*env.StringValue)
	case env.IntegerValue != nil:
		n, err := parseIntegerValue(env.IntegerValue)
		if err != nil {
			return err
		}
		*v = Integer(n)
	case env.BooleanValue != nil:
		*v = Boolean(*env.BooleanValue)
	case env.ArrayValue != nil:
		items := env.ArrayValue.Values
		if items == nil {
			items = []Value{}
		}
		*v = Value{kind: KindArray, items: items}
	case env.MapValue != nil:
		fields := env.MapValue.Fields
		if fields == nil {
			fields = map[string]Value{}
		}
		*v = Value{kind: KindMap, fields: fields}
	case env.Fields != nil:
		*v = Value{kind: KindMap, fields: env.Fields}
	case env.NullValue != nil:
		*v = Null()
	default:
		return fmt.Errorf("firestore: envelope %s carries no recognized value marker", compact(data))
	}
	return nil
}

// parseIntegerValue accepts both the store's string form ("42") and the bare
// number some writers send.
func parseIntegerValue(raw json.RawMessage) (int64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("firestore: integerValue %q is not an integer", s)
		}
		return n, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("firestore: integerValue %s is not an integer", compact(raw))
	}
	return n, nil
}

func compact(raw []byte) string {
	const max = 120
	s := string(raw)
	if len(s) > max {
		s = s[:max] + "…"
	}
	return s
}

type documentBody struct {
	Name   string           `json:"name,omitempty"`
	Fields map[string]Value `json:"fields"`
}

// EncodeDocument serializes a field map into a document body.
func EncodeDocument(fields map[string]Value) ([]byte, error) {
	return json.Marshal(documentBody{Fields: fields})
}

// DecodeDocument parses a document body back into its field map. A document
// with no fields yields an empty, non-nil map.
func DecodeDocument(data []byte) (map[string]Value, error) {
	var body documentBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("firestore: decode document: %w", err)
	}
	if body.Fields == nil {
		body.Fields = map[string]Value{}
	}
	return body.Fields, nil
}
