package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/tree"
)

// Filter is the wire form of a filter tree. A group sets Logic and Terms;
// a leaf sets Field, Operator and Value. The zero Filter is the empty
// object {}, which serialization uses to mark a dropped term.
//
// Value holds a scalar, or a []any for multi-value operators. Numbers
// decoded from JSON are json.Number so their literal survives a round trip.
type Filter struct {
	Logic tree.Logical
	Terms []Filter

	Field    string
	Operator string
	Value    any

	// keyed marks a leaf decoded from an object that had keys, none of
	// which set Field, Operator or Value. Such a leaf is a condition, not
	// the empty object.
	keyed bool
}

// And returns a group joining terms with AND.
func And(terms ...Filter) Filter {
	return Filter{Logic: tree.And, Terms: nonNil(terms)}
}

// Or returns a group joining terms with OR.
func Or(terms ...Filter) Filter {
	return Filter{Logic: tree.Or, Terms: nonNil(terms)}
}

// Leaf returns a condition term.
func Leaf(field, operator string, value any) Filter {
	return Filter{Field: field, Operator: operator, Value: value}
}

// IsGroup reports whether f is a group term.
func (f Filter) IsGroup() bool {
	return f.Logic != ""
}

// IsEmpty reports whether f is the empty object.
func (f Filter) IsEmpty() bool {
	return f.Logic == "" && f.Field == "" && f.Operator == "" && f.Value == nil && !f.keyed
}

// Leaves returns the leaf terms of f in depth-first order, skipping empty
// terms.
func (f Filter) Leaves() []Filter {
	var out []Filter
	var walk func(Filter)
	walk = func(t Filter) {
		if t.IsGroup() {
			for _, term := range t.Terms {
				walk(term)
			}
			return
		}
		if !t.IsEmpty() {
			out = append(out, t)
		}
	}
	walk(f)
	return out
}

// MarshalJSON encodes a group as {"and":[...]} or {"or":[...]} and a leaf
// with its keys in the fixed order field, operator, value. Absent leaf keys
// are omitted.
func (f Filter) MarshalJSON() ([]byte, error) {
	if f.IsGroup() {
		terms, err := json.Marshal(nonNil(f.Terms))
		if err != nil {
			return nil, err
		}
		key, err := json.Marshal(string(f.Logic))
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		buf.WriteByte('{')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(terms)
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	write := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", key)
		buf.Write(b)
		n++
		return nil
	}
	if f.Field != "" {
		if err := write("field", f.Field); err != nil {
			return nil, err
		}
	}
	if f.Operator != "" {
		if err := write("operator", f.Operator); err != nil {
			return nil, err
		}
	}
	if f.Value != nil {
		if err := write("value", f.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes any JSON object into f. An object with an "and"
// key is an AND group (checked before "or"); a group key whose value is
// not an array yields an empty group, and group elements that are not
// objects decode to the empty Filter. Any other object with at least one
// key is a leaf, even when none of its keys is recognized; a field or
// operator that is not a string is treated as absent. null leaves f
// untouched.
func (f *Filter) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = Filter{}
	for _, logic := range []tree.Logical{tree.And, tree.Or} {
		body, ok := raw[string(logic)]
		if !ok {
			continue
		}
		f.Logic = logic
		f.Terms = []Filter{}
		var elems []json.RawMessage
		if err := json.Unmarshal(body, &elems); err != nil {
			return nil
		}
		for _, elem := range elems {
			var term Filter
			if err := term.UnmarshalJSON(elem); err != nil {
				term = Filter{}
			}
			f.Terms = append(f.Terms, term)
		}
		return nil
	}

	if b, ok := raw["field"]; ok {
		_ = json.Unmarshal(b, &f.Field)
	}
	if b, ok := raw["operator"]; ok {
		_ = json.Unmarshal(b, &f.Operator)
	}
	if b, ok := raw["value"]; ok {
		v, err := decodeValue(b)
		if err != nil {
			return fmt.Errorf("decode value: %w", err)
		}
		f.Value = v
	}
	if len(raw) > 0 && f.Field == "" && f.Operator == "" && f.Value == nil {
		f.keyed = true
	}
	return nil
}

func decodeValue(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func nonNil(terms []Filter) []Filter {
	if terms == nil {
		return []Filter{}
	}
	return terms
}

// asList returns v as a []any when it is a slice or array of any element
// type. Byte slices are scalars.
func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
