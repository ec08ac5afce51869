// Package query encodes filters for transport to a backend.
//
// GET-style transports receive a flat query string built from the leaf
// conditions of a filter:
//
//	cond[0].field=age&cond[0].op=gt&cond[0].value=18
//
// Grouping is not representable in this encoding; every leaf is emitted in
// depth-first order and the AND/OR structure is lost. POST-style transports
// receive the filter itself as the request body.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/codec"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/schema"
)

// ErrMalformed is returned by ParseQueryString for input that is not a
// condition query string.
var ErrMalformed = errors.New("malformed filter query string")

// componentEscaper turns url.QueryEscape output into the escaping used by
// browsers' encodeURIComponent.
var componentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

var condKey = regexp.MustCompile(`^cond\[(\d+)\]\.(field|op|value)$`)

func escape(s string) string {
	return componentEscaper.Replace(url.QueryEscape(s))
}

// GenerateQueryString flattens the leaves of f into percent-encoded
// cond[i].field, cond[i].op and cond[i].value pairs. A list value repeats
// the value key once per element; an absent field, operator or value is
// skipped.
func GenerateQueryString(f codec.Filter) string {
	var parts []string
	add := func(key, value string) {
		parts = append(parts, escape(key)+"="+escape(value))
	}

	for i, leaf := range f.Leaves() {
		prefix := "cond[" + strconv.Itoa(i) + "]."
		if leaf.Field != "" {
			add(prefix+"field", leaf.Field)
		}
		if leaf.Operator != "" {
			add(prefix+"op", leaf.Operator)
		}
		if leaf.Value == nil {
			continue
		}
		if list, ok := leaf.Value.([]any); ok {
			for _, v := range list {
				add(prefix+"value", format(v))
			}
			continue
		}
		add(prefix+"value", format(leaf.Value))
	}
	return strings.Join(parts, "&")
}

// GenerateRequestBody returns the body sent by POST-style transports,
// which is the filter itself.
func GenerateRequestBody(f codec.Filter) codec.Filter {
	return f
}

// ParseQueryString rebuilds an AND group of leaves from a query string
// produced by GenerateQueryString, ordered by condition index. Values come
// back as strings. Operators that take a list (see schema.UsesValues)
// always get a list value. Keys that are not condition keys are ignored.
func ParseQueryString(qs string) (codec.Filter, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(qs, "?"))
	if err != nil {
		return codec.Filter{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	type entry struct {
		field, op string
		values    []string
	}
	entries := make(map[int]*entry)

	for key, vals := range values {
		m := condKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return codec.Filter{}, fmt.Errorf("%w: bad index in %q", ErrMalformed, key)
		}
		e, ok := entries[idx]
		if !ok {
			e = &entry{}
			entries[idx] = e
		}
		switch m[2] {
		case "field":
			e.field = vals[len(vals)-1]
		case "op":
			e.op = vals[len(vals)-1]
		case "value":
			e.values = append(e.values, vals...)
		}
	}

	indexes := make([]int, 0, len(entries))
	for idx := range entries {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	terms := make([]codec.Filter, 0, len(indexes))
	for _, idx := range indexes {
		e := entries[idx]
		if e.field == "" || e.op == "" {
			return codec.Filter{}, fmt.Errorf("%w: cond[%d] needs both field and op", ErrMalformed, idx)
		}
		leaf := codec.Leaf(e.field, e.op, nil)
		switch {
		case schema.UsesValues(e.op) || len(e.values) > 1:
			list := make([]any, len(e.values))
			for i, v := range e.values {
				list[i] = v
			}
			leaf.Value = list
		case len(e.values) == 1:
			leaf.Value = e.values[0]
		}
		terms = append(terms, leaf)
	}
	return codec.And(terms...), nil
}

// format renders a value the way a browser stringifies it.
func format(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			if item == nil {
				continue
			}
			parts[i] = format(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}
