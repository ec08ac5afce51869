package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DataType is the type of a schema field. It selects the operator list
// that applies to the field and the value checks the validator runs.
type DataType string

// Supported data types.
const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeBoolean DataType = "boolean"
	TypeDate    DataType = "date"
)

// Valid reports whether t is one of the supported data types.
func (t DataType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeDate:
		return true
	default:
		return false
	}
}

// Option is one entry of an enumerated field.
type Option struct {
	Label string `mapstructure:"label" json:"label" validate:"required"`
	Value any    `mapstructure:"value" json:"value"`
}

// FieldConfig describes a single filterable field.
type FieldConfig struct {
	Type     DataType `mapstructure:"type" json:"type" validate:"required,oneof=string number boolean date"`
	Label    string   `mapstructure:"label" json:"label" validate:"required"`
	Options  []Option `mapstructure:"options" json:"options,omitempty" validate:"omitempty,dive"`
	Required bool     `mapstructure:"required" json:"required,omitempty"`
	Nullable bool     `mapstructure:"nullable" json:"nullable,omitempty"`
}

// HasOptions reports whether the field is enumerated.
func (f FieldConfig) HasOptions() bool {
	return len(f.Options) > 0
}

// HasOption reports whether v equals the value of one of the field options.
// Numbers compare by numeric value regardless of their Go representation;
// a string never equals a number.
func (f FieldConfig) HasOption(v any) bool {
	for _, opt := range f.Options {
		if SameValue(opt.Value, v) {
			return true
		}
	}
	return false
}

// Config is the host-supplied description of filterable fields and the
// operators legal for each data type. The engine treats it as read-only.
type Config struct {
	Fields    map[string]FieldConfig `mapstructure:"fields" json:"fields" validate:"required,min=1,dive"`
	Operators map[DataType][]string  `mapstructure:"operators" json:"operators" validate:"dive,keys,oneof=string number boolean date,endkeys"`
}

// DefaultOperators is the operator table used when a schema document does
// not declare one.
var DefaultOperators = map[DataType][]string{
	TypeString:  {"eq", "neq", "contains", "starts_with", "ends_with"},
	TypeNumber:  {"eq", "neq", "gt", "lt", "between"},
	TypeBoolean: {"eq", "neq"},
	TypeDate:    {"eq", "neq", "before", "after", "between"},
}

// New creates a Config from fields. A nil operators map selects a copy of
// DefaultOperators.
func New(fields map[string]FieldConfig, operators map[DataType][]string) *Config {
	if fields == nil {
		fields = make(map[string]FieldConfig)
	}
	if operators == nil {
		operators = defaultOperators()
	}
	return &Config{Fields: fields, Operators: operators}
}

func defaultOperators() map[DataType][]string {
	ops := make(map[DataType][]string, len(DefaultOperators))
	for t, list := range DefaultOperators {
		ops[t] = slices.Clone(list)
	}
	return ops
}

// Field returns the configuration of the named field.
func (c *Config) Field(name string) (FieldConfig, bool) {
	if c == nil {
		return FieldConfig{}, false
	}
	f, ok := c.Fields[name]
	return f, ok
}

// OperatorsFor returns the ordered operator list for t.
func (c *Config) OperatorsFor(t DataType) []string {
	if c == nil {
		return nil
	}
	return c.Operators[t]
}

// Allows reports whether op is legal for fields of type t.
func (c *Config) Allows(t DataType, op string) bool {
	return slices.Contains(c.OperatorsFor(t), op)
}

// FieldNames returns the field names in sorted order.
func (c *Config) FieldNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Fields))
	for name := range c.Fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ErrInvalidSchema indicates a schema document failed validation.
var ErrInvalidSchema = errors.New("invalid schema")

// Error lists every problem found in a schema.
type Error struct {
	Problems []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidSchema, strings.Join(e.Problems, "; "))
}

// Unwrap returns ErrInvalidSchema for errors.Is support.
func (e *Error) Unwrap() error {
	return ErrInvalidSchema
}

// SameValue compares two option or filter values. Numeric values of any Go
// representation (including json.Number) compare numerically; everything
// else compares with ==.
func SameValue(a, b any) bool {
	fa, aNum := Number(a)
	fb, bNum := Number(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}

// Number returns v as a float64 when v holds a numeric Go value or a
// json.Number. Strings are not parsed.
func Number(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
