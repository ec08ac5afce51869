package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var structValidator = validator.New()

// Validate checks the schema for structural problems: unknown data types,
// missing labels, unlabeled options and operator tables keyed by unknown
// data types. All problems are reported together in a *Error.
func (c *Config) Validate() error {
	if c == nil {
		return &Error{Problems: []string{"schema is nil"}}
	}
	err := structValidator.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return &Error{Problems: problems}
}

func describe(fe validator.FieldError) string {
	ns := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return ns + " is required"
	case "min":
		return ns + " must have at least " + fe.Param() + " entry"
	case "oneof":
		return fmt.Sprintf("%s %q must be one of [%s]", ns, fmt.Sprint(fe.Value()), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", ns, fe.Tag())
	}
}

// FromFile loads a schema document, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return nil, fmt.Errorf("unsupported schema file extension: %s", ext)
	}
}

// FromYAML parses a YAML schema document.
func FromYAML(data []byte) (*Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return FromMap(m)
}

// FromJSON parses a JSON schema document.
func FromJSON(data []byte) (*Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return FromMap(m)
}

// FromMap decodes a generic document with "fields" and "operators" keys.
// Unknown keys are rejected so that typos surface at load time. A missing
// operators table selects DefaultOperators.
func FromMap(m map[string]any) (*Config, error) {
	if m == nil {
		return nil, &Error{Problems: []string{"schema document is empty"}}
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	if cfg.Operators == nil {
		cfg.Operators = defaultOperators()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
