package validate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/schema"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/tree"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/validate"
)

func testSchema() *schema.Config {
	return schema.New(
		map[string]schema.FieldConfig{
			"age":    {Type: schema.TypeNumber, Label: "Age"},
			"name":   {Type: schema.TypeString, Label: "Name"},
			"active": {Type: schema.TypeBoolean, Label: "Active"},
			"joined": {Type: schema.TypeDate, Label: "Joined"},
			"status": {
				Type:  schema.TypeString,
				Label: "Status",
				Options: []schema.Option{
					{Label: "Active", Value: "active"},
					{Label: "Pending", Value: "pending"},
				},
			},
		},
		map[schema.DataType][]string{
			schema.TypeNumber:  {"eq", "gt", "lt", "between", "in", "is_null"},
			schema.TypeString:  {"eq", "contains", "in", "not_in", "is_null"},
			schema.TypeBoolean: {"eq"},
			schema.TypeDate:    {"before", "after", "between"},
		},
	)
}

func cond(field, op string, value any) tree.Condition {
	return tree.Condition{ID: "c", Field: field, Operator: op, Value: value}
}

func condValues(field, op string, values ...any) tree.Condition {
	if values == nil {
		values = []any{}
	}
	return tree.Condition{ID: "c", Field: field, Operator: op, Values: values}
}

func TestFilter_SimpleSchema(t *testing.T) {
	cfg := schema.New(
		map[string]schema.FieldConfig{"age": {Type: schema.TypeNumber, Label: "Age"}},
		map[schema.DataType][]string{schema.TypeNumber: {"gt", "lt"}},
	)

	res := validate.Filter(tree.Condition{ID: "c", Field: "age", Operator: "gt", Value: 18}, cfg, validate.Options{})
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.NotNil(t, res.Errors)

	res = validate.Filter(tree.Condition{ID: "c", Operator: "gt", Value: 18}, cfg, validate.Options{})
	assert.False(t, res.IsValid)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "field is required")

	res = validate.Filter(tree.Condition{ID: "c", Field: "age", Operator: "between", Values: []any{30}}, cfg, validate.Options{})
	assert.False(t, res.IsValid)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "not valid for field type")
}

func TestFilter_Condition(t *testing.T) {
	tests := []struct {
		name     string
		cond     tree.Condition
		opts     validate.Options
		wantErr  string
		wantWarn string
	}{
		{name: "valid single", cond: cond("age", "gt", 18)},
		{name: "missing field", cond: cond("", "gt", 18), wantErr: "field is required"},
		{
			name:     "missing field allowed",
			cond:     cond("", "gt", 18),
			opts:     validate.Options{AllowIncompleteConditions: true},
			wantWarn: "no field selected",
		},
		{name: "unknown field", cond: cond("height", "gt", 1), wantErr: `unknown field "height"`},
		{name: "missing operator", cond: cond("age", "", 1), wantErr: "operator is required"},
		{
			name:     "missing operator allowed",
			cond:     cond("age", "", 1),
			opts:     validate.Options{AllowIncompleteConditions: true},
			wantWarn: "no operator selected",
		},
		{
			name:    "operator not allowed",
			cond:    cond("name", "gt", "x"),
			wantErr: `operator "gt" is not valid for field type "string"`,
		},

		// between
		{name: "between one value", cond: condValues("age", "between", 30), wantErr: "exactly 2 values"},
		{name: "between three values", cond: condValues("age", "between", 1, 2, 3), wantErr: "exactly 2 values"},
		{name: "between without values", cond: cond("age", "between", 5), wantErr: "requires multiple values"},
		{name: "between blank min", cond: condValues("age", "between", "", 5), wantErr: "both min and max"},
		{name: "between blank max", cond: condValues("age", "between", 5, nil), wantErr: "both min and max"},
		{name: "between reversed", cond: condValues("age", "between", 65, 18), wantErr: "minimum value must be less than maximum value"},
		{name: "between equal", cond: condValues("age", "between", 18, 18), wantErr: "minimum value must be less than maximum value"},
		{name: "between not numeric", cond: condValues("age", "between", "x", 5), wantErr: "invalid number"},
		{name: "between numeric strings", cond: condValues("age", "between", "18", "65")},
		{name: "between json numbers", cond: condValues("age", "between", json.Number("1.5"), json.Number("2"))},
		{
			name:    "between dates reversed",
			cond:    condValues("joined", "between", "2024-01-01", "2023-01-01"),
			wantErr: "start date must be before end date",
		},
		{
			name:    "between bad date",
			cond:    condValues("joined", "between", "nope", "2023-01-01"),
			wantErr: "invalid date format",
		},
		{name: "between dates", cond: condValues("joined", "between", "2023-01-01", "2024-01-01T10:00:00Z")},

		// in / not_in
		{name: "in empty", cond: condValues("name", "in"), wantErr: "requires at least one value"},
		{name: "in without values", cond: cond("name", "in", "a"), wantErr: "requires multiple values"},
		{name: "in blank entry", cond: condValues("name", "in", "a", ""), wantErr: "contains empty values"},
		{name: "in null entry", cond: condValues("name", "not_in", nil), wantErr: "contains empty values"},
		{name: "in", cond: condValues("name", "in", "a", "b")},
		{
			name:    "in outside options",
			cond:    condValues("status", "in", "active", "gone", "lost"),
			wantErr: `invalid values for field "status": gone, lost`,
		},
		{name: "in options", cond: condValues("status", "in", "active", "pending")},
		{name: "in numbers", cond: condValues("age", "in", 1, json.Number("2"))},

		// no-value operators
		{name: "is_null", cond: cond("age", "is_null", nil)},
		{name: "is_null with value", cond: cond("age", "is_null", 3), wantWarn: `operator "is_null" does not require a value`},
		{
			name:     "is_null with values",
			cond:     condValues("age", "is_null", 3),
			wantWarn: "does not require a value",
		},

		// single values
		{name: "value missing", cond: cond("age", "gt", nil), wantErr: `value is required for operator "gt"`},
		{name: "value empty string", cond: cond("name", "eq", ""), wantErr: "value is required"},
		{
			name:     "value missing allowed",
			cond:     cond("age", "gt", nil),
			opts:     validate.Options{AllowIncompleteConditions: true},
			wantWarn: `no value provided for operator "gt"`,
		},
		{name: "number from string", cond: cond("age", "eq", "42")},
		{name: "number from json", cond: cond("age", "eq", json.Number("4.5"))},
		{name: "not a number", cond: cond("age", "eq", "abc"), wantErr: `"abc" is not a valid number for field "age"`},
		{name: "bool is not a number", cond: cond("age", "eq", true), wantErr: "is not a valid number"},
		{name: "boolean", cond: cond("active", "eq", true)},
		{name: "boolean string", cond: cond("active", "eq", "false")},
		{name: "not a boolean", cond: cond("active", "eq", "yes"), wantErr: `"yes" is not a valid boolean for field "active"`},
		{name: "date", cond: cond("joined", "before", "2024-05-01")},
		{name: "date millis", cond: cond("joined", "after", 1700000000000)},
		{name: "not a date", cond: cond("joined", "before", "2024-13-45"), wantErr: "is not a valid date"},
		{name: "option", cond: cond("status", "eq", "active")},
		{name: "not an option", cond: cond("status", "eq", "gone"), wantErr: `"gone" is not a valid option for field "status"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validate.Filter(tt.cond, testSchema(), tt.opts)

			if tt.wantErr == "" {
				assert.True(t, res.IsValid, "errors: %v", res.Errors)
				assert.Empty(t, res.Errors)
			} else {
				assert.False(t, res.IsValid)
				require.NotEmpty(t, res.Errors)
				assert.Contains(t, res.Errors[0], tt.wantErr)
				assert.Contains(t, res.Errors[0], "c: ", "prefixed with the node path")
			}

			if tt.wantWarn == "" {
				assert.Empty(t, res.Warnings)
			} else {
				require.NotEmpty(t, res.Warnings)
				assert.Contains(t, res.Warnings[0], tt.wantWarn)
			}
		})
	}
}

func TestFilter_Groups(t *testing.T) {
	valid := tree.Condition{ID: "a", Field: "age", Operator: "gt", Value: 1}
	other := tree.Condition{ID: "b", Field: "name", Operator: "eq", Value: "x"}

	t.Run("empty group", func(t *testing.T) {
		res := validate.Filter(tree.Group{ID: "g", Operator: tree.And}, testSchema(), validate.Options{})
		assert.False(t, res.IsValid)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "g: group must contain at least one condition or child group", res.Errors[0])
	})

	t.Run("empty group allowed", func(t *testing.T) {
		res := validate.Filter(tree.Group{ID: "g", Operator: tree.And}, testSchema(), validate.Options{AllowEmptyGroups: true})
		assert.True(t, res.IsValid)
		assert.Equal(t, []string{"g: empty group"}, res.Warnings)
	})

	t.Run("invalid operator", func(t *testing.T) {
		g := tree.Group{ID: "g", Operator: "xor", Children: []tree.Node{valid, other}}
		res := validate.Filter(g, testSchema(), validate.Options{})
		assert.False(t, res.IsValid)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "valid logical operator (and/or)")
	})

	t.Run("single child", func(t *testing.T) {
		g := tree.Group{ID: "g", Operator: tree.Or, Children: []tree.Node{valid}}
		res := validate.Filter(g, testSchema(), validate.Options{})
		assert.True(t, res.IsValid)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "redundant nesting")
	})

	t.Run("two children", func(t *testing.T) {
		g := tree.Group{ID: "g", Operator: tree.And, Children: []tree.Node{valid, other}}
		res := validate.Filter(g, testSchema(), validate.Options{})
		assert.True(t, res.IsValid)
		assert.Empty(t, res.Warnings)
	})
}

func TestFilter_PathsAndAccumulation(t *testing.T) {
	root := tree.Group{ID: "g1", Operator: tree.And, Children: []tree.Node{
		tree.Condition{ID: "c1", Field: "height", Operator: "gt", Value: 1},
		tree.Group{ID: "g2", Operator: tree.Or, Children: []tree.Node{
			tree.Condition{ID: "c2", Field: "age", Operator: "gt", Value: 1},
			tree.Condition{ID: "c3"},
			tree.Group{ID: "g3", Operator: tree.And},
		}},
	}}

	res := validate.Filter(root, testSchema(), validate.Options{})
	assert.False(t, res.IsValid)
	assert.Equal(t, []string{
		`g1 > c1: unknown field "height"`,
		"g1 > g2 > c3: field is required",
		"g1 > g2 > g3: group must contain at least one condition or child group",
	}, res.Errors)
	assert.Empty(t, res.Warnings)

	require.Len(t, res.Issues, 3)
	assert.Equal(t, validate.Issue{
		NodeID:   "c1",
		Path:     "g1 > c1",
		Field:    "height",
		Message:  `unknown field "height"`,
		Severity: validate.SeverityError,
	}, res.Issues[0])
	assert.Equal(t, "g3", res.Issues[2].NodeID)
	assert.Empty(t, res.Issues[2].Field)
}

func TestFilter_CustomValidators(t *testing.T) {
	called := false
	opts := validate.Options{Custom: map[string]func(any) bool{
		"name": func(v any) bool {
			s, _ := v.(string)
			return len(s) >= 3
		},
		"age": func(any) bool {
			called = true
			return false
		},
	}}

	res := validate.Filter(cond("name", "eq", "ab"), testSchema(), opts)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "failed custom validation")

	res = validate.Filter(cond("name", "eq", "abc"), testSchema(), opts)
	assert.True(t, res.IsValid)

	res = validate.Filter(cond("age", "eq", "abc"), testSchema(), opts)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "is not a valid number")
	assert.False(t, called, "custom check skipped when built-in checks fail")
}

func TestFilter_NilInputs(t *testing.T) {
	res := validate.Filter(nil, testSchema(), validate.Options{})
	assert.True(t, res.IsValid)
	assert.NotNil(t, res.Issues)

	res = validate.Filter(cond("age", "gt", 1), nil, validate.Options{})
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors[0], "unknown field")
}

func TestCondition(t *testing.T) {
	issues := validate.Condition(tree.Condition{ID: "c9", Field: "age"}, testSchema())
	require.Len(t, issues, 1)
	assert.Equal(t, "c9", issues[0].NodeID)
	assert.Equal(t, "age", issues[0].Field)
	assert.Equal(t, validate.SeverityWarning, issues[0].Severity)
	assert.Equal(t, "no operator selected", issues[0].Message)

	issues = validate.Condition(tree.Condition{ID: "c9", Field: "age", Operator: "gt", Value: "x"}, testSchema())
	require.Len(t, issues, 1)
	assert.Equal(t, validate.SeverityError, issues[0].Severity)

	assert.Empty(t, validate.Condition(tree.Condition{ID: "c9", Field: "age", Operator: "gt", Value: 3}, testSchema()))
}

func TestResultJSON(t *testing.T) {
	res := validate.Filter(tree.Group{ID: "g", Operator: tree.And}, testSchema(), validate.Options{})
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"isValid": false,
		"errors": ["g: group must contain at least one condition or child group"],
		"warnings": [],
		"issues": [{"nodeId":"g","path":"g","message":"group must contain at least one condition or child group","severity":"error"}]
	}`, string(data))
}

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name string
		root tree.Node
		want bool
	}{
		{"nil", nil, false},
		{"empty group", tree.NewGroup(tree.And), false},
		{"single value", cond("age", "gt", 1), true},
		{"blank value", cond("age", "gt", ""), false},
		{"unknown field", cond("height", "gt", 1), false},
		{"operator not allowed", cond("name", "gt", "x"), false},
		{"no-value operator", cond("age", "is_null", nil), true},
		{"between one value", condValues("age", "between", 1), false},
		{"between", condValues("age", "between", 1, 2), true},
		{"in with blank", condValues("name", "in", "a", nil), false},
		{"in", condValues("name", "in", "a"), true},
		{
			"one complete branch is enough",
			tree.Group{ID: "g", Operator: tree.And, Children: []tree.Node{
				tree.Condition{ID: "x"},
				tree.Group{ID: "h", Operator: tree.Or, Children: []tree.Node{cond("age", "lt", 9)}},
			}},
			true,
		},
		{
			"all incomplete",
			tree.Group{ID: "g", Operator: tree.And, Children: []tree.Node{
				tree.Condition{ID: "x", Field: "age"},
				tree.Condition{ID: "y", Field: "age", Operator: "gt"},
			}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validate.IsComplete(tt.root, testSchema()))
		})
	}
}
