package validate

import (
	"fmt"
	"strings"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/schema"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/tree"
)

// Severity classifies an Issue.
type Severity string

// Issue severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// PathSeparator joins node ids in an issue path.
const PathSeparator = " > "

// Issue is one validation finding attached to a node.
type Issue struct {
	NodeID   string   `json:"nodeId"`
	Path     string   `json:"path"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// String formats the issue as "path: message".
func (i Issue) String() string {
	return i.Path + ": " + i.Message
}

// Result is the outcome of validating a whole tree. Errors and Warnings
// hold the formatted issues of each severity; Issues holds all of them in
// discovery order. IsValid is true iff Errors is empty.
type Result struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Issues   []Issue  `json:"issues"`
}

// Options relaxes validation.
type Options struct {
	// AllowEmptyGroups downgrades the empty-group error to a warning.
	AllowEmptyGroups bool

	// AllowIncompleteConditions downgrades a missing field, operator or
	// single value to a warning.
	AllowIncompleteConditions bool

	// Custom holds extra per-field predicates over single values. They run
	// only when the built-in checks for that condition pass.
	Custom map[string]func(value any) bool
}

// Filter validates every node reachable from root against cfg and returns
// the complete list of findings. It never stops at the first error.
func Filter(root tree.Node, cfg *schema.Config, opts Options) Result {
	c := &checker{
		cfg:  cfg,
		opts: opts,
		res: Result{
			Errors:   []string{},
			Warnings: []string{},
			Issues:   []Issue{},
		},
	}
	if root != nil {
		c.node(root, "")
	}
	c.res.IsValid = len(c.res.Errors) == 0
	return c.res
}

// Condition validates a single condition while it is being edited:
// missing parts are warnings rather than errors.
func Condition(cond tree.Condition, cfg *schema.Config) []Issue {
	return Filter(cond, cfg, Options{
		AllowEmptyGroups:          true,
		AllowIncompleteConditions: true,
	}).Issues
}

type checker struct {
	cfg  *schema.Config
	opts Options
	res  Result
}

func (c *checker) node(n tree.Node, parent string) {
	path := n.NodeID()
	if parent != "" {
		path = parent + PathSeparator + path
	}
	switch n := n.(type) {
	case tree.Group:
		c.group(n, path)
	case tree.Condition:
		c.condition(n, path)
	}
}

func (c *checker) add(sev Severity, n tree.Node, path, msg string) {
	issue := Issue{NodeID: n.NodeID(), Path: path, Message: msg, Severity: sev}
	if cond, ok := n.(tree.Condition); ok {
		issue.Field = cond.Field
	}
	c.res.Issues = append(c.res.Issues, issue)
	if sev == SeverityError {
		c.res.Errors = append(c.res.Errors, issue.String())
	} else {
		c.res.Warnings = append(c.res.Warnings, issue.String())
	}
}

func (c *checker) errorf(n tree.Node, path, format string, args ...any) {
	c.add(SeverityError, n, path, fmt.Sprintf(format, args...))
}

func (c *checker) warnf(n tree.Node, path, format string, args ...any) {
	c.add(SeverityWarning, n, path, fmt.Sprintf(format, args...))
}

// incomplete reports a missing part as an error, or as a warning when
// incomplete conditions are allowed.
func (c *checker) incomplete(n tree.Node, path, errMsg, warnMsg string) {
	if c.opts.AllowIncompleteConditions {
		c.warnf(n, path, "%s", warnMsg)
		return
	}
	c.errorf(n, path, "%s", errMsg)
}

func (c *checker) group(g tree.Group, path string) {
	if len(g.Children) == 0 {
		if c.opts.AllowEmptyGroups {
			c.warnf(g, path, "empty group")
		} else {
			c.errorf(g, path, "group must contain at least one condition or child group")
		}
		return
	}

	if !g.Operator.Valid() {
		c.errorf(g, path, "group must have a valid logical operator (and/or)")
	}

	for _, child := range g.Children {
		c.node(child, path)
	}

	if len(g.Children) == 1 {
		c.warnf(g, path, "group contains only one item, consider simplifying (redundant nesting)")
	}
}

func (c *checker) condition(n tree.Condition, path string) {
	if n.Field == "" {
		c.incomplete(n, path, "field is required", "no field selected")
		return
	}

	fc, ok := c.cfg.Field(n.Field)
	if !ok {
		c.errorf(n, path, "unknown field %q", n.Field)
		return
	}

	if n.Operator == "" {
		c.incomplete(n, path, "operator is required", "no operator selected")
		return
	}

	if !c.cfg.Allows(fc.Type, n.Operator) {
		c.errorf(n, path, "operator %q is not valid for field type %q", n.Operator, fc.Type)
		return
	}

	switch schema.ClassOf(n.Operator) {
	case schema.ClassNone:
		if n.Value != nil || n.Values != nil {
			c.warnf(n, path, "operator %q does not require a value", n.Operator)
		}
	case schema.ClassRange:
		c.between(n, fc, path)
	case schema.ClassMulti:
		c.multi(n, fc, path)
	default:
		c.single(n, fc, path)
	}
}

func (c *checker) between(n tree.Condition, fc schema.FieldConfig, path string) {
	if n.Values == nil {
		c.errorf(n, path, "operator %q requires multiple values", n.Operator)
		return
	}
	if len(n.Values) != 2 {
		c.errorf(n, path, "%q operator requires exactly 2 values", n.Operator)
		return
	}
	lo, hi := n.Values[0], n.Values[1]
	if isBlank(lo) || isBlank(hi) {
		c.errorf(n, path, "%q operator requires both min and max values", n.Operator)
		return
	}

	switch fc.Type {
	case schema.TypeNumber:
		low, okLow := parseNumber(lo)
		high, okHigh := parseNumber(hi)
		switch {
		case !okLow || !okHigh:
			c.errorf(n, path, "invalid number in %q values", n.Operator)
		case low >= high:
			c.errorf(n, path, "minimum value must be less than maximum value")
		}
	case schema.TypeDate:
		start, okStart := parseDate(lo)
		end, okEnd := parseDate(hi)
		switch {
		case !okStart || !okEnd:
			c.errorf(n, path, "invalid date format in %q values", n.Operator)
		case !start.Before(end):
			c.errorf(n, path, "start date must be before end date")
		}
	}
}

func (c *checker) multi(n tree.Condition, fc schema.FieldConfig, path string) {
	if n.Values == nil {
		c.errorf(n, path, "operator %q requires multiple values", n.Operator)
		return
	}
	if len(n.Values) == 0 {
		c.errorf(n, path, "%q operator requires at least one value", n.Operator)
		return
	}

	for _, v := range n.Values {
		if isBlank(v) {
			c.errorf(n, path, "%q operator contains empty values", n.Operator)
			break
		}
	}

	if !fc.HasOptions() {
		return
	}
	var invalid []string
	for _, v := range n.Values {
		if !fc.HasOption(v) {
			invalid = append(invalid, display(v))
		}
	}
	if len(invalid) > 0 {
		c.errorf(n, path, "invalid values for field %q: %s", n.Field, strings.Join(invalid, ", "))
	}
}

func (c *checker) single(n tree.Condition, fc schema.FieldConfig, path string) {
	if isBlank(n.Value) {
		c.incomplete(n, path,
			fmt.Sprintf("value is required for operator %q", n.Operator),
			fmt.Sprintf("no value provided for operator %q", n.Operator))
		return
	}

	before := len(c.res.Errors)
	v := n.Value

	switch fc.Type {
	case schema.TypeNumber:
		if _, ok := parseNumber(v); !ok {
			c.errorf(n, path, "%q is not a valid number for field %q", display(v), n.Field)
		}
	case schema.TypeDate:
		if _, ok := parseDate(v); !ok {
			c.errorf(n, path, "%q is not a valid date for field %q", display(v), n.Field)
		}
	case schema.TypeBoolean:
		if !isBoolean(v) {
			c.errorf(n, path, "%q is not a valid boolean for field %q", display(v), n.Field)
		}
	}

	if fc.HasOptions() && !fc.HasOption(v) {
		c.errorf(n, path, "%q is not a valid option for field %q", display(v), n.Field)
	}

	if len(c.res.Errors) > before {
		return
	}
	if fn, ok := c.opts.Custom[n.Field]; ok && fn != nil && !fn(v) {
		c.errorf(n, path, "%q failed custom validation for field %q", display(v), n.Field)
	}
}
