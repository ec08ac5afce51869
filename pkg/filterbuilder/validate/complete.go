package validate

import (
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/schema"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/tree"
)

// IsComplete reports whether at least one condition reachable from root is
// complete: its field is known, its operator is allowed for the field type,
// and it carries the values its operator needs. Other branches may still
// be invalid.
func IsComplete(root tree.Node, cfg *schema.Config) bool {
	found := false
	tree.Walk(root, func(n tree.Node) bool {
		if found {
			return false
		}
		if c, ok := n.(tree.Condition); ok && conditionComplete(c, cfg) {
			found = true
		}
		return !found
	})
	return found
}

func conditionComplete(c tree.Condition, cfg *schema.Config) bool {
	if c.Field == "" || c.Operator == "" {
		return false
	}
	fc, ok := cfg.Field(c.Field)
	if !ok || !cfg.Allows(fc.Type, c.Operator) {
		return false
	}

	switch schema.ClassOf(c.Operator) {
	case schema.ClassNone:
		return true
	case schema.ClassRange:
		return len(c.Values) == 2 && noneBlank(c.Values)
	case schema.ClassMulti:
		return len(c.Values) > 0 && noneBlank(c.Values)
	default:
		return !isBlank(c.Value)
	}
}

func noneBlank(values []any) bool {
	for _, v := range values {
		if isBlank(v) {
			return false
		}
	}
	return true
}
