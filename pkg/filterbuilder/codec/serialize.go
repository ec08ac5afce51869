package codec

import (
	"encoding/json"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/tree"
)

// Serialize converts a tree into its wire form, normalizing as it goes:
//   - a condition without a field or operator becomes the empty Filter;
//   - a complete condition carries Values when set, otherwise Value;
//   - a group keeps only children that serialize to a complete term, and
//     collapses to the empty Filter when none survive.
//
// A group with no logical operator is written as AND.
func Serialize(n tree.Node) Filter {
	switch n := n.(type) {
	case tree.Condition:
		if n.Field == "" || n.Operator == "" {
			return Filter{}
		}
		f := Filter{Field: n.Field, Operator: n.Operator, Value: n.Value}
		if n.Values != nil {
			values := make([]any, len(n.Values))
			copy(values, n.Values)
			f.Value = values
		}
		return f

	case tree.Group:
		terms := make([]Filter, 0, len(n.Children))
		for _, child := range n.Children {
			term := Serialize(child)
			if dropped(term) {
				continue
			}
			terms = append(terms, term)
		}
		if len(terms) == 0 {
			return Filter{}
		}
		logic := n.Operator
		if logic == "" {
			logic = tree.And
		}
		return Filter{Logic: logic, Terms: terms}
	}
	return Filter{}
}

func dropped(f Filter) bool {
	if f.IsEmpty() {
		return true
	}
	return !f.IsGroup() && (f.Field == "" || f.Operator == "")
}

// Deserialize builds a tree from f. Every node gets a fresh id. The empty
// Filter yields an empty AND group; a leaf decoded from an object with only
// unrecognized keys yields an empty condition. A leaf whose Value is a list stores it
// as Values.
func Deserialize(f Filter) tree.Node {
	if f.IsGroup() {
		g := tree.NewGroup(f.Logic)
		for _, term := range f.Terms {
			g.Children = append(g.Children, Deserialize(term))
		}
		return g
	}
	if f.IsEmpty() {
		return tree.NewGroup(tree.And)
	}

	c := tree.NewCondition()
	c.Field = f.Field
	c.Operator = f.Operator
	if values, ok := asList(f.Value); ok {
		c.Values = values
	} else {
		c.Value = f.Value
	}
	return c
}

// Marshal serializes n and encodes the result as JSON.
func Marshal(n tree.Node) ([]byte, error) {
	return json.Marshal(Serialize(n))
}

// Unmarshal decodes JSON into a tree. It never fails: malformed JSON,
// null, a non-object or an empty object all yield a fresh empty AND group.
func Unmarshal(data []byte) tree.Node {
	var f Filter
	if err := json.Unmarshal(data, &f); err != nil {
		return tree.NewGroup(tree.And)
	}
	return Deserialize(f)
}
