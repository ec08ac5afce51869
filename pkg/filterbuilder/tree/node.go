package tree

import (
	"github.com/google/uuid"
)

// Logical is the operator combining the children of a Group.
type Logical string

// Logical operators.
const (
	And Logical = "and"
	Or  Logical = "or"
)

// Valid reports whether l is And or Or.
func (l Logical) Valid() bool {
	return l == And || l == Or
}

// Node is a filter tree node: exactly one of Group or Condition.
// Use a type switch to access the case payload.
type Node interface {
	// NodeID returns the node identifier, unique within one tree.
	NodeID() string

	// isNode prevents implementations outside this package.
	isNode()
}

// Group combines its children with a logical operator.
type Group struct {
	ID       string
	Operator Logical
	Children []Node
}

// NodeID returns the group identifier.
func (g Group) NodeID() string { return g.ID }

func (Group) isNode() {}

// Condition compares one schema field against one or more values. Any of
// its payload fields may be unset while the condition is being edited:
// empty strings and a nil Value mean "not chosen yet". A non-nil Values
// means the operands are a list (between, in, not_in) and takes precedence
// over Value.
type Condition struct {
	ID       string `mapstructure:"-"`
	Field    string `mapstructure:"field"`
	Operator string `mapstructure:"operator"`
	Value    any    `mapstructure:"value"`
	Values   []any  `mapstructure:"values"`
}

// NodeID returns the condition identifier.
func (c Condition) NodeID() string { return c.ID }

func (Condition) isNode() {}

// Compile-time interface checks.
var (
	_ Node = Group{}
	_ Node = Condition{}
)

// NewID returns a fresh node identifier. Identifiers are UUIDv7 strings:
// a millisecond timestamp followed by random bits, so independently
// created trees do not collide.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewGroup returns an empty group with a fresh id.
func NewGroup(op Logical) Group {
	return Group{ID: NewID(), Operator: op, Children: []Node{}}
}

// NewCondition returns an empty condition with a fresh id.
func NewCondition() Condition {
	return Condition{ID: NewID()}
}

// Walk visits root and its descendants in pre-order. If fn returns false
// the children of the visited node are skipped.
func Walk(root Node, fn func(Node) bool) {
	if root == nil || !fn(root) {
		return
	}
	if g, ok := root.(Group); ok {
		for _, child := range g.Children {
			Walk(child, fn)
		}
	}
}

// Find returns the first node in pre-order whose id is id.
func Find(root Node, id string) (Node, bool) {
	var found Node
	Walk(root, func(n Node) bool {
		if found != nil {
			return false
		}
		if n.NodeID() == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Count returns the number of groups and conditions reachable from root.
func Count(root Node) (groups, conditions int) {
	Walk(root, func(n Node) bool {
		switch n.(type) {
		case Group:
			groups++
		case Condition:
			conditions++
		}
		return true
	})
	return groups, conditions
}

// EnsureUniqueIDs returns a tree in which every id is unique and non-empty.
// The first occurrence of an id in pre-order keeps it; later duplicates and
// empty ids get fresh ones. The second result is the number of ids
// reassigned; when it is zero root is returned unchanged.
func EnsureUniqueIDs(root Node) (Node, int) {
	if root == nil {
		return nil, 0
	}
	fixed, reassigned := reassignIDs(root, make(map[string]struct{}))
	if reassigned == 0 {
		return root, 0
	}
	return fixed, reassigned
}

// reassignIDs gives a fresh id to every node of n, in pre-order, whose id
// is empty or already in seen. Every id n ends up with is added to seen.
func reassignIDs(n Node, seen map[string]struct{}) (Node, int) {
	id := n.NodeID()
	reassigned := 0
	if _, dup := seen[id]; id == "" || dup {
		id = NewID()
		reassigned++
	}
	seen[id] = struct{}{}

	switch v := n.(type) {
	case Group:
		v.ID = id
		children := make([]Node, len(v.Children))
		for i, child := range v.Children {
			var r int
			children[i], r = reassignIDs(child, seen)
			reassigned += r
		}
		v.Children = children
		return v, reassigned
	case Condition:
		v.ID = id
		return v, reassigned
	default:
		return n, reassigned
	}
}

// ids returns the set of ids in root.
func ids(root Node) map[string]struct{} {
	set := make(map[string]struct{})
	Walk(root, func(n Node) bool {
		set[n.NodeID()] = struct{}{}
		return true
	})
	return set
}
