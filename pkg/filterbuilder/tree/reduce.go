package tree

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Reduce applies action to root and returns the resulting tree. root is
// never modified. When the action cannot apply (unknown id, wrong node
// kind, bad operator or updates) the returned tree is root itself and the
// reason is reported as a Diagnostic.
//
// Added nodes whose id is empty or already used get a fresh id; nodes
// already in the tree keep theirs.
func Reduce(root Node, action Action) (Node, []Diagnostic) {
	switch a := action.(type) {
	case AddCondition:
		return appendChild(root, a.Kind(), a.GroupID, a.Condition)

	case AddGroup:
		g := a.Group
		if g.Operator == "" {
			g.Operator = And
		}
		if !g.Operator.Valid() {
			return root, []Diagnostic{invalidOperator(a.Kind(), a.ParentID, g.Operator)}
		}
		if g.Children == nil {
			g.Children = []Node{}
		}
		return appendChild(root, a.Kind(), a.ParentID, g)

	case UpdateCondition:
		target, diag, ok := locate(root, a.Kind(), a.ID)
		if !ok {
			return root, []Diagnostic{diag}
		}
		cond, isCond := target.(Condition)
		if !isCond {
			return root, []Diagnostic{{
				Action:   a.Kind(),
				TargetID: a.ID,
				Code:     CodeTargetNotCondition,
				Message:  "target is a group",
			}}
		}
		// Decode once so an invalid update is reported before any rewrite.
		if _, err := merge(cond, a.Updates); err != nil {
			return root, []Diagnostic{{
				Action:   a.Kind(),
				TargetID: a.ID,
				Code:     CodeInvalidUpdates,
				Message:  err.Error(),
			}}
		}
		next, _ := rewrite(root, a.ID, func(n Node) Node {
			c, ok := n.(Condition)
			if !ok {
				return n
			}
			merged, err := merge(c, a.Updates)
			if err != nil {
				return n
			}
			return merged
		})
		return next, nil

	case UpdateGroup:
		if !a.Operator.Valid() {
			return root, []Diagnostic{invalidOperator(a.Kind(), a.ID, a.Operator)}
		}
		target, diag, ok := locate(root, a.Kind(), a.ID)
		if !ok {
			return root, []Diagnostic{diag}
		}
		if _, isGroup := target.(Group); !isGroup {
			return root, []Diagnostic{notGroup(a.Kind(), a.ID)}
		}
		next, _ := rewrite(root, a.ID, func(n Node) Node {
			g, ok := n.(Group)
			if !ok {
				return n
			}
			g.Operator = a.Operator
			return g
		})
		return next, nil

	case RemoveCondition:
		return removeByID(root, a.Kind(), a.ID)

	case RemoveGroup:
		return removeByID(root, a.Kind(), a.ID)

	case Reset:
		return NewGroup(And), nil

	default:
		return root, nil
	}
}

func appendChild(root Node, kind, parentID string, child Node) (Node, []Diagnostic) {
	target, diag, ok := locate(root, kind, parentID)
	if !ok {
		return root, []Diagnostic{diag}
	}
	if _, isGroup := target.(Group); !isGroup {
		return root, []Diagnostic{notGroup(kind, parentID)}
	}
	child, _ = reassignIDs(child, ids(root))
	next, _ := rewrite(root, parentID, func(n Node) Node {
		g, ok := n.(Group)
		if !ok {
			return n
		}
		children := make([]Node, len(g.Children), len(g.Children)+1)
		copy(children, g.Children)
		g.Children = append(children, child)
		return g
	})
	return next, nil
}

func removeByID(root Node, kind, id string) (Node, []Diagnostic) {
	if root != nil && root.NodeID() == id {
		return root, []Diagnostic{{
			Action:   kind,
			TargetID: id,
			Code:     CodeRootNotRemovable,
			Message:  "the root group cannot be removed; use reset",
		}}
	}
	next, removed := remove(root, id)
	if removed == 0 {
		return root, []Diagnostic{notFound(kind, id)}
	}
	return next, nil
}

// rewrite replaces every node whose id is id with fn(node), without
// descending into replaced nodes. Groups on the path to a match are
// rebuilt; everything else is returned as is.
func rewrite(n Node, id string, fn func(Node) Node) (Node, bool) {
	if n == nil {
		return nil, false
	}
	if n.NodeID() == id {
		return fn(n), true
	}
	g, ok := n.(Group)
	if !ok {
		return n, false
	}
	var children []Node
	for i, child := range g.Children {
		next, hit := rewrite(child, id, fn)
		if !hit {
			continue
		}
		if children == nil {
			children = make([]Node, len(g.Children))
			copy(children, g.Children)
		}
		children[i] = next
	}
	if children == nil {
		return n, false
	}
	g.Children = children
	return g, true
}

// remove drops every child whose id is id from every group it reaches,
// then recurses into the surviving children.
func remove(n Node, id string) (Node, int) {
	g, ok := n.(Group)
	if !ok {
		return n, 0
	}
	kept := make([]Node, 0, len(g.Children))
	removed := 0
	for _, child := range g.Children {
		if child.NodeID() == id {
			removed++
			continue
		}
		next, r := remove(child, id)
		removed += r
		kept = append(kept, next)
	}
	if removed == 0 {
		return n, 0
	}
	g.Children = kept
	return g, removed
}

// merge returns c with updates applied. The keys present in updates are
// cleared first so that a new value replaces the old one regardless of
// its dynamic type.
func merge(c Condition, updates Updates) (Condition, error) {
	next := c
	patch := make(map[string]any, len(updates))
	for k, v := range updates {
		switch k {
		case "id":
			continue
		case "field":
			next.Field = ""
		case "operator":
			next.Operator = ""
		case "value":
			next.Value = nil
		case "values":
			next.Values = nil
		}
		patch[k] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &next,
		ErrorUnused: true,
	})
	if err != nil {
		return c, fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(patch); err != nil {
		return c, err
	}
	return next, nil
}

func locate(root Node, kind, id string) (Node, Diagnostic, bool) {
	n, ok := Find(root, id)
	if !ok {
		return nil, notFound(kind, id), false
	}
	return n, Diagnostic{}, true
}

func notFound(kind, id string) Diagnostic {
	return Diagnostic{Action: kind, TargetID: id, Code: CodeTargetNotFound, Message: "no node with this id"}
}

func notGroup(kind, id string) Diagnostic {
	return Diagnostic{Action: kind, TargetID: id, Code: CodeTargetNotGroup, Message: "target is a condition"}
}

func invalidOperator(kind, id string, op Logical) Diagnostic {
	return Diagnostic{
		Action:   kind,
		TargetID: id,
		Code:     CodeInvalidOperator,
		Message:  fmt.Sprintf("logical operator %q is not and/or", op),
	}
}
