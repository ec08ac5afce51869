/*
Package tree holds the in-memory filter tree and the reducer that mutates it.

# Nodes

A Node is either a Group (a logical AND/OR over ordered children) or a
Condition (field, operator and operand values). Node is a sealed interface;
switch on the concrete type to read a case payload:

	switch n := node.(type) {
	case tree.Group:
	    fmt.Println(n.Operator, len(n.Children))
	case tree.Condition:
	    fmt.Println(n.Field, n.Operator, n.Value)
	}

Every node carries an id, unique within its tree. NewID returns UUIDv7
strings so trees built in separate sessions never collide; EnsureUniqueIDs
repairs a tree assembled from untrusted parts.

# Mutation

Trees are values. Reduce takes a tree and an Action and returns a new tree;
the input is never modified, and subtrees off the path to the target are
shared with the input:

	root := tree.NewGroup(tree.And)
	cond := tree.NewCondition()

	root2, _ := tree.Reduce(root, tree.AddCondition{GroupID: root.ID, Condition: cond})
	root3, _ := tree.Reduce(root2, tree.UpdateCondition{
	    ID:      cond.ID,
	    Updates: tree.Updates{"field": "age", "operator": "gt", "value": 18},
	})

An action that cannot apply (unknown id, adding to a condition, updating a
group as a condition, invalid logical operator) leaves the tree unchanged
and returns a Diagnostic explaining why. Reduce never fails.
*/
package tree
