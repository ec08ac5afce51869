package tree

import "fmt"

// Action is a mutation request. The set is closed: AddCondition, AddGroup,
// UpdateCondition, RemoveCondition, UpdateGroup, RemoveGroup and Reset.
type Action interface {
	// Kind returns the action name used in diagnostics, logs and metrics.
	Kind() string

	isAction()
}

// Action kinds.
const (
	KindAddCondition    = "add_condition"
	KindAddGroup        = "add_group"
	KindUpdateCondition = "update_condition"
	KindRemoveCondition = "remove_condition"
	KindUpdateGroup     = "update_group"
	KindRemoveGroup     = "remove_group"
	KindReset           = "reset"
)

// Updates is a partial condition update keyed by "field", "operator",
// "value" and "values". A key mapped to nil clears that part of the
// condition. An "id" key is ignored.
type Updates map[string]any

// AddCondition appends Condition to the children of the group GroupID.
type AddCondition struct {
	GroupID   string
	Condition Condition
}

// AddGroup appends Group to the children of the group ParentID.
type AddGroup struct {
	ParentID string
	Group    Group
}

// UpdateCondition merges Updates into the condition ID.
type UpdateCondition struct {
	ID      string
	Updates Updates
}

// RemoveCondition excises the subtree rooted at ID.
type RemoveCondition struct {
	ID string
}

// UpdateGroup sets the logical operator of the group ID.
type UpdateGroup struct {
	ID       string
	Operator Logical
}

// RemoveGroup excises the subtree rooted at ID.
type RemoveGroup struct {
	ID string
}

// Reset replaces the whole tree with a fresh empty AND group.
type Reset struct{}

func (AddCondition) Kind() string    { return KindAddCondition }
func (AddGroup) Kind() string        { return KindAddGroup }
func (UpdateCondition) Kind() string { return KindUpdateCondition }
func (RemoveCondition) Kind() string { return KindRemoveCondition }
func (UpdateGroup) Kind() string     { return KindUpdateGroup }
func (RemoveGroup) Kind() string     { return KindRemoveGroup }
func (Reset) Kind() string           { return KindReset }

func (AddCondition) isAction()    {}
func (AddGroup) isAction()        {}
func (UpdateCondition) isAction() {}
func (RemoveCondition) isAction() {}
func (UpdateGroup) isAction()     {}
func (RemoveGroup) isAction()     {}
func (Reset) isAction()           {}

// Code classifies a Diagnostic.
type Code string

// Diagnostic codes.
const (
	CodeTargetNotFound     Code = "target_not_found"
	CodeTargetNotGroup     Code = "target_not_group"
	CodeTargetNotCondition Code = "target_not_condition"
	CodeInvalidOperator    Code = "invalid_operator"
	CodeInvalidUpdates     Code = "invalid_updates"
	CodeRootNotRemovable   Code = "root_not_removable"
)

// Diagnostic reports why an action left the tree unchanged. Diagnostics
// are informational; the reducer never fails.
type Diagnostic struct {
	Action   string
	TargetID string
	Code     Code
	Message  string
}

// String formats the diagnostic for logs.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s: %s", d.Action, d.TargetID, d.Code, d.Message)
}
