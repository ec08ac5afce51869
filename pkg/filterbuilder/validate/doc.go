/*
Package validate checks a filter tree against a schema.

Filter walks the whole tree and collects every finding; it never stops at
the first error. Each finding is reported as "path: message" where path is
the chain of node ids from the root, joined by " > ":

	res := validate.Filter(root, cfg, validate.Options{})
	if !res.IsValid {
	    for _, e := range res.Errors {
	        fmt.Println(e)
	    }
	}

Conditions are checked in order: field present, field known, operator
present, operator allowed for the field type, then the operand values
according to the operator class (see schema.ClassOf). Groups must have
children and a logical operator; a group with a single child draws a
warning.

IsComplete is the weaker "ready to submit" check used to enable submission
while some branches are still being edited.
*/
package validate
