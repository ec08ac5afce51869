/*
Package schema describes the fields a filter may reference and the operators
legal for each field type.

# Overview

A Config maps field names to a FieldConfig (data type, label, optional
enumerated options) and maps each DataType to an ordered operator list. The
validator and any rendering layer read it; nothing in the engine modifies it.

	cfg := schema.New(map[string]schema.FieldConfig{
	    "age":  {Type: schema.TypeNumber, Label: "Age"},
	    "name": {Type: schema.TypeString, Label: "Name"},
	}, nil) // nil selects DefaultOperators

# Arity Classes

Every operator belongs to an arity class that fixes how many values a
condition using it carries:

	is_null, is_not_null   ClassNone    no value
	between                ClassRange   exactly two values (min, max)
	in, not_in             ClassMulti   one or more values
	anything else          ClassSingle  one value

# Loading

Schema documents are YAML or JSON with "fields" and "operators" keys:

	fields:
	  category:
	    type: string
	    label: Category
	    options:
	      - {label: Books, value: books}
	operators:
	  string: [eq, neq, in, not_in]

Load them with FromFile, FromYAML or FromJSON. Documents are validated on
load; problems are reported together in a *Error that wraps
ErrInvalidSchema.

A Catalog holds several named schemas and can be filled from a directory
with LoadDir.
*/
package schema
