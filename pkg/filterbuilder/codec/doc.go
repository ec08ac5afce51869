/*
Package codec converts filter trees to and from their JSON wire form.

The wire form carries no ids. A group is an object with a single "and" or
"or" key holding an array of terms; a leaf is an object with "field",
"operator" and "value" keys:

	{"and":[{"field":"age","operator":"gt","value":30},{"or":[{"field":"role","operator":"eq","value":"admin"}]}]}

Serialize normalizes while it encodes: incomplete conditions and groups
left without children are dropped, so the output only ever contains
complete terms. Deserialize and Unmarshal are lenient and never fail;
anything that is not a usable object becomes an empty AND group.

Re-serializing a deserialized filter is byte-for-byte stable:

	data, _ := codec.Marshal(root)
	again, _ := codec.Marshal(codec.Unmarshal(data))
	// bytes.Equal(data, again) == true
*/
package codec
