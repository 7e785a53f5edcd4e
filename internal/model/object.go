// Package model holds the flattened representation of a published design
// model: schema-flexible objects addressed by stable id.
package model

// Object is a single node of a model tree. Props carries the decoded JSON
// body of the node; its shape varies by connector version, so all property
// access goes through the resolver rather than typed fields.
type Object struct {
	ID    string
	Props map[string]any
}

// speckleTypeKey and related keys follow the object-model wire format.
const (
	idKey        = "id"
	typeKey      = "speckle_type"
	referenceTag = "reference"
)

// IsReference reports whether a decoded node is a detached-object
// placeholder rather than a real object body.
func IsReference(node map[string]any) bool {
	t, _ := node[typeKey].(string)
	return t == referenceTag
}
