package model

// elementKeys are the child-collection properties a model tree nests its
// displayable objects under.
var elementKeys = [...]string{"elements", "@elements"}

// Flatten walks a decoded model tree and returns every object that carries
// a string id, in document order, parents before children. Reference
// placeholders are skipped and duplicate ids keep their first occurrence.
func Flatten(root any) []Object {
	var (
		out  []Object
		seen = map[string]bool{}
	)
	var walk func(node any)
	walk = func(node any) {
		switch n := node.(type) {
		case []any:
			for _, item := range n {
				walk(item)
			}
		case map[string]any:
			if IsReference(n) {
				return
			}
			if id, ok := n[idKey].(string); ok && id != "" && !seen[id] {
				seen[id] = true
				out = append(out, Object{ID: id, Props: n})
			}
			for _, key := range elementKeys {
				if children, ok := n[key]; ok {
					walk(children)
				}
			}
		}
	}
	walk(root)
	return out
}
