package tree

import (
	"encoding/json"

	"dockergen/internal/domain"
)

// Structure is the nested, name-keyed payload sent to the generation
// provider: a folder maps each child's name to the child's own value and a
// file is nil (encoded as JSON null).
//
// Example:
//
//	{"a": {"b.txt": null, "c.txt": null}, "d.txt": null}
type Structure map[string]any

// Serialize converts the forest into a Structure. An empty forest yields an
// empty, non-nil map.
//
// Sibling names are map keys, so when two siblings share a name the one that
// comes later in child order wins and the earlier sibling's subtree is absent
// from the payload.
func Serialize(t *Tree) Structure {
	return serializeNodes(t.roots)
}

func serializeNodes(nodes []*Node) Structure {
	out := make(Structure, len(nodes))
	for _, n := range nodes {
		if n.IsFolder() {
			out[n.name] = serializeNodes(n.children)
			continue
		}
		out[n.name] = nil
	}
	return out
}

// ParseStructure decodes an already serialized mapping, checking that every
// value is either null (a file) or a nested mapping (a folder).
func ParseStructure(data []byte) (Structure, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &domain.ValidationError{Message: "structure must be a JSON object: " + err.Error()}
	}
	if raw == nil {
		return nil, &domain.ValidationError{Message: "structure must be a JSON object"}
	}
	return toStructure(raw, "")
}

func toStructure(raw map[string]any, prefix string) (Structure, error) {
	out := make(Structure, len(raw))
	for name, v := range raw {
		p := name
		if prefix != "" {
			p = prefix + "/" + name
		}
		if err := ValidateName(name); err != nil {
			return nil, &domain.ValidationError{Message: "invalid name at " + p}
		}
		switch child := v.(type) {
		case nil:
			out[name] = nil
		case map[string]any:
			nested, err := toStructure(child, p)
			if err != nil {
				return nil, err
			}
			out[name] = nested
		default:
			return nil, &domain.ValidationError{Message: "value at " + p + " must be null or an object"}
		}
	}
	return out, nil
}
