// Package tree holds the in-memory project structure: an ordered forest of
// file and folder nodes with copy-on-write snapshots, the importer that
// rebuilds a forest from uploaded paths, and the serializer that produces the
// nested name-keyed payload sent to the generation provider.
package tree

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"dockergen/internal/config"
	"dockergen/internal/domain"
)

// Kind distinguishes files from folders.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindFile || k == KindFolder
}

// Node is a single file or folder. Nodes are immutable once they belong to a
// Tree snapshot; a mutation produces new nodes along the changed path only.
type Node struct {
	id       string
	name     string
	kind     Kind
	children []*Node // nil for files
}

func (n *Node) ID() string      { return n.id }
func (n *Node) Name() string    { return n.name }
func (n *Node) Kind() Kind      { return n.kind }
func (n *Node) IsFolder() bool  { return n.kind == KindFolder }
func (n *Node) ChildCount() int { return len(n.children) }

// Children returns a copy of the ordered children. Files always return nil.
func (n *Node) Children() []*Node {
	if n.kind != KindFolder {
		return nil
	}
	return slices.Clone(n.children)
}

// withChildren returns a copy of n carrying the given children.
func (n *Node) withChildren(children []*Node) *Node {
	return &Node{
		id:       n.id,
		name:     n.name,
		kind:     n.kind,
		children: children,
	}
}

// NodeJSON is the wire form of a node, matching the front end's FileType.
// It is also the input shape accepted by FromNodes.
type NodeJSON struct {
	ID       string     `json:"id,omitempty"`
	Name     string     `json:"name"`
	Type     Kind       `json:"type"`
	Children []NodeJSON `json:"children,omitempty"`
}

// MarshalJSON always emits "children" for folders, so an empty folder
// encodes as "children": [] and a file has no children key.
func (j NodeJSON) MarshalJSON() ([]byte, error) {
	if j.Type != KindFolder {
		type file struct {
			ID   string `json:"id,omitempty"`
			Name string `json:"name"`
			Type Kind   `json:"type"`
		}
		return json.Marshal(file{ID: j.ID, Name: j.Name, Type: j.Type})
	}

	type folder struct {
		ID       string     `json:"id,omitempty"`
		Name     string     `json:"name"`
		Type     Kind       `json:"type"`
		Children []NodeJSON `json:"children"`
	}
	children := j.Children
	if children == nil {
		children = []NodeJSON{}
	}
	return json.Marshal(folder{ID: j.ID, Name: j.Name, Type: j.Type, Children: children})
}

// ToJSON converts a node and its subtree to the wire form.
func (n *Node) ToJSON() NodeJSON {
	out := NodeJSON{ID: n.id, Name: n.name, Type: n.kind}
	if n.kind == KindFolder {
		out.Children = make([]NodeJSON, 0, len(n.children))
		for _, c := range n.children {
			out.Children = append(out.Children, c.ToJSON())
		}
	}
	return out
}

// MarshalJSON implements json.Marshaler
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.ToJSON())
}

var namePattern = regexp.MustCompile(`^[^/]+$`)

// ValidateName checks a single node label: non-empty after trimming, bounded
// length, and no path separator.
func ValidateName(name string) error {
	err := validation.Validate(strings.TrimSpace(name),
		validation.Required,
		validation.Length(1, config.MaxNodeNameLength),
		validation.Match(namePattern).Error("name cannot contain slashes"),
	)
	if err != nil {
		return fmt.Errorf("%w: name %q: %v", domain.ErrValidation, name, err)
	}
	return nil
}

func validateKind(kind Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: type must be %q or %q, got %q", domain.ErrValidation, KindFile, KindFolder, kind)
	}
	return nil
}
