package tree

import (
	"cmp"
	"slices"
	"strings"

	"dockergen/internal/domain"
)

// Import rebuilds a forest from a flat collection of upload paths such as
// "project/src/main.go". The first segment of every path is the common
// container chosen by the user and is dropped; every intermediate segment
// becomes a folder (created once per prefix) and the final segment a file.
//
// Paths are processed shallowest first and, within a depth, in lexical order,
// so the result does not depend on the order the source enumerated files in.
// Segment names are kept verbatim, surrounding whitespace included, so
// "a " and "a" are distinct folders. Paths whose first segments differ are
// rejected rather than merged: a directory picker always yields a single
// container, so mixed containers mean the input was not one upload.
//
// Any malformed or inconsistent input rejects the whole import with a
// *domain.ImportError and no tree is returned.
func Import(paths []string, ids IDAllocator) (*Tree, error) {
	type parsedPath struct {
		raw      string
		segments []string
	}

	parsed := make([]parsedPath, 0, len(paths))
	rootSegment := ""
	for _, p := range paths {
		segments, err := SplitUploadPath(p)
		if err != nil {
			return nil, err
		}
		if rootSegment == "" {
			rootSegment = segments[0]
		} else if segments[0] != rootSegment {
			return nil, &domain.ImportError{
				Path:   p,
				Reason: "paths do not share a common top-level folder (expected " + rootSegment + ")",
			}
		}
		parsed = append(parsed, parsedPath{raw: p, segments: segments})
	}

	slices.SortStableFunc(parsed, func(a, b parsedPath) int {
		if c := cmp.Compare(len(a.segments), len(b.segments)); c != 0 {
			return c
		}
		return cmp.Compare(strings.Join(a.segments, "/"), strings.Join(b.segments, "/"))
	})

	b := newBuilder(ids)
	// full prefix path (root segment dropped) -> node created for it
	prefixes := make(map[string]*Node)

	for _, p := range parsed {
		var parent *Node
		last := len(p.segments) - 1

		// Skip the root folder name
		for i := 1; i <= last; i++ {
			prefix := JoinPrefix(p.segments, 1, i+1)
			kind := KindFolder
			if i == last {
				kind = KindFile
			}

			if existing, ok := prefixes[prefix]; ok {
				if existing.kind != kind {
					return nil, &domain.ImportError{
						Path:   p.raw,
						Reason: "\"" + prefix + "\" is used both as a file and as a folder",
					}
				}
				parent = existing
				continue
			}

			node, err := b.add(parent, kind, p.segments[i])
			if err != nil {
				return nil, &domain.ImportError{Path: p.raw, Reason: err.Error()}
			}
			prefixes[prefix] = node
			parent = node
		}
	}

	return b.tree, nil
}

// FromNodes rebuilds a forest from a client-supplied nested structure.
// Client identifiers are ignored and fresh ones are allocated; names and
// kinds are validated and a file carrying children is rejected.
func FromNodes(nodes []NodeJSON, ids IDAllocator) (*Tree, error) {
	b := newBuilder(ids)

	var addAll func(parent *Node, inputs []NodeJSON) error
	addAll = func(parent *Node, inputs []NodeJSON) error {
		for _, in := range inputs {
			if in.Type == KindFile && len(in.Children) > 0 {
				return &domain.ValidationError{Message: "file " + in.Name + " cannot have children"}
			}
			node, err := b.add(parent, in.Type, strings.TrimSpace(in.Name))
			if err != nil {
				return err
			}
			if err := addAll(node, in.Children); err != nil {
				return err
			}
		}
		return nil
	}

	if err := addAll(nil, nodes); err != nil {
		return nil, err
	}
	return b.tree, nil
}

// builder grows a fresh, unshared tree in place. Nodes it creates are not
// visible to anyone until the finished tree is returned, so appending to
// their children directly keeps the snapshot guarantees.
//
// add stores name exactly as given. Import relies on this so the node name
// always equals the segment its prefix key was built from.
type builder struct {
	tree *Tree
}

func newBuilder(ids IDAllocator) *builder {
	return &builder{tree: New(ids)}
}

func (b *builder) add(parent *Node, kind Kind, name string) (*Node, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	id, err := b.tree.allocate()
	if err != nil {
		return nil, err
	}

	node := newNode(id, kind, name)
	b.tree.index[id] = node
	if parent == nil {
		b.tree.roots = append(b.tree.roots, node)
		return node, nil
	}

	parent.children = append(parent.children, node)
	b.tree.parents[id] = parent.id
	return node, nil
}
