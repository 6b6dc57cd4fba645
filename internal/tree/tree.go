package tree

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"dockergen/internal/domain"
)

// maxAllocAttempts bounds how many times Insert asks the allocator for a
// fresh identifier before giving up.
const maxAllocAttempts = 16

// Tree is an immutable snapshot of an ordered forest.
//
// Nodes are addressed through an id index and a child-to-parent index, so
// lookups and parent resolution are O(1). Insert and Delete return a new
// snapshot: the nodes on the path from the mutated parent up to its root are
// copied, every other subtree is shared with the previous snapshot, and the
// previous snapshot stays valid and unchanged.
type Tree struct {
	ids     IDAllocator
	roots   []*Node
	index   map[string]*Node
	parents map[string]string // child id -> parent id, roots are absent
}

// New returns an empty forest that allocates identifiers from ids.
// A nil allocator defaults to a CounterAllocator.
func New(ids IDAllocator) *Tree {
	if ids == nil {
		ids = NewCounterAllocator()
	}
	return &Tree{
		ids:     ids,
		index:   make(map[string]*Node),
		parents: make(map[string]string),
	}
}

// Allocator returns the identifier allocator shared by this snapshot lineage.
func (t *Tree) Allocator() IDAllocator { return t.ids }

// Len returns the number of nodes at every depth.
func (t *Tree) Len() int { return len(t.index) }

// IsEmpty reports whether the forest has no roots.
func (t *Tree) IsEmpty() bool { return len(t.roots) == 0 }

// Roots returns the ordered top-level nodes.
func (t *Tree) Roots() []*Node { return slices.Clone(t.roots) }

// Find returns the node with the given id at any depth.
func (t *Tree) Find(id string) (*Node, bool) {
	n, ok := t.index[id]
	return n, ok
}

// ParentOf returns the parent id of a node. ok is false for roots and for
// unknown ids.
func (t *Tree) ParentOf(id string) (string, bool) {
	p, ok := t.parents[id]
	return p, ok
}

// Insert appends a new node under parentID, or to the root sequence when
// parentID is empty. It fails with domain.ErrTargetNotFoundOrInvalid when the
// parent does not exist or is a file; on any error the receiver is returned
// unchanged.
func (t *Tree) Insert(parentID string, kind Kind, name string) (*Tree, *Node, error) {
	if err := validateKind(kind); err != nil {
		return t, nil, err
	}
	if err := ValidateName(name); err != nil {
		return t, nil, err
	}

	var parent *Node
	if parentID != "" {
		p, ok := t.index[parentID]
		if !ok || p.kind != KindFolder {
			return t, nil, fmt.Errorf("%w: %s", domain.ErrTargetNotFoundOrInvalid, parentID)
		}
		parent = p
	}

	id, err := t.allocate()
	if err != nil {
		return t, nil, err
	}

	node := newNode(id, kind, strings.TrimSpace(name))

	next := t.clone()
	next.index[id] = node
	if parent == nil {
		next.roots = append(slices.Clip(t.roots), node)
		return next, node, nil
	}

	next.parents[id] = parent.id
	next.replaceChildren(parent.id, append(slices.Clip(parent.children), node))
	return next, node, nil
}

// Delete removes the node and its entire subtree. Unknown ids are a no-op and
// return the receiver itself.
func (t *Tree) Delete(id string) *Tree {
	node, ok := t.index[id]
	if !ok {
		return t
	}

	next := t.clone()
	_ = walkNode(node, 0, func(n *Node, _ int) error {
		delete(next.index, n.id)
		delete(next.parents, n.id)
		return nil
	})

	parentID, hasParent := t.parents[id]
	if !hasParent {
		next.roots = withoutID(t.roots, id)
		return next
	}

	parent := t.index[parentID]
	next.replaceChildren(parentID, withoutID(parent.children, id))
	return next
}

// Walk visits every node depth-first in order. Returning an error stops the walk.
func (t *Tree) Walk(fn func(n *Node, depth int) error) error {
	for _, r := range t.roots {
		if err := walkNode(r, 0, fn); err != nil {
			return err
		}
	}
	return nil
}

// nodeIDs returns every node id in depth-first order.
func (t *Tree) nodeIDs() []string {
	ids := make([]string, 0, len(t.index))
	_ = t.Walk(func(n *Node, _ int) error {
		ids = append(ids, n.id)
		return nil
	})
	return ids
}

// Paths returns the slash-joined path of every leaf (files and empty folders)
// in depth-first order.
func (t *Tree) Paths() []string {
	var paths []string
	var visit func(nodes []*Node, prefix string)
	visit = func(nodes []*Node, prefix string) {
		for _, n := range nodes {
			p := n.name
			if prefix != "" {
				p = prefix + "/" + n.name
			}
			if n.IsFolder() && n.ChildCount() > 0 {
				visit(n.children, p)
				continue
			}
			paths = append(paths, p)
		}
	}
	visit(t.roots, "")
	return paths
}

// Equal reports whether both forests have the same ids, names, kinds and
// ordering at every depth.
func (t *Tree) Equal(other *Tree) bool {
	return equalNodes(t.roots, other.roots, true)
}

// SameShape reports whether both forests have the same names, kinds and
// nesting, ignoring identifiers.
func (t *Tree) SameShape(other *Tree) bool {
	return equalNodes(t.roots, other.roots, false)
}

// ToJSON returns the wire form of the forest. An empty forest is an empty,
// non-nil slice.
func (t *Tree) ToJSON() []NodeJSON {
	out := make([]NodeJSON, 0, len(t.roots))
	for _, r := range t.roots {
		out = append(out, r.ToJSON())
	}
	return out
}

// MarshalJSON implements json.Marshaler
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToJSON())
}

func (t *Tree) allocate() (string, error) {
	for range maxAllocAttempts {
		id := t.ids.Next()
		if id == "" {
			continue
		}
		if _, taken := t.index[id]; !taken {
			return id, nil
		}
	}
	return "", domain.ErrIDExhausted
}

// clone copies the indexes; node values are shared until replaced.
func (t *Tree) clone() *Tree {
	return &Tree{
		ids:     t.ids,
		roots:   t.roots,
		index:   maps.Clone(t.index),
		parents: maps.Clone(t.parents),
	}
}

// replaceChildren swaps in a copy of node id carrying children and copies
// every ancestor up to the root so the new snapshot points at it. Only valid
// on a freshly cloned tree.
func (t *Tree) replaceChildren(id string, children []*Node) {
	updated := t.index[id].withChildren(children)
	t.index[id] = updated

	for {
		parentID, ok := t.parents[updated.id]
		if !ok {
			t.roots = replaceByID(t.roots, updated)
			return
		}
		parent := t.index[parentID]
		updated = parent.withChildren(replaceByID(parent.children, updated))
		t.index[parentID] = updated
	}
}

func newNode(id string, kind Kind, name string) *Node {
	n := &Node{id: id, name: name, kind: kind}
	if kind == KindFolder {
		n.children = []*Node{}
	}
	return n
}

func walkNode(n *Node, depth int, fn func(*Node, int) error) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := walkNode(c, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// replaceByID returns a new slice with the node sharing n's id swapped for n.
func replaceByID(nodes []*Node, n *Node) []*Node {
	out := slices.Clone(nodes)
	for i, c := range out {
		if c.id == n.id {
			out[i] = n
			break
		}
	}
	return out
}

// withoutID returns a new slice without the node carrying id, order preserved.
func withoutID(nodes []*Node, id string) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, c := range nodes {
		if c.id != id {
			out = append(out, c)
		}
	}
	return out
}

func equalNodes(a, b []*Node, compareIDs bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if compareIDs && x.id != y.id {
			return false
		}
		if x.name != y.name || x.kind != y.kind {
			return false
		}
		if !equalNodes(x.children, y.children, compareIDs) {
			return false
		}
	}
	return true
}
