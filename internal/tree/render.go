package tree

import (
	"strings"
)

// renderLine is a single flattened line of the text tree.
type renderLine struct {
	Name     string
	IsFolder bool
	Depth    int
	IsLast   bool // Is this the last child of its parent?
}

// Render draws the forest with box-drawing characters under a "." root.
//
// Example output:
//
//	.
//	├── a/
//	│   ├── b.txt
//	│   └── c.txt
//	└── d.txt
func Render(t *Tree) string {
	lines := []renderLine{{Name: ".", Depth: 0, IsLast: true}}
	lines = flatten(lines, t.roots, 1)

	var result strings.Builder

	// Track which depths still have siblings below (for continuation lines)
	continuations := make(map[int]bool)

	for i, line := range lines {
		result.WriteString(buildPrefix(line.Depth, line.IsLast, continuations))
		result.WriteString(line.Name)
		if line.IsFolder {
			result.WriteString("/")
		}

		if i < len(lines)-1 {
			result.WriteString("\n")
		}

		if line.IsLast {
			delete(continuations, line.Depth)
		} else {
			continuations[line.Depth] = true
		}
	}

	return result.String()
}

func flatten(lines []renderLine, nodes []*Node, depth int) []renderLine {
	for i, n := range nodes {
		lines = append(lines, renderLine{
			Name:     n.name,
			IsFolder: n.IsFolder(),
			Depth:    depth,
			IsLast:   i == len(nodes)-1,
		})
		lines = flatten(lines, n.children, depth+1)
	}
	return lines
}

// buildPrefix creates the tree structure prefix for a line based on its depth and position.
func buildPrefix(depth int, isLast bool, continuations map[int]bool) string {
	if depth == 0 {
		return ""
	}

	var prefix strings.Builder

	// Continuation lines for ancestor depths; depth 0 is the "." root
	for d := 1; d < depth; d++ {
		if continuations[d] {
			prefix.WriteString("│   ")
		} else {
			prefix.WriteString("    ")
		}
	}

	if isLast {
		prefix.WriteString("└── ")
	} else {
		prefix.WriteString("├── ")
	}

	return prefix.String()
}
