package tree

import (
	"fmt"
	"strings"

	"dockergen/internal/config"
	"dockergen/internal/domain"
)

// SplitUploadPath splits a relative upload path (as produced by a directory
// picker, e.g. "project/src/main.go") into its segments.
//
// Path conventions:
//   - "\" is accepted as a separator and normalized to "/"
//   - a single leading "./" or "/" is ignored
//   - empty segments ("a//b", "a/") are rejected
//   - "." and ".." segments are rejected
//
// Examples:
//   - "root/a/b.txt" → ["root", "a", "b.txt"]
//   - "./root/d.txt" → ["root", "d.txt"]
//   - "root//x"      → ImportError
func SplitUploadPath(p string) ([]string, error) {
	if strings.TrimSpace(p) == "" {
		return nil, &domain.ImportError{Path: p, Reason: "path is empty"}
	}
	if len(p) > config.MaxUploadPathLength {
		return nil, &domain.ImportError{
			Path:   p,
			Reason: fmt.Sprintf("path exceeds maximum length of %d", config.MaxUploadPathLength),
		}
	}

	normalized := strings.ReplaceAll(p, `\`, "/")
	normalized = strings.TrimPrefix(normalized, "./")
	normalized = strings.TrimPrefix(normalized, "/")

	segments := strings.Split(normalized, "/")
	for i, segment := range segments {
		switch {
		case segment == "":
			return nil, &domain.ImportError{Path: p, Reason: fmt.Sprintf("empty segment at position %d", i)}
		case segment == "." || segment == "..":
			return nil, &domain.ImportError{Path: p, Reason: fmt.Sprintf("relative segment %q is not allowed", segment)}
		case len(segment) > config.MaxNodeNameLength:
			return nil, &domain.ImportError{
				Path:   p,
				Reason: fmt.Sprintf("segment at position %d exceeds maximum length of %d", i, config.MaxNodeNameLength),
			}
		}
	}

	return segments, nil
}

// JoinPrefix builds the prefix key for segments[from:to], used to
// deduplicate folders during import.
func JoinPrefix(segments []string, from, to int) string {
	return strings.Join(segments[from:to], "/")
}
