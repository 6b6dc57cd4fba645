// Package upload turns uploaded archives into the flat path lists the tree
// importer consumes.
package upload

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"dockergen/internal/config"
	"dockergen/internal/domain"
)

// ZipPaths lists the file entries of a zip archive as upload paths.
//
// Folder entries and OS metadata (__MACOSX/, .DS_Store) are skipped. When
// every file sits under one top-level folder the names are returned as they
// are; otherwise each is prefixed with container so the first segment is
// always the container the importer drops.
func ZipPaths(r io.ReaderAt, size int64, container string) ([]string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &domain.ImportError{Path: container, Reason: "not a valid zip archive"}
	}

	var names []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		name := strings.ReplaceAll(f.Name, `\`, "/")
		if strings.HasPrefix(name, "__MACOSX/") || path.Base(name) == ".DS_Store" {
			continue
		}

		names = append(names, name)
		if len(names) > config.MaxUploadPaths {
			return nil, &domain.ImportError{
				Path:   container,
				Reason: fmt.Sprintf("archive has more than %d files", config.MaxUploadPaths),
			}
		}
	}

	if len(names) == 0 {
		return nil, &domain.ImportError{Path: container, Reason: "archive contains no files"}
	}

	if sharedTopFolder(names) {
		return names, nil
	}

	if container == "" {
		container = "archive"
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = container + "/" + strings.TrimPrefix(n, "/")
	}
	return out, nil
}

// ContainerName derives the container segment from an archive filename,
// e.g. "my-app.zip" -> "my-app".
func ContainerName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "" || name == "." || name == "/" {
		return "archive"
	}
	return name
}

// IsZip reports whether filename looks like a zip archive
func IsZip(filename string) bool {
	return strings.EqualFold(path.Ext(filename), ".zip")
}

func sharedTopFolder(names []string) bool {
	top := ""
	for _, n := range names {
		first, _, nested := strings.Cut(strings.TrimPrefix(n, "/"), "/")
		if !nested {
			return false
		}
		if top == "" {
			top = first
		} else if first != top {
			return false
		}
	}
	return true
}
