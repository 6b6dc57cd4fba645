package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dockergen/internal/tree"
	"dockergen/internal/upload"
)

func newStructureCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "structure <dir|archive.zip>",
		Short: "Print the structure a directory imports as",
		Long: `Scan a directory (or list a .zip archive) and print the structure that would be sent for generation.

Formats:
  json    nested name-keyed mapping, files map to null (default)
  tree    indented text tree
  nodes   node forest with identifiers
  paths   one slash-joined path per file or empty folder, container dropped`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, err := a.importDir(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return writeJSON(out, tree.Serialize(forest))
			case "nodes":
				return writeJSON(out, forest.ToJSON())
			case "tree":
				_, err := fmt.Fprintln(out, tree.Render(forest))
				return err
			case "paths":
				for _, p := range forest.Paths() {
					if _, err := fmt.Fprintln(out, p); err != nil {
						return err
					}
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q (expected json, tree, nodes or paths)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, tree, nodes or paths")
	return cmd
}

// importDir builds a forest from a directory or a .zip archive
func (a *app) importDir(dir string) (*tree.Tree, error) {
	var paths []string
	var err error
	if upload.IsZip(dir) {
		paths, err = zipFilePaths(dir)
	} else {
		paths, err = scanDir(dir, a.v.GetStringSlice("exclude"))
	}
	if err != nil {
		return nil, err
	}
	return tree.Import(paths, tree.NewCounterAllocator())
}

func zipFilePaths(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return upload.ZipPaths(f, info.Size(), upload.ContainerName(name))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
