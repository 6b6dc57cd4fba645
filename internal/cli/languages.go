package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dockergen/internal/capabilities"
)

func newLanguagesCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported project languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := capabilities.NewRegistry()
			if err != nil {
				return err
			}
			languages := catalog.Languages()

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), languages)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBASE IMAGE\tMANIFESTS")
			for _, l := range languages {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.ID, l.DisplayName, l.BaseImage, strings.Join(l.Manifests, ", "))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
