package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"dockergen/internal/capabilities"
	"dockergen/internal/config"
	"dockergen/internal/domain/services"
	"dockergen/internal/repository/memory"
	"dockergen/internal/service/generation"
	"dockergen/internal/tree"
)

// fixedStructure serves one snapshot for every session
type fixedStructure struct {
	snapshot *tree.Tree
}

func (f fixedStructure) GetTree(ctx context.Context, sessionID string) (*tree.Tree, error) {
	return f.snapshot, nil
}

func newGenerateCmd(a *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "generate <dir|archive.zip>",
		Short: "Generate a Dockerfile for a project directory",
		Long: `Scan a directory, send its structure to a generation provider and
write the returned Dockerfile.

Examples:
  dockergen generate ./myapp --language node
  dockergen generate ./api --language go --provider anthropic --out api/Dockerfile
  DOCKERGEN_PROVIDER=lorem dockergen generate . -l python`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			language := a.v.GetString("language")
			if language == "" {
				return fmt.Errorf("--language is required")
			}

			forest, err := a.importDir(args[0])
			if err != nil {
				return err
			}

			cfg := config.Load()
			logger := a.logger(cmd.ErrOrStderr())

			catalog, err := capabilities.NewRegistry()
			if err != nil {
				return err
			}

			svc := generation.NewService(
				a.providers(cfg),
				catalog,
				fixedStructure{snapshot: forest},
				memory.NewArtifactRepository(),
				generation.OptionsFromConfig(cfg),
				logger,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			logger.Debug("generating", "dir", args[0], "nodes", forest.Len(), "language", language)
			result, err := svc.Generate(ctx, "cli", &services.GenerateRequest{
				Language: language,
				Provider: a.v.GetString("provider"),
				Model:    a.v.GetString("model"),
			})
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), result.Content)
				return err
			}
			if err := os.WriteFile(outPath, []byte(result.Content), 0644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %s)\n", outPath, result.Provider, result.Model)
			return nil
		},
	}

	cmd.Flags().StringP("language", "l", "", "project language (see 'dockergen languages')")
	cmd.Flags().StringP("provider", "p", "", "generation provider (default from DEFAULT_PROVIDER)")
	cmd.Flags().StringP("model", "m", "", "model id (default depends on provider)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	for _, key := range []string{"language", "provider", "model"} {
		_ = a.v.BindPFlag(key, cmd.Flags().Lookup(key))
	}
	return cmd
}
