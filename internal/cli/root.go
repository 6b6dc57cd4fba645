// Package cli implements the dockergen command line: it scans a project
// directory into a structure and generates a Dockerfile for it without
// running the HTTP server.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dockergen/internal/config"
	"dockergen/internal/service/generation"
)

// app carries what subcommands share. providers is replaceable in tests.
type app struct {
	v         *viper.Viper
	cfgFile   string
	verbose   bool
	providers func(cfg *config.Config) *generation.ProviderRegistry
}

// NewRootCmd builds the dockergen command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{
		v: viper.New(),
		providers: func(cfg *config.Config) *generation.ProviderRegistry {
			return generation.NewProviderRegistry(generation.NewProviderFactory(cfg))
		},
	})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dockergen",
		Short:         "Generate Dockerfiles from project structures",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Provider keys (HF_KEY, OPENAI_API_KEY, ...) may live in .env
			_ = godotenv.Load()
			return a.initConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/dockergen/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log progress to stderr")
	cmd.PersistentFlags().StringSlice("exclude", defaultExcludes, "directory names to skip while scanning")
	_ = a.v.BindPFlag("exclude", cmd.PersistentFlags().Lookup("exclude"))

	cmd.AddCommand(newStructureCmd(a))
	cmd.AddCommand(newGenerateCmd(a))
	cmd.AddCommand(newLanguagesCmd(a))
	return cmd
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".config", "dockergen"))
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
	}

	a.v.SetEnvPrefix("DOCKERGEN")
	a.v.AutomaticEnv()

	a.v.SetDefault("exclude", defaultExcludes)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit --config must exist; the default location is optional
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func (a *app) logger(stderr io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}
