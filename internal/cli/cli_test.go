package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dockergen/internal/config"
	domaingen "dockergen/internal/domain/services/generation"
	"dockergen/internal/service/generation"
)

type echoGenerator struct {
	prompt string
}

func (g *echoGenerator) Name() string                { return "huggingface" }
func (g *echoGenerator) SupportsModel(m string) bool { return true }

func (g *echoGenerator) Generate(ctx context.Context, req *domaingen.GenerateRequest) (*domaingen.GenerateResponse, error) {
	g.prompt = req.Prompt
	return &domaingen.GenerateResponse{Content: "FROM node:20-alpine\n"}, nil
}

// writeProject creates files under dir/name and returns the project path
func writeProject(t *testing.T, files ...string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "myapp")
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}
	return root
}

func run(t *testing.T, gen *echoGenerator, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DEFAULT_PROVIDER", "huggingface")

	a := &app{
		v: viper.New(),
		providers: func(cfg *config.Config) *generation.ProviderRegistry {
			registry := generation.NewProviderRegistry(nil)
			registry.Register("huggingface", gen)
			return registry
		},
	}
	cmd := newRootCmd(a)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestScanDir(t *testing.T) {
	root := writeProject(t, "package.json", "src/index.js", "node_modules/left-pad/index.js", ".git/HEAD")

	paths, err := scanDir(root, defaultExcludes)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"myapp/package.json", "myapp/src/index.js"}, paths)

	_, err = scanDir(t.TempDir(), nil)
	assert.Error(t, err, "empty directories have nothing to import")
}

func TestStructureCommand(t *testing.T) {
	root := writeProject(t, "go.mod", "cmd/app/main.go", "internal/x/x.go")

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "json",
			args: []string{"structure", root},
			check: func(t *testing.T, out string) {
				assert.JSONEq(t, `{"go.mod":null,"cmd":{"app":{"main.go":null}},"internal":{"x":{"x.go":null}}}`, out)
			},
		},
		{
			name: "tree",
			args: []string{"structure", root, "--format", "tree"},
			check: func(t *testing.T, out string) {
				assert.True(t, strings.HasPrefix(out, ".\n├── go.mod\n"), out)
				assert.Contains(t, out, "cmd/")
			},
		},
		{
			name: "nodes",
			args: []string{"structure", root, "-f", "nodes"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, `"id": "n1"`)
			},
		},
		{
			name: "paths",
			args: []string{"structure", root, "--format", "paths"},
			check: func(t *testing.T, out string) {
				assert.Equal(t, "go.mod\ncmd/app/main.go\ninternal/x/x.go\n", out)
			},
		},
		{
			name: "exclude flag",
			args: []string{"structure", root, "--exclude", "internal"},
			check: func(t *testing.T, out string) {
				assert.JSONEq(t, `{"go.mod":null,"cmd":{"app":{"main.go":null}}}`, out)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, &echoGenerator{}, tt.args...)
			require.NoError(t, err)
			tt.check(t, out)
		})
	}

	_, _, err := run(t, &echoGenerator{}, "structure", root, "--format", "yaml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestGenerateCommand(t *testing.T) {
	root := writeProject(t, "package.json", "src/index.js")

	t.Run("stdout", func(t *testing.T) {
		gen := &echoGenerator{}
		out, _, err := run(t, gen, "generate", root, "--language", "node")
		require.NoError(t, err)
		assert.Equal(t, "FROM node:20-alpine\n", out)
		assert.Contains(t, gen.prompt, "Generate a dockerfile for a node project")
		assert.Contains(t, gen.prompt, `"package.json": null`)
	})

	t.Run("out file", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "Dockerfile")
		_, stderr, err := run(t, &echoGenerator{}, "generate", root, "-l", "node", "-o", dest)
		require.NoError(t, err)
		assert.Contains(t, stderr, "wrote "+dest)

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "FROM node:20-alpine\n", string(data))
	})

	t.Run("language from env", func(t *testing.T) {
		t.Setenv("DOCKERGEN_LANGUAGE", "node")
		out, _, err := run(t, &echoGenerator{}, "generate", root)
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	})

	t.Run("missing language", func(t *testing.T) {
		t.Setenv("DOCKERGEN_LANGUAGE", "")
		_, _, err := run(t, &echoGenerator{}, "generate", root)
		assert.ErrorContains(t, err, "--language is required")
	})

	t.Run("unsupported language", func(t *testing.T) {
		_, _, err := run(t, &echoGenerator{}, "generate", root, "-l", "cobol")
		assert.Error(t, err)
	})
}

func TestLanguagesCommand(t *testing.T) {
	out, _, err := run(t, &echoGenerator{}, "languages")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "node")
	assert.Contains(t, out, "python")

	out, _, err = run(t, &echoGenerator{}, "languages", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "go"`)
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	_, _, err := run(t, &echoGenerator{}, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "languages")
	assert.ErrorContains(t, err, "read config")
}

func TestStructureFromZip(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "shop.zip")
	f, err := os.Create(dest)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, name := range []string{"Gemfile", "app/models/order.rb"} {
		_, err := zw.Create(name)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	out, _, err := run(t, &echoGenerator{}, "structure", dest)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Gemfile":null,"app":{"models":{"order.rb":null}}}`, out)
}
