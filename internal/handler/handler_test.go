package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dockergen/internal/capabilities"
	"dockergen/internal/domain"
	domaingen "dockergen/internal/domain/services/generation"
	"dockergen/internal/middleware"
	"dockergen/internal/repository/memory"
	"dockergen/internal/service/generation"
	"dockergen/internal/service/structure"
)

const testSession = "handler-test-session"

type stubGenerator struct {
	mu      sync.Mutex
	content string
	err     error
	prompts []string
}

func (g *stubGenerator) Name() string                { return "huggingface" }
func (g *stubGenerator) SupportsModel(m string) bool { return true }

func (g *stubGenerator) Generate(ctx context.Context, req *domaingen.GenerateRequest) (*domaingen.GenerateResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, req.Prompt)
	if g.err != nil {
		return nil, g.err
	}
	return &domaingen.GenerateResponse{Content: g.content, Model: req.Model}, nil
}

type stubStatus map[string]bool

func (s stubStatus) Configured(provider string) bool { return s[provider] }

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestServer(t *testing.T, gen *stubGenerator, db Pinger) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalog, err := capabilities.NewRegistry()
	require.NoError(t, err)

	store := structure.NewSessionStore(time.Hour, 20, nil)
	structureService := structure.NewService(store, logger)

	providers := generation.NewProviderRegistry(nil)
	providers.Register("huggingface", gen)
	generationService := generation.NewService(providers, catalog, structureService, memory.NewArtifactRepository(), generation.Options{
		DefaultProvider: "huggingface",
		DefaultModel:    "google/gemma-2-27b-it",
		MaxTokens:       5000,
		Timeout:         5 * time.Second,
	}, logger)

	storage := "memory"
	if db != nil {
		storage = "postgres"
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux, &Handlers{
		Structure:  NewStructureHandler(structureService, logger),
		Generation: NewGenerationHandler(generationService, logger),
		Catalog:    NewCatalogHandler(catalog, stubStatus{"huggingface": true, "lorem": true}, "huggingface"),
		Health:     NewHealthHandler(storage, db, store.Len),
	})
	return middleware.Session(time.Hour, false)(mux)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, testSession)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func importPaths(t *testing.T, h http.Handler, paths ...string) TreeResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/structure/import", map[string]any{"paths": paths})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[TreeResponse](t, rec)
}

func TestStructureEditing(t *testing.T) {
	h := newTestServer(t, &stubGenerator{}, nil)

	rec := do(t, h, http.MethodGet, "/api/structure", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tree":[],"node_count":0}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/structure/nodes", map[string]any{"type": "folder", "name": "src"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decode[AddNodeResponse](t, rec)
	assert.Equal(t, "src", added.Node.Name)
	assert.Equal(t, 1, added.NodeCount)

	rec = do(t, h, http.MethodPost, "/api/structure/nodes", map[string]any{
		"parent_id": added.Node.ID, "type": "file", "name": "main.go",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	file := decode[AddNodeResponse](t, rec)
	require.Len(t, file.Tree, 1)
	require.Len(t, file.Tree[0].Children, 1)
	assert.Equal(t, "main.go", file.Tree[0].Children[0].Name)

	t.Run("insert under a file is unprocessable", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/structure/nodes", map[string]any{
			"parent_id": file.Node.ID, "type": "file", "name": "x",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	})

	t.Run("insert with blank name is rejected", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/structure/nodes", map[string]any{"type": "file", "name": " "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("deleting an unknown id succeeds", func(t *testing.T) {
		rec := do(t, h, http.MethodDelete, "/api/structure/nodes/missing", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, decode[TreeResponse](t, rec).NodeCount)
	})

	rec = do(t, h, http.MethodDelete, "/api/structure/nodes/"+added.Node.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[TreeResponse](t, rec).NodeCount)

	rec = do(t, h, http.MethodPost, "/api/structure/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[TreeResponse](t, rec).NodeCount)

	rec = do(t, h, http.MethodPost, "/api/structure/redo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[TreeResponse](t, rec).NodeCount)
}

func TestReplaceAndReset(t *testing.T) {
	h := newTestServer(t, &stubGenerator{}, nil)

	rec := do(t, h, http.MethodPut, "/api/structure", map[string]any{
		"structure": []map[string]any{
			{"id": "client-1", "name": "app", "type": "folder", "children": []map[string]any{
				{"name": "index.js", "type": "file"},
			}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replaced := decode[TreeResponse](t, rec)
	assert.Equal(t, 2, replaced.NodeCount)
	assert.NotEqual(t, "client-1", replaced.Tree[0].ID)

	rec = do(t, h, http.MethodPut, "/api/structure", map[string]any{
		"structure": []map[string]any{{"name": "f", "type": "file", "children": []map[string]any{{"name": "x", "type": "file"}}}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/structure", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tree":[],"node_count":0}`, rec.Body.String())
}

func TestImportJSON(t *testing.T) {
	h := newTestServer(t, &stubGenerator{}, nil)

	imported := importPaths(t, h, "root/d.txt", "root/a/b.txt", "root/a/c.txt")
	assert.Equal(t, 4, imported.NodeCount)

	rec := do(t, h, http.MethodGet, "/api/structure/serialized", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"a":{"b.txt":null,"c.txt":null},"d.txt":null}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/structure/render", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, ".\n├── d.txt\n└── a/\n    ├── b.txt\n    └── c.txt\n", rec.Body.String())
}

func TestImportRejectsMalformedPath(t *testing.T) {
	h := newTestServer(t, &stubGenerator{}, nil)
	importPaths(t, h, "root/keep.txt")

	rec := do(t, h, http.MethodPost, "/api/structure/import", map[string]any{
		"paths": []string{"root/a.txt", "root//b.txt"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	problem := decode[map[string]any](t, rec)
	assert.Equal(t, "root//b.txt", problem["path"])

	// The previous structure survives a rejected import
	rec = do(t, h, http.MethodGet, "/api/structure/serialized", nil)
	assert.JSONEq(t, `{"keep.txt":null}`, rec.Body.String())
}

func TestImportMultipart(t *testing.T) {
	tests := []struct {
		name  string
		build func(mw *multipart.Writer) error
		want  string
	}{
		{
			name: "relative paths in filenames",
			build: func(mw *multipart.Writer) error {
				for _, p := range []string{"project/src/main.go", "project/go.mod"} {
					part, err := mw.CreateFormFile("files", p)
					if err != nil {
						return err
					}
					if _, err := part.Write([]byte("contents are ignored")); err != nil {
						return err
					}
				}
				return nil
			},
			want: `{"go.mod":null,"src":{"main.go":null}}`,
		},
		{
			name: "explicit path fields win",
			build: func(mw *multipart.Writer) error {
				if _, err := mw.CreateFormFile("files", "main.go"); err != nil {
					return err
				}
				return mw.WriteField("paths", "project/cmd/main.go")
			},
			want: `{"cmd":{"main.go":null}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &stubGenerator{}, nil)

			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			require.NoError(t, tt.build(mw))
			require.NoError(t, mw.Close())

			req := httptest.NewRequest(http.MethodPost, "/api/structure/import", &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			req.Header.Set(middleware.SessionHeader, testSession)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			rec = do(t, h, http.MethodGet, "/api/structure/serialized", nil)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestImportZip(t *testing.T) {
	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	for _, name := range []string{"main.py", "app/models.py"} {
		_, err := zw.Create(name)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	t.Run("raw body", func(t *testing.T) {
		h := newTestServer(t, &stubGenerator{}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/structure/import?name=service", bytes.NewReader(archive.Bytes()))
		req.Header.Set("Content-Type", "application/zip")
		req.Header.Set(middleware.SessionHeader, testSession)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 3, decode[TreeResponse](t, rec).NodeCount)
	})

	t.Run("multipart archive part", func(t *testing.T) {
		h := newTestServer(t, &stubGenerator{}, nil)
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("archive", "service.zip")
		require.NoError(t, err)
		_, err = part.Write(archive.Bytes())
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/structure/import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set(middleware.SessionHeader, testSession)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = do(t, h, http.MethodGet, "/api/structure/serialized", nil)
		assert.JSONEq(t, `{"main.py":null,"app":{"models.py":null}}`, rec.Body.String())
	})

	t.Run("corrupt archive", func(t *testing.T) {
		h := newTestServer(t, &stubGenerator{}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/structure/import", strings.NewReader("nope"))
		req.Header.Set("Content-Type", "application/zip")
		req.Header.Set(middleware.SessionHeader, testSession)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGenerateAndArtifacts(t *testing.T) {
	gen := &stubGenerator{content: "FROM node:20-alpine\nCOPY . .\n"}
	h := newTestServer(t, gen, nil)
	importPaths(t, h, "root/package.json", "root/src/index.js")

	rec := do(t, h, http.MethodPost, "/api/generate", map[string]any{"language": "node"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[map[string]any](t, rec)
	assert.Equal(t, gen.content, result["content"])
	artifactID, _ := result["artifact_id"].(string)
	require.NotEmpty(t, artifactID)
	assert.Contains(t, gen.prompts[0], "Generate a dockerfile for a node project")

	rec = do(t, h, http.MethodGet, "/api/artifacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ArtifactListResponse](t, rec)
	require.Len(t, list.Artifacts, 1)
	assert.Equal(t, artifactID, list.Artifacts[0].ID)

	rec = do(t, h, http.MethodGet, "/api/artifacts/"+artifactID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	artifact := decode[map[string]any](t, rec)
	assert.Equal(t, map[string]any{"package.json": nil, "src": map[string]any{"index.js": nil}}, artifact["structure"])

	rec = do(t, h, http.MethodGet, "/api/artifacts/"+artifactID+"/download", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="Dockerfile"`)
	assert.Equal(t, gen.content, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/artifacts/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateErrors(t *testing.T) {
	t.Run("empty structure", func(t *testing.T) {
		h := newTestServer(t, &stubGenerator{content: "FROM scratch"}, nil)
		rec := do(t, h, http.MethodPost, "/api/generate", map[string]any{"language": "node"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported language", func(t *testing.T) {
		h := newTestServer(t, &stubGenerator{content: "FROM scratch"}, nil)
		importPaths(t, h, "root/a.txt")
		rec := do(t, h, http.MethodPost, "/api/generate", map[string]any{"language": "cobol"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("provider failure", func(t *testing.T) {
		gen := &stubGenerator{err: errors.New("upstream unavailable")}
		h := newTestServer(t, gen, nil)
		importPaths(t, h, "root/a.txt")

		rec := do(t, h, http.MethodPost, "/api/generate", map[string]any{"language": "python"})
		require.Equal(t, http.StatusBadGateway, rec.Code)
		problem := decode[map[string]any](t, rec)
		assert.Equal(t, "huggingface", problem["provider"])
		assert.Equal(t, true, problem["retryable"])

		// Structure is untouched by a failed call
		rec = do(t, h, http.MethodGet, "/api/structure/serialized", nil)
		assert.JSONEq(t, `{"a.txt":null}`, rec.Body.String())
	})
}

func TestDockerGenerate(t *testing.T) {
	gen := &stubGenerator{content: "FROM python:3.12-slim"}
	h := newTestServer(t, gen, nil)

	tests := []struct {
		name      string
		structure any
		wantCode  int
	}{
		{
			name:      "serialized mapping",
			structure: map[string]any{"app": map[string]any{"main.py": nil}, "requirements.txt": nil},
			wantCode:  http.StatusOK,
		},
		{
			name: "node forest",
			structure: []map[string]any{
				{"name": "main.py", "type": "file"},
			},
			wantCode: http.StatusOK,
		},
		{
			name:      "empty mapping",
			structure: map[string]any{},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/docker-generate", map[string]any{
				"structure": tt.structure,
				"language":  "python",
			})
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode == http.StatusOK {
				assert.JSONEq(t, `{"content":"FROM python:3.12-slim"}`, rec.Body.String())
			}
		})
	}

	rec := do(t, h, http.MethodGet, "/api/artifacts", nil)
	assert.JSONEq(t, `{"artifacts":[]}`, rec.Body.String())
}

func TestCatalog(t *testing.T) {
	h := newTestServer(t, &stubGenerator{}, nil)

	rec := do(t, h, http.MethodGet, "/api/languages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	languages := decode[LanguagesResponse](t, rec)
	require.NotEmpty(t, languages.Languages)
	assert.Equal(t, "node", languages.Languages[0].ID)

	rec = do(t, h, http.MethodGet, "/api/providers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	providers := decode[ProvidersResponse](t, rec)
	assert.Equal(t, "huggingface", providers.DefaultProvider)

	byID := map[string]ProviderResponse{}
	for _, p := range providers.Providers {
		assert.Empty(t, p.APIKeyEnv)
		byID[p.ID] = p
	}
	assert.True(t, byID["huggingface"].Configured)
	assert.True(t, byID["huggingface"].Default)
	assert.False(t, byID["anthropic"].Configured)
	assert.True(t, byID["lorem"].Configured)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantCode   int
		wantStatus string
	}{
		{name: "memory", db: nil, wantCode: http.StatusOK, wantStatus: "ok"},
		{name: "database reachable", db: stubPinger{}, wantCode: http.StatusOK, wantStatus: "ok"},
		{name: "database down", db: stubPinger{err: errors.New("refused")}, wantCode: http.StatusServiceUnavailable, wantStatus: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &stubGenerator{}, tt.db)
			rec := do(t, h, http.MethodGet, "/health", nil)
			require.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, decode[HealthResponse](t, rec).Status)
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "validation", err: &domain.ValidationError{Message: "bad"}, wantCode: http.StatusBadRequest},
		{name: "invalid target", err: fmt.Errorf("%w: n9", domain.ErrTargetNotFoundOrInvalid), wantCode: http.StatusUnprocessableEntity},
		{name: "import", err: &domain.ImportError{Path: "x//y", Reason: "empty segment"}, wantCode: http.StatusBadRequest},
		{name: "unsupported language", err: fmt.Errorf("%w: cobol", domain.ErrUnsupportedLanguage), wantCode: http.StatusBadRequest},
		{name: "not found", err: &domain.NotFoundError{Message: "missing"}, wantCode: http.StatusNotFound},
		{name: "generation", err: &domain.GenerationError{Provider: "openai", Err: errors.New("timeout")}, wantCode: http.StatusBadGateway},
		{name: "id exhausted", err: domain.ErrIDExhausted, wantCode: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}
