package handler

import "net/http"

// Handlers groups every HTTP handler the server mounts
type Handlers struct {
	Structure  *StructureHandler
	Generation *GenerationHandler
	Catalog    *CatalogHandler
	Health     *HealthHandler
}

// RegisterRoutes mounts the API on mux
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /health", h.Health.Check)

	// Capabilities
	mux.HandleFunc("GET /api/languages", h.Catalog.GetLanguages)
	mux.HandleFunc("GET /api/providers", h.Catalog.GetProviders)

	// Structure editing
	mux.HandleFunc("GET /api/structure", h.Structure.GetStructure)
	mux.HandleFunc("PUT /api/structure", h.Structure.ReplaceStructure)
	mux.HandleFunc("DELETE /api/structure", h.Structure.ResetStructure)
	mux.HandleFunc("POST /api/structure/nodes", h.Structure.AddNode)
	mux.HandleFunc("DELETE /api/structure/nodes/{id}", h.Structure.DeleteNode)
	mux.HandleFunc("POST /api/structure/import", h.Structure.Import)
	mux.HandleFunc("POST /api/structure/undo", h.Structure.Undo)
	mux.HandleFunc("POST /api/structure/redo", h.Structure.Redo)
	mux.HandleFunc("GET /api/structure/serialized", h.Structure.GetSerialized)
	mux.HandleFunc("GET /api/structure/render", h.Structure.GetRendered)

	// Generation
	mux.HandleFunc("POST /api/generate", h.Generation.Generate)
	mux.HandleFunc("POST /docker-generate", h.Generation.DockerGenerate)
	mux.HandleFunc("GET /api/artifacts", h.Generation.ListArtifacts)
	mux.HandleFunc("GET /api/artifacts/{id}", h.Generation.GetArtifact)
	mux.HandleFunc("GET /api/artifacts/{id}/download", h.Generation.DownloadArtifact)
}
