package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"dockergen/internal/config"
	"dockergen/internal/domain"
	"dockergen/internal/domain/services"
	"dockergen/internal/httputil"
	"dockergen/internal/tree"
	"dockergen/internal/upload"
)

// StructureHandler handles HTTP requests for the session's project structure
type StructureHandler struct {
	structureService services.StructureService
	logger           *slog.Logger
}

// NewStructureHandler creates a new structure handler
func NewStructureHandler(structureService services.StructureService, logger *slog.Logger) *StructureHandler {
	return &StructureHandler{
		structureService: structureService,
		logger:           logger,
	}
}

// TreeResponse is the forest as returned by every structure endpoint
type TreeResponse struct {
	Tree      []tree.NodeJSON `json:"tree"`
	NodeCount int             `json:"node_count"`
}

// AddNodeResponse is returned after a successful insert
type AddNodeResponse struct {
	Node tree.NodeJSON `json:"node"`
	TreeResponse
}

func newTreeResponse(t *tree.Tree) TreeResponse {
	return TreeResponse{Tree: t.ToJSON(), NodeCount: t.Len()}
}

// GetStructure returns the current forest
// GET /api/structure
func (h *StructureHandler) GetStructure(w http.ResponseWriter, r *http.Request) {
	t, err := h.structureService.GetTree(r.Context(), httputil.GetSessionID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newTreeResponse(t))
}

// ReplaceStructure replaces the forest with a client-built one
// PUT /api/structure
func (h *StructureHandler) ReplaceStructure(w http.ResponseWriter, r *http.Request) {
	var req services.ReplaceStructureRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	t, err := h.structureService.Replace(r.Context(), httputil.GetSessionID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newTreeResponse(t))
}

// ResetStructure empties the forest
// DELETE /api/structure
func (h *StructureHandler) ResetStructure(w http.ResponseWriter, r *http.Request) {
	t, err := h.structureService.Reset(r.Context(), httputil.GetSessionID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newTreeResponse(t))
}

// AddNode inserts a file or folder
// POST /api/structure/nodes
func (h *StructureHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	var req services.AddNodeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	t, node, err := h.structureService.AddNode(r.Context(), httputil.GetSessionID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, AddNodeResponse{
		Node:         node.ToJSON(),
		TreeResponse: newTreeResponse(t),
	})
}

// DeleteNode removes a node and its subtree. Deleting an unknown id succeeds.
// DELETE /api/structure/nodes/{id}
func (h *StructureHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID := r.PathValue("id")
	if nodeID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "node ID is required")
		return
	}

	t, err := h.structureService.DeleteNode(r.Context(), httputil.GetSessionID(r), nodeID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newTreeResponse(t))
}

// Import rebuilds the forest from upload paths.
// POST /api/structure/import
//
// Accepts either:
//   - application/json: {"paths": ["project/src/main.go", ...]}
//   - multipart/form-data: "files" parts whose filenames carry the relative
//     path (as sent for a directory selection), repeated "paths" fields, or
//     one "archive" part holding a zip
//   - application/zip: the archive as the body, ?name= sets the container
//
// Only paths are used; file contents are discarded.
func (h *StructureHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req services.ImportRequest
	var err error

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		req.Paths, err = readMultipartPaths(w, r)
	case "application/zip", "application/x-zip-compressed":
		r.Body = http.MaxBytesReader(w, r.Body, config.MaxMultipartBytes)
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "archive"
		}
		req.Paths, err = readZipPaths(r.Body, name)
	default:
		err = httputil.ParseJSON(w, r, &req)
	}
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("starting import",
		"session_id", httputil.GetSessionID(r),
		"path_count", len(req.Paths),
	)

	t, err := h.structureService.Import(r.Context(), httputil.GetSessionID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newTreeResponse(t))
}

// Undo steps back one edit
// POST /api/structure/undo
func (h *StructureHandler) Undo(w http.ResponseWriter, r *http.Request) {
	t, err := h.structureService.Undo(r.Context(), httputil.GetSessionID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newTreeResponse(t))
}

// Redo steps forward one edit
// POST /api/structure/redo
func (h *StructureHandler) Redo(w http.ResponseWriter, r *http.Request) {
	t, err := h.structureService.Redo(r.Context(), httputil.GetSessionID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newTreeResponse(t))
}

// GetSerialized returns the nested name-keyed mapping sent to the provider
// GET /api/structure/serialized
func (h *StructureHandler) GetSerialized(w http.ResponseWriter, r *http.Request) {
	structure, err := h.structureService.Serialize(r.Context(), httputil.GetSessionID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, structure)
}

// GetRendered returns the forest as a text tree
// GET /api/structure/render
func (h *StructureHandler) GetRendered(w http.ResponseWriter, r *http.Request) {
	rendered, err := h.structureService.Render(r.Context(), httputil.GetSessionID(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondText(w, http.StatusOK, rendered+"\n")
}

// readMultipartPaths streams the multipart body and collects relative paths
// without buffering file contents.
func readMultipartPaths(w http.ResponseWriter, r *http.Request) ([]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxMultipartBytes)

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, &domain.ValidationError{Message: "failed to parse multipart form"}
	}

	var filePaths, fieldPaths []string
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, multipartError(err)
		}

		switch part.FormName() {
		case "archive":
			paths, err := readZipPaths(part, upload.ContainerName(rawFilename(part)))
			if err != nil {
				return nil, err
			}
			filePaths = append(filePaths, paths...)
		case "files":
			if p := rawFilename(part); p != "" {
				filePaths = append(filePaths, p)
			}
			if _, err := io.Copy(io.Discard, part); err != nil {
				return nil, multipartError(err)
			}
		case "paths":
			value, err := io.ReadAll(io.LimitReader(part, config.MaxUploadPathLength+1))
			if err != nil {
				return nil, multipartError(err)
			}
			fieldPaths = append(fieldPaths, string(value))
		default:
			_, _ = io.Copy(io.Discard, part)
		}
		_ = part.Close()

		if len(filePaths)+len(fieldPaths) > config.MaxUploadPaths {
			return nil, &domain.ImportError{Reason: fmt.Sprintf("too many paths (maximum %d)", config.MaxUploadPaths)}
		}
	}

	// Explicit path fields win over filenames when both are sent
	if len(fieldPaths) > 0 {
		return fieldPaths, nil
	}
	if len(filePaths) == 0 {
		return nil, &domain.ValidationError{Message: "no files provided"}
	}
	return filePaths, nil
}

// rawFilename returns the filename parameter as sent. Part.FileName strips
// directories, which would lose the relative upload path.
func rawFilename(part *multipart.Part) string {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return part.FileName()
	}
	return strings.TrimSpace(params["filename"])
}

// readZipPaths buffers an archive (zip needs random access) and lists its files
func readZipPaths(body io.Reader, container string) ([]string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, multipartError(err)
	}
	return upload.ZipPaths(bytes.NewReader(data), int64(len(data)), container)
}

func multipartError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &domain.ValidationError{Message: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)}
	}
	return &domain.ValidationError{Message: "failed to read multipart form: " + err.Error()}
}
