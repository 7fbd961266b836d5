package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ReadyResponse reports which answer paths are currently available
// @Description Readiness response
type ReadyResponse struct {
	Status        string `json:"status" example:"ready"`
	Database      bool   `json:"database"`
	LLM           bool   `json:"llm"`
	Embedding     bool   `json:"embedding"`
	IndexedChunks int    `json:"indexed_chunks"`
	CacheBackend  string `json:"cache_backend" example:"memory"`
}

// ConnectRequest is the body of POST /api/connect-database
type ConnectRequest struct {
	ConnectionString string `json:"connection_string" example:"sqlite:///company_with_relations.db"`
}

// ConnectResponse carries the discovered schema
type ConnectResponse struct {
	Status string                    `json:"status" example:"success"`
	Schema *domain.SchemaDescription `json:"schema"`
}

// QueryRequest is the body of POST /api/query
type QueryRequest struct {
	Query string `json:"query" example:"How many employees are in Engineering?"`
}

// UploadResponse summarises an upload and the resulting index rebuild
type UploadResponse struct {
	Status        string   `json:"status" example:"success"`
	IndexedFiles  []string `json:"indexed_files"`
	IndexedChunks int      `json:"indexed_chunks"`
	Skipped       []string `json:"skipped,omitempty"`
	Failed        []string `json:"failed,omitempty"`
}

// Health endpoints

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the NLP Query Engine API.",
	})
}

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Reports database, model and index availability. Returns 503 when the result cache is unreachable.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: "ready"}
	if s.runtimeConfig != nil {
		resp.Database = s.runtimeConfig.DatabaseConnected()
		resp.LLM = s.runtimeConfig.LLMAvailable()
		resp.Embedding = s.runtimeConfig.EmbeddingAvailable()
		resp.CacheBackend = s.runtimeConfig.CacheBackend
	}
	if s.docService != nil {
		resp.IndexedChunks = s.docService.Stats().Chunks
	}
	if !resp.Database || !resp.LLM || !resp.Embedding {
		resp.Status = "degraded"
	}

	if s.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.cache.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Database endpoints

// handleConnectDatabase godoc
// @Summary      Connect database
// @Description  Opens the database, discovers its schema and clears the result cache. Connection failures are reported with status "error".
// @Tags         Database
// @Accept       json
// @Produce      json
// @Param        request  body      ConnectRequest  true  "Connection string"
// @Success      200      {object}  ConnectResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Router       /api/connect-database [post]
func (s *Server) handleConnectDatabase(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ConnectionString) == "" {
		writeError(w, http.StatusBadRequest, "connection_string is required")
		return
	}

	schema := s.connectionService.Reconnect(r.Context(), req.ConnectionString)

	status := "success"
	if !schema.Discovered() {
		status = "error"
	}
	writeJSON(w, http.StatusOK, ConnectResponse{Status: status, Schema: schema})
}

// handleGetSchema godoc
// @Summary      Current schema
// @Description  Returns the schema discovered at the last connection
// @Tags         Database
// @Produce      json
// @Success      200  {object}  domain.SchemaDescription
// @Router       /api/schema [get]
func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.connectionService.Schema())
}

// Document endpoints

// handleUploadDocuments godoc
// @Summary      Upload documents
// @Description  Saves the uploaded files and rebuilds the document index from them
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "Documents (.txt, .md, .pdf, .docx)"
// @Success      200    {object}  UploadResponse
// @Failure      400    {object}  ErrorResponse  "No files uploaded"
// @Failure      500    {object}  ErrorResponse  "Indexing failed"
// @Router       /api/upload-documents [post]
func (s *Server) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	if err := os.MkdirAll(s.docsDir, 0o755); err != nil {
		log.Printf("failed to create documents directory: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store documents")
		return
	}

	paths := make([]string, 0, len(headers))
	for _, fh := range headers {
		path, err := s.saveUpload(fh)
		if err != nil {
			log.Printf("failed to save upload %q: %v", fh.Filename, err)
			if errors.Is(err, domain.ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, err.Error())
			} else {
				writeError(w, http.StatusInternalServerError, "failed to store documents")
			}
			return
		}
		paths = append(paths, path)
	}

	result, err := s.docService.Ingest(r.Context(), paths)
	if err != nil {
		log.Printf("document ingestion failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to index documents")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Status:        "success",
		IndexedFiles:  baseNames(result.IndexedFiles),
		IndexedChunks: result.IndexedChunks,
		Skipped:       baseNames(result.Skipped),
		Failed:        baseNames(result.Failed),
	})
}

// saveUpload writes one uploaded file into the documents directory.
// Only the base name of the client-supplied filename is used.
func (s *Server) saveUpload(fh *multipart.FileHeader) (string, error) {
	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(fh.Filename, "\\", "/")))
	if name == "/" || name == "." || name == "" {
		return "", fmt.Errorf("%w: invalid filename %q", domain.ErrInvalidInput, fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(s.docsDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return path, dst.Close()
}

func baseNames(paths []string) []string {
	if paths == nil {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

// Query endpoints

// handleQuery godoc
// @Summary      Ask a question
// @Description  Routes a natural-language question to SQL, the document index or both. Failures are reported inside the answer.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      QueryRequest  true  "Question"
// @Success      200      {object}  domain.QueryResult
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Router       /api/query [post]
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	writeJSON(w, http.StatusOK, s.queryService.Process(r.Context(), req.Query))
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
