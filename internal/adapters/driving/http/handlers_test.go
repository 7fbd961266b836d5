package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// Mock services for testing

type mockQueryService struct {
	processFn func(ctx context.Context, question string) *domain.QueryResult
	questions []string
}

func (m *mockQueryService) Classify(question string) domain.QueryType {
	return domain.DefaultRoutingRules().Classify(question)
}

func (m *mockQueryService) GenerateStructuredQuery(ctx context.Context, question string) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockQueryService) ExecuteStructuredQuery(ctx context.Context, sql string) *domain.SQLResult {
	return domain.SQLError("not implemented")
}

func (m *mockQueryService) Process(ctx context.Context, question string) *domain.QueryResult {
	m.questions = append(m.questions, question)
	if m.processFn != nil {
		return m.processFn(ctx, question)
	}
	return &domain.QueryResult{Query: question, Type: domain.QueryTypeSQL, SQL: &domain.SQLResult{Rows: []domain.Row{}}}
}

type mockConnectionService struct {
	reconnectFn func(ctx context.Context, dsn string) *domain.SchemaDescription
	schema      *domain.SchemaDescription
	dsns        []string
}

func (m *mockConnectionService) Reconnect(ctx context.Context, dsn string) *domain.SchemaDescription {
	m.dsns = append(m.dsns, dsn)
	if m.reconnectFn != nil {
		return m.reconnectFn(ctx, dsn)
	}
	return domain.NewSchemaDescription()
}

func (m *mockConnectionService) Schema() *domain.SchemaDescription {
	if m.schema == nil {
		return domain.SchemaError(domain.ErrNoDatabase)
	}
	return m.schema
}

type mockDocumentService struct {
	ingestFn func(ctx context.Context, paths []string) (*domain.IngestResult, error)
	paths    []string
	chunks   int
}

func (m *mockDocumentService) Ingest(ctx context.Context, paths []string) (*domain.IngestResult, error) {
	m.paths = append(m.paths, paths...)
	if m.ingestFn != nil {
		return m.ingestFn(ctx, paths)
	}
	return &domain.IngestResult{IndexedFiles: paths, IndexedChunks: len(paths)}, nil
}

func (m *mockDocumentService) Search(ctx context.Context, query string, k int) ([]domain.DocumentHit, error) {
	return []domain.DocumentHit{}, nil
}

func (m *mockDocumentService) Stats() domain.IndexStats {
	return domain.IndexStats{Chunks: m.chunks}
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

type testServer struct {
	*Server
	query    *mockQueryService
	conn     *mockConnectionService
	docs     *mockDocumentService
	settings *mockSettingsService
	cfg      *domain.RuntimeConfig
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		query:    &mockQueryService{},
		conn:     &mockConnectionService{},
		docs:     &mockDocumentService{},
		settings: &mockSettingsService{},
		cfg:      domain.NewRuntimeConfig(domain.CacheBackendMemory),
	}
	cfg := DefaultConfig()
	cfg.DocsDir = filepath.Join(t.TempDir(), "docs")
	cfg.Version = "1.2.3"
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("nlq_queries_total 0\n"))
	})
	ts.Server = NewServer(cfg, ts.query, ts.conn, ts.docs, ts.settings, ts.cfg, metrics, nil)
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rr, req)
	return rr
}

func jsonRequest(method, path string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		_, _ = part.Write([]byte(content))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/upload-documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// Health endpoints

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestHandleRoot(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	rr = ts.do(httptest.NewRequest("GET", "/unknown", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown path, got %d", rr.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(httptest.NewRequest("GET", "/version", nil))

	var resp VersionResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", resp.Version)
	}
}

func TestHandleReady_Degraded(t *testing.T) {
	ts := newTestServer(t)
	ts.docs.chunks = 7
	ts.cfg.SetEmbeddingAvailable(true)

	rr := ts.do(httptest.NewRequest("GET", "/ready", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var resp ReadyResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Status != "degraded" {
		t.Errorf("expected degraded, got %s", resp.Status)
	}
	if !resp.Embedding || resp.LLM || resp.Database {
		t.Errorf("unexpected availability flags: %+v", resp)
	}
	if resp.IndexedChunks != 7 {
		t.Errorf("expected 7 chunks, got %d", resp.IndexedChunks)
	}
	if resp.CacheBackend != domain.CacheBackendMemory {
		t.Errorf("expected memory cache backend, got %s", resp.CacheBackend)
	}
}

func TestHandleReady_Ready(t *testing.T) {
	ts := newTestServer(t)
	ts.cfg.SetEmbeddingAvailable(true)
	ts.cfg.SetLLMAvailable(true)
	ts.cfg.SetDatabaseConnected(true)

	rr := ts.do(httptest.NewRequest("GET", "/ready", nil))

	var resp ReadyResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Status != "ready" {
		t.Errorf("expected ready, got %s", resp.Status)
	}
}

func TestHandleReady_CacheDown(t *testing.T) {
	ts := newTestServer(t)
	ts.cache = &mockPinger{err: errors.New("connection refused")}

	rr := ts.do(httptest.NewRequest("GET", "/ready", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestHandleMetrics(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(httptest.NewRequest("GET", "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "nlq_queries_total") {
		t.Errorf("expected metrics output, got %s", rr.Body.String())
	}
}

// Database endpoints

func TestHandleConnectDatabase_Success(t *testing.T) {
	ts := newTestServer(t)
	ts.conn.reconnectFn = func(ctx context.Context, dsn string) *domain.SchemaDescription {
		schema := domain.NewSchemaDescription()
		schema.Tables = []string{"employees"}
		return schema
	}

	rr := ts.do(jsonRequest("POST", "/api/connect-database", ConnectRequest{
		ConnectionString: "sqlite:///company.db",
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp struct {
		Status string `json:"status"`
		Schema struct {
			Tables []string `json:"tables"`
		} `json:"schema"`
	}
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Status != "success" {
		t.Errorf("expected success, got %s", resp.Status)
	}
	if len(resp.Schema.Tables) != 1 || resp.Schema.Tables[0] != "employees" {
		t.Errorf("unexpected tables: %v", resp.Schema.Tables)
	}
	if len(ts.conn.dsns) != 1 || ts.conn.dsns[0] != "sqlite:///company.db" {
		t.Errorf("expected reconnect with dsn, got %v", ts.conn.dsns)
	}
}

func TestHandleConnectDatabase_DiscoveryError(t *testing.T) {
	ts := newTestServer(t)
	ts.conn.reconnectFn = func(ctx context.Context, dsn string) *domain.SchemaDescription {
		return domain.SchemaError(errors.New("failed to ping database: connection refused"))
	}

	rr := ts.do(jsonRequest("POST", "/api/connect-database", ConnectRequest{
		ConnectionString: "postgres://localhost/none",
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp struct {
		Status string            `json:"status"`
		Schema map[string]string `json:"schema"`
	}
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Status != "error" {
		t.Errorf("expected error status, got %s", resp.Status)
	}
	if !strings.Contains(resp.Schema["error"], "connection refused") {
		t.Errorf("expected schema error, got %v", resp.Schema)
	}
}

func TestHandleConnectDatabase_InvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/connect-database", strings.NewReader("not json"))
	if rr := ts.do(req); rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}

	rr := ts.do(jsonRequest("POST", "/api/connect-database", ConnectRequest{}))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for empty connection string, got %d", rr.Code)
	}
	if len(ts.conn.dsns) != 0 {
		t.Error("expected no reconnect for invalid request")
	}
}

func TestHandleGetSchema(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(httptest.NewRequest("GET", "/api/schema", nil))
	var failed map[string]string
	_ = json.NewDecoder(rr.Body).Decode(&failed)
	if failed["error"] != domain.ErrNoDatabase.Error() {
		t.Errorf("expected no database error, got %v", failed)
	}

	ts.conn.schema = domain.NewSchemaDescription()
	rr = ts.do(httptest.NewRequest("GET", "/api/schema", nil))
	if !strings.Contains(rr.Body.String(), `"tables":[]`) {
		t.Errorf("expected empty schema, got %s", rr.Body.String())
	}
}

// Document endpoints

func TestHandleUploadDocuments_Success(t *testing.T) {
	ts := newTestServer(t)
	ts.docs.ingestFn = func(ctx context.Context, paths []string) (*domain.IngestResult, error) {
		return &domain.IngestResult{
			IndexedFiles:  []string{filepath.Join(ts.docsDir, "cv.txt")},
			IndexedChunks: 2,
			Skipped:       []string{filepath.Join(ts.docsDir, "photo.png")},
		}, nil
	}

	rr := ts.do(multipartRequest(t, map[string]string{
		"cv.txt":    "Alice\n\nPython developer",
		"photo.png": "binary",
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp UploadResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Status != "success" || resp.IndexedChunks != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.IndexedFiles) != 1 || resp.IndexedFiles[0] != "cv.txt" {
		t.Errorf("expected base names, got %v", resp.IndexedFiles)
	}
	if len(resp.Skipped) != 1 || resp.Skipped[0] != "photo.png" {
		t.Errorf("expected skipped photo.png, got %v", resp.Skipped)
	}

	saved, err := os.ReadFile(filepath.Join(ts.docsDir, "cv.txt"))
	if err != nil {
		t.Fatalf("expected file to be saved: %v", err)
	}
	if string(saved) != "Alice\n\nPython developer" {
		t.Errorf("unexpected saved content: %q", saved)
	}
	if len(ts.docs.paths) != 2 {
		t.Errorf("expected 2 paths ingested, got %v", ts.docs.paths)
	}
}

func TestHandleUploadDocuments_PathTraversal(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(multipartRequest(t, map[string]string{"../../escape.txt": "x"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	if _, err := os.Stat(filepath.Join(ts.docsDir, "escape.txt")); err != nil {
		t.Errorf("expected file saved inside docs dir: %v", err)
	}
	for _, p := range ts.docs.paths {
		if filepath.Dir(p) != ts.docsDir {
			t.Errorf("path escaped docs dir: %s", p)
		}
	}
}

func TestHandleUploadDocuments_NoFiles(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(multipartRequest(t, map[string]string{}))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}

	req := httptest.NewRequest("POST", "/api/upload-documents", strings.NewReader("plain"))
	if rr := ts.do(req); rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for non-multipart body, got %d", rr.Code)
	}
}

func TestHandleUploadDocuments_IngestError(t *testing.T) {
	ts := newTestServer(t)
	ts.docs.ingestFn = func(ctx context.Context, paths []string) (*domain.IngestResult, error) {
		return nil, domain.ErrServiceUnavailable
	}

	rr := ts.do(multipartRequest(t, map[string]string{"cv.txt": "text"}))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

// Query endpoints

func TestHandleQuery_Success(t *testing.T) {
	ts := newTestServer(t)
	ts.query.processFn = func(ctx context.Context, q string) *domain.QueryResult {
		return &domain.QueryResult{
			Query:        q,
			Type:         domain.QueryTypeSQL,
			GeneratedSQL: "SELECT COUNT(*) AS n FROM employees",
			SQL:          &domain.SQLResult{Rows: []domain.Row{{"n": 3}}},
		}
	}

	rr := ts.do(jsonRequest("POST", "/api/query", QueryRequest{Query: "How many employees?"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp map[string]any
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp["type"] != "SQL" {
		t.Errorf("expected SQL type, got %v", resp["type"])
	}
	if resp["generated_sql"] != "SELECT COUNT(*) AS n FROM employees" {
		t.Errorf("unexpected generated_sql: %v", resp["generated_sql"])
	}
	answer, ok := resp["answer"].([]any)
	if !ok || len(answer) != 1 {
		t.Errorf("expected one row in answer, got %v", resp["answer"])
	}
}

func TestHandleQuery_ErrorCarriedInAnswer(t *testing.T) {
	ts := newTestServer(t)
	ts.query.processFn = func(ctx context.Context, q string) *domain.QueryResult {
		return &domain.QueryResult{
			Query:        q,
			Type:         domain.QueryTypeSQL,
			GeneratedSQL: domain.ErrSchemaNotDiscovered.Error(),
			SQL:          domain.SQLError(domain.ErrSchemaNotDiscovered.Error()),
		}
	}

	rr := ts.do(jsonRequest("POST", "/api/query", QueryRequest{Query: "salary by department"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "has not been discovered") {
		t.Errorf("expected error in answer, got %s", rr.Body.String())
	}
}

func TestHandleQuery_InvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader("{"))
	if rr := ts.do(req); rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}

	rr := ts.do(jsonRequest("POST", "/api/query", QueryRequest{Query: "   "}))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for blank query, got %d", rr.Code)
	}
	if len(ts.query.questions) != 0 {
		t.Error("expected no processing for invalid request")
	}
}

func TestBaseNames(t *testing.T) {
	if baseNames(nil) != nil {
		t.Error("expected nil for nil input")
	}
	got := baseNames([]string{"/tmp/docs/a.txt", "b.pdf"})
	if got[0] != "a.txt" || got[1] != "b.pdf" {
		t.Errorf("unexpected base names: %v", got)
	}
}
