package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()

	dbPath := filepath.Join(dir, "company.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE employees (emp_id INTEGER PRIMARY KEY, full_name TEXT);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.Mkdir(docs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "cv_alice.txt"), []byte("Alice Smith\n\nPython skills"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "photo.png"), []byte{0x89, 'P', 'N', 'G'}, 0o600))

	return &Config{
		Host:          "127.0.0.1",
		Port:          8000,
		DatabaseURL:   "sqlite:///" + dbPath,
		DocsDir:       docs,
		CacheCapacity: 10,
		CacheTTL:      time.Minute,
		AI: domain.AISettings{
			Embedding: domain.EmbeddingSettings{Provider: domain.AIProviderLocal},
			LLM:       domain.LLMSettings{Provider: domain.AIProviderGemini},
		},
	}
}

func TestApp_Wiring(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.runtime.Config().EmbeddingAvailable())
	assert.False(t, a.runtime.Config().LLMAvailable(), "gemini without a key is not configured")
	assert.Nil(t, a.cache)

	schema := a.connect(ctx)
	require.True(t, schema.Discovered(), schema.Error)
	assert.Equal(t, []string{"employees"}, schema.Tables)
	assert.True(t, a.runtime.Config().DatabaseConnected())

	result, err := a.ingestDir(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.IndexedChunks)
	assert.Len(t, result.Skipped, 1)

	answer := a.router.Process(ctx, "Python skills")
	assert.Equal(t, domain.QueryTypeDocument, answer.Type)
	require.Len(t, answer.Documents, 1)
	assert.Equal(t, "Python skills", answer.Documents[0].Content)

	status, err := a.settings.GetAIStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Embedding.Available)
	assert.Equal(t, domain.AIProviderLocal, status.Embedding.Provider)
	assert.Equal(t, []domain.QueryType{domain.QueryTypeDocument}, status.SupportedTypes)
}

func TestApp_ServerRoutes(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()
	a.connect(ctx)

	handler := a.server("test").Handler()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/schema", nil))
	assert.Equal(t, 200, rr.Code)
	assert.Contains(t, rr.Body.String(), `"employees"`)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rr.Code)
	assert.Contains(t, rr.Body.String(), "nlq_safety_rejections_total")
}

func TestApp_IngestDirMissing(t *testing.T) {
	cfg := testConfig(t)
	cfg.DocsDir = filepath.Join(t.TempDir(), "absent")

	a, err := newApp(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	result, err := a.ingestDir(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.IndexedChunks)
}

func TestApp_BadRoutingRules(t *testing.T) {
	cfg := testConfig(t)
	cfg.RoutingRulesFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := newApp(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, version+"\n", out.String())
}

func TestSchemaCommand(t *testing.T) {
	cfg := testConfig(t)
	t.Setenv("DATABASE_URL", cfg.DatabaseURL)
	t.Setenv("LLM_PROVIDER", "gemini")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"schema"})

	require.NoError(t, root.Execute())

	var schema map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &schema))
	assert.Equal(t, []any{"employees"}, schema["tables"])
}
