package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "docquery", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 1536, cfg.Embedding.Dimension)
	assert.Equal(t, 2, cfg.Ingest.SentencesPerChunk)
	assert.Equal(t, "document.ingest", cfg.RabbitMQ.IngestQueue)
	assert.Equal(t, "document_chunks", cfg.Milvus.Collection)
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
port = 9000

[embedding]
model = "text-embedding-3-small"
dimension = 512

[ingest]
sentences_per_chunk = 3
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("EMBEDDING_DIMENSION", "256")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 3, cfg.Ingest.SentencesPerChunk)
	// Environment wins over the file.
	assert.Equal(t, 256, cfg.Embedding.Dimension)
	// Untouched sections keep their defaults.
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
}

func TestMySQLDSN(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	cfg.MySQL.User = "svc"
	cfg.MySQL.Password = "secret"
	cfg.MySQL.Host = "db"
	cfg.MySQL.Port = 3307
	cfg.MySQL.DB = "docs"
	cfg.MySQL.Params = "parseTime=true"

	assert.Equal(t, "svc:secret@tcp(db:3307)/docs?parseTime=true", cfg.MySQLDSN())
}

func TestHTTPAddr(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
}
