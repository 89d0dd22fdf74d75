package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg := LoadFrom("")

	assert.Equal(t, 100, cfg.Extraction.MinContentLength)
	assert.Equal(t, 5500, cfg.Pipeline.ChunkWordBudget)
	assert.Equal(t, "rss-feeds", cfg.Vector.Namespace)
	assert.Equal(t, "localhost:19530", cfg.Vector.Address)
	assert.Empty(t, cfg.Feeds)
}

func TestLoadFrom_YAMLFile(t *testing.T) {
	raw := `
storage:
  dataDir: /var/lib/newswire
feeds:
  - name: example
    url: https://example.com/rss
  - name: gnews-ai
    googleNewsQuery: artificial intelligence
extraction:
  minContentLength: 250
  domainStrategies:
    example.com: headless
vector:
  collection: custom_articles
  dimension: 1536
pipeline:
  workers: 10
`
	path := filepath.Join(t.TempDir(), "newswire.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg := LoadFrom(path)

	assert.Equal(t, "/var/lib/newswire", cfg.Storage.DataDir)
	require.Len(t, cfg.Feeds, 2)
	assert.Equal(t, "https://example.com/rss", cfg.Feeds[0].URL)
	assert.Equal(t, "artificial intelligence", cfg.Feeds[1].GoogleNewsQuery)
	assert.Equal(t, 250, cfg.Extraction.MinContentLength)
	assert.Equal(t, "headless", cfg.Extraction.DomainStrategies["example.com"])
	assert.Equal(t, "custom_articles", cfg.Vector.Collection)
	assert.Equal(t, 1536, cfg.Vector.Dimension)
	assert.Equal(t, 10, cfg.Pipeline.Workers)

	// Unset fields keep defaults.
	assert.Equal(t, 50, cfg.Pipeline.SyncBatchSize)
	assert.Equal(t, "rss-feeds", cfg.Vector.Namespace)
}

func TestLoadFrom_BadFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml:::"), 0o600))

	cfg := LoadFrom(path)
	assert.Equal(t, 100, cfg.Extraction.MinContentLength)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("NEWSWIRE_DATA_DIR", "/tmp/nw")
	t.Setenv("EMBEDDING_HOST", "http://embed.internal:8080/v1")
	t.Setenv("MILVUS_ADDRESS", "milvus.internal:19530")
	t.Setenv("READER_API_KEY", "secret")

	cfg := LoadFrom("")

	assert.Equal(t, "/tmp/nw", cfg.Storage.DataDir)
	assert.Equal(t, "http://embed.internal:8080/v1", cfg.Embedding.Host)
	assert.Equal(t, "milvus.internal:19530", cfg.Vector.Address)
	assert.Equal(t, "secret", cfg.Extraction.ReaderAPIKey)
}
