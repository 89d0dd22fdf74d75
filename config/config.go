// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads newswire configuration from YAML with environment
// overrides. Secrets (API keys, passwords) are expected from the environment
// rather than the config file.
package config

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "NEWSWIRE_CONFIG"
	dataDirEnv         = "NEWSWIRE_DATA_DIR"
	embeddingHostEnv   = "EMBEDDING_HOST"
	embeddingModelEnv  = "EMBEDDING_MODEL"
	embeddingAPIKeyEnv = "EMBEDDING_API_KEY"
	milvusAddressEnv   = "MILVUS_ADDRESS"
	milvusUsernameEnv  = "MILVUS_USERNAME"
	milvusPasswordEnv  = "MILVUS_PASSWORD"
	readerAPIKeyEnv    = "READER_API_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Feeds      []FeedConfig     `yaml:"feeds"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Vector     VectorConfig     `yaml:"vector"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
}

// StorageConfig describes where the database and feed archive live.
type StorageConfig struct {
	// DataDir is the root directory; the database and feed archive are
	// created beneath it.
	DataDir string `yaml:"dataDir"`
}

// FeedConfig describes a single feed source.
type FeedConfig struct {
	Name string `yaml:"name"`
	// URL is the direct feed URL. Empty when GoogleNewsQuery is set.
	URL string `yaml:"url"`
	// GoogleNewsQuery builds a Google News RSS search URL when set.
	// Links from such feeds are redirector URLs and must be resolved
	// to publisher URLs before extraction.
	GoogleNewsQuery string `yaml:"googleNewsQuery"`
	// KeywordCategories reads the media:keywords extension for the
	// category field instead of the item category list.
	KeywordCategories bool `yaml:"keywordCategories"`
}

// ExtractionConfig tunes the content extraction fallback chain.
type ExtractionConfig struct {
	// MinContentLength is the acceptance threshold for extracted text.
	// Shorter output counts as a strategy failure.
	MinContentLength int `yaml:"minContentLength"`
	// DomainStrategies pins a domain to a single named strategy. A pinned
	// domain does not fall back to the rest of the chain.
	DomainStrategies map[string]string `yaml:"domainStrategies"`
	// ReaderAPIURL is the text-extraction proxy used as the last strategy.
	ReaderAPIURL string `yaml:"readerApiUrl"`
	// ReaderAPIKey authorizes reader API requests.
	ReaderAPIKey string `yaml:"readerApiKey"`
}

// EmbeddingConfig defines how to contact the embedding API.
type EmbeddingConfig struct {
	Host   string `yaml:"host"`
	Model  string `yaml:"model"`
	APIKey string `yaml:"apiKey"`
}

// VectorConfig describes the Milvus connection and target collection.
type VectorConfig struct {
	Address    string `yaml:"address"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	Dimension  int    `yaml:"dimension"`
	// Namespace is the default partition articles are synced into.
	Namespace string `yaml:"namespace"`
}

// PipelineConfig tunes ingestion and sync throughput.
type PipelineConfig struct {
	// Workers is the size of the ingestion worker pool.
	Workers int `yaml:"workers"`
	// SyncBatchSize is the number of chunks embedded and upserted per batch.
	SyncBatchSize int `yaml:"syncBatchSize"`
	// ChunkWordBudget is the maximum words per chunk.
	ChunkWordBudget int `yaml:"chunkWordBudget"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom reads YAML configuration from an explicit path and applies
// environment overrides. An empty path loads defaults.
func LoadFrom(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			slog.Warn("config: cannot read file, falling back to defaults", "path", path, "error", err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				slog.Warn("config: cannot parse file, falling back to defaults", "path", path, "error", err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dataDirEnv); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv(embeddingHostEnv); v != "" {
		c.Embedding.Host = v
	}
	if v := os.Getenv(embeddingModelEnv); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv(embeddingAPIKeyEnv); v != "" {
		c.Embedding.APIKey = v
	}
	if v := os.Getenv(milvusAddressEnv); v != "" {
		c.Vector.Address = v
	}
	if v := os.Getenv(milvusUsernameEnv); v != "" {
		c.Vector.Username = v
	}
	if v := os.Getenv(milvusPasswordEnv); v != "" {
		c.Vector.Password = v
	}
	if v := os.Getenv(readerAPIKeyEnv); v != "" {
		c.Extraction.ReaderAPIKey = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Storage.DataDir != "" {
		base.Storage = override.Storage
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Extraction.MinContentLength > 0 {
		base.Extraction.MinContentLength = override.Extraction.MinContentLength
	}
	if len(override.Extraction.DomainStrategies) > 0 {
		base.Extraction.DomainStrategies = override.Extraction.DomainStrategies
	}
	if override.Extraction.ReaderAPIURL != "" {
		base.Extraction.ReaderAPIURL = override.Extraction.ReaderAPIURL
	}
	if override.Extraction.ReaderAPIKey != "" {
		base.Extraction.ReaderAPIKey = override.Extraction.ReaderAPIKey
	}

	if override.Embedding.Host != "" {
		base.Embedding.Host = override.Embedding.Host
	}
	if override.Embedding.Model != "" {
		base.Embedding.Model = override.Embedding.Model
	}
	if override.Embedding.APIKey != "" {
		base.Embedding.APIKey = override.Embedding.APIKey
	}

	if override.Vector.Address != "" {
		base.Vector.Address = override.Vector.Address
	}
	if override.Vector.Username != "" {
		base.Vector.Username = override.Vector.Username
	}
	if override.Vector.Password != "" {
		base.Vector.Password = override.Vector.Password
	}
	if override.Vector.Database != "" {
		base.Vector.Database = override.Vector.Database
	}
	if override.Vector.Collection != "" {
		base.Vector.Collection = override.Vector.Collection
	}
	if override.Vector.Dimension > 0 {
		base.Vector.Dimension = override.Vector.Dimension
	}
	if override.Vector.Namespace != "" {
		base.Vector.Namespace = override.Vector.Namespace
	}

	if override.Pipeline.Workers > 0 {
		base.Pipeline.Workers = override.Pipeline.Workers
	}
	if override.Pipeline.SyncBatchSize > 0 {
		base.Pipeline.SyncBatchSize = override.Pipeline.SyncBatchSize
	}
	if override.Pipeline.ChunkWordBudget > 0 {
		base.Pipeline.ChunkWordBudget = override.Pipeline.ChunkWordBudget
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Storage: StorageConfig{DataDir: "./data"},
		Extraction: ExtractionConfig{
			MinContentLength: 100,
			ReaderAPIURL:     "https://r.jina.ai",
		},
		Embedding: EmbeddingConfig{
			Host:  "http://localhost:11434/v1",
			Model: "nomic-embed-text",
		},
		Vector: VectorConfig{
			Address:    "localhost:19530",
			Collection: "news_articles",
			Dimension:  768,
			Namespace:  "rss-feeds",
		},
		Pipeline: PipelineConfig{
			Workers:         5,
			SyncBatchSize:   50,
			ChunkWordBudget: 5500,
		},
	}
}
