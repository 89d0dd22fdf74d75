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


// Package milvus implements vector.Store on a Milvus collection.
//
// One collection holds all article chunks; namespaces map to collection
// partitions, created lazily on first upsert.
package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/poiesic/newswire/vector"
)

const (
	fieldID          = "id"
	fieldVector      = "vector"
	fieldArticleUUID = "article_uuid"
	fieldChunkIndex  = "chunk_index"
	fieldTitle       = "title"
	fieldText        = "text"
	fieldMetadata    = "metadata"
)

// Config holds the connection and collection settings for a Store.
type Config struct {
	Address  string
	Username string
	Password string

	// Database is the Milvus database name, created if absent.
	Database string

	// Collection is the collection name, created if absent.
	Collection string

	// Dimension is the embedding width the collection is created with.
	Dimension int
}

// Store implements vector.Store on Milvus.
type Store struct {
	client     mclient.Client
	collection string
	dimension  int
	logger     *slog.Logger

	mu         sync.Mutex
	partitions map[string]bool
}

// NewStore connects to Milvus and ensures the database, collection, index
// and load state exist. Returns the concrete type; callers use it as a
// vector.Store.
func NewStore(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("milvus address is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("milvus collection is required")
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", cfg.Dimension)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "milvus")

	cli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus at %s: %w", cfg.Address, err)
	}

	if cfg.Database != "" {
		if err := ensureDatabase(ctx, cli, cfg.Database); err != nil {
			cli.Close()
			return nil, err
		}
		if err := cli.UsingDatabase(ctx, cfg.Database); err != nil {
			cli.Close()
			return nil, fmt.Errorf("failed to switch to database %s: %w", cfg.Database, err)
		}
	}

	s := &Store{
		client:     cli,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		logger:     logger,
		partitions: make(map[string]bool),
	}
	if err := s.ensureCollection(ctx); err != nil {
		cli.Close()
		return nil, err
	}
	return s, nil
}

func ensureDatabase(ctx context.Context, cli mclient.Client, name string) error {
	dbs, err := cli.ListDatabases(ctx)
	if err != nil {
		return fmt.Errorf("failed to list databases: %w", err)
	}
	for _, db := range dbs {
		if db.Name == name {
			return nil
		}
	}
	if err := cli.CreateDatabase(ctx, name); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

func (s *Store) ensureCollection(ctx context.Context) error {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	exists := false
	for _, c := range collections {
		if c.Name == s.collection {
			exists = true
			break
		}
	}

	if !exists {
		schema := &entity.Schema{
			CollectionName: s.collection,
			Description:    "Embedded article chunks",
			Fields: []*entity.Field{
				{
					Name:       fieldID,
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					TypeParams: map[string]string{"max_length": "128"},
				},
				{
					Name:       fieldVector,
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{entity.TypeParamDim: fmt.Sprintf("%d", s.dimension)},
				},
				{
					Name:       fieldArticleUUID,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "64"},
				},
				{
					Name:     fieldChunkIndex,
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:       fieldTitle,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "2048"},
				},
				{
					Name:       fieldText,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": "32768"},
				},
				{
					Name:     fieldMetadata,
					DataType: entity.FieldTypeJSON,
				},
			},
		}
		if err := s.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
		}
		s.logger.Info("created collection", "collection", s.collection, "dimension", s.dimension)

		idx, err := entity.NewIndexAUTOINDEX(entity.COSINE)
		if err != nil {
			return fmt.Errorf("failed to build index definition: %w", err)
		}
		if err := s.client.CreateIndex(ctx, s.collection, fieldVector, idx, false); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", s.collection, err)
		}
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to load collection %s: %w", s.collection, err)
	}
	return nil
}

// ensurePartition creates the partition for a namespace if it does not
// exist. Results are cached; partitions are never dropped behind our back
// except through DeleteNamespace, which invalidates the cache.
func (s *Store) ensurePartition(ctx context.Context, namespace string) error {
	s.mu.Lock()
	known := s.partitions[namespace]
	s.mu.Unlock()
	if known {
		return nil
	}

	has, err := s.client.HasPartition(ctx, s.collection, namespace)
	if err != nil {
		return fmt.Errorf("failed to check partition %s: %w", namespace, err)
	}
	if !has {
		if err := s.client.CreatePartition(ctx, s.collection, namespace); err != nil {
			// Another worker may have created it concurrently.
			if !strings.Contains(err.Error(), "exist") {
				return fmt.Errorf("failed to create partition %s: %w", namespace, err)
			}
		}
		s.logger.Info("created partition", "namespace", namespace)
	}

	s.mu.Lock()
	s.partitions[namespace] = true
	s.mu.Unlock()
	return nil
}

// Upsert writes the batch into the namespace partition.
func (s *Store) Upsert(ctx context.Context, namespace string, vectors []vector.Vector) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if len(vectors) == 0 {
		return nil
	}
	if err := s.ensurePartition(ctx, namespace); err != nil {
		return err
	}

	ids := make([]string, len(vectors))
	values := make([][]float32, len(vectors))
	articleUUIDs := make([]string, len(vectors))
	chunkIndexes := make([]int64, len(vectors))
	titles := make([]string, len(vectors))
	texts := make([]string, len(vectors))
	metadatas := make([][]byte, len(vectors))

	for i, v := range vectors {
		if len(v.Values) != s.dimension {
			return fmt.Errorf("vector %s has dimension %d, collection expects %d",
				v.ID, len(v.Values), s.dimension)
		}
		ids[i] = v.ID
		values[i] = v.Values
		articleUUIDs[i] = v.ArticleUUID
		chunkIndexes[i] = v.ChunkIndex
		titles[i] = v.Title
		texts[i] = v.Text

		meta := v.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", v.ID, err)
		}
		metadatas[i] = data
	}

	_, err := s.client.Upsert(ctx, s.collection, namespace,
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnFloatVector(fieldVector, s.dimension, values),
		entity.NewColumnVarChar(fieldArticleUUID, articleUUIDs),
		entity.NewColumnInt64(fieldChunkIndex, chunkIndexes),
		entity.NewColumnVarChar(fieldTitle, titles),
		entity.NewColumnVarChar(fieldText, texts),
		entity.NewColumnJSONBytes(fieldMetadata, metadatas),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %d vectors: %w", len(vectors), err)
	}

	s.logger.Debug("upserted vectors", "namespace", namespace, "count", len(vectors))
	return nil
}

// Query searches the namespace partition and returns ranked matches.
func (s *Store) Query(ctx context.Context, namespace string, queryVector []float32, topK int) ([]vector.Match, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}
	if len(queryVector) != s.dimension {
		return nil, fmt.Errorf("query vector has dimension %d, collection expects %d",
			len(queryVector), s.dimension)
	}
	if topK <= 0 {
		topK = 10
	}

	has, err := s.client.HasPartition(ctx, s.collection, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to check partition %s: %w", namespace, err)
	}
	if !has {
		return nil, nil
	}

	sp, err := entity.NewIndexAUTOINDEXSearchParam(1)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	results, err := s.client.Search(ctx, s.collection, []string{namespace}, "",
		[]string{fieldArticleUUID, fieldChunkIndex, fieldTitle, fieldText, fieldMetadata},
		[]entity.Vector{entity.FloatVector(queryVector)},
		fieldVector, entity.COSINE, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var matches []vector.Match
	for _, sr := range results {
		uuidCol := getColumn(sr.Fields, fieldArticleUUID)
		indexCol := getColumn(sr.Fields, fieldChunkIndex)
		titleCol := getColumn(sr.Fields, fieldTitle)
		textCol := getColumn(sr.Fields, fieldText)
		metaCol := getColumn(sr.Fields, fieldMetadata)

		for i := 0; i < sr.ResultCount; i++ {
			id, err := sr.IDs.GetAsString(i)
			if err != nil {
				return nil, fmt.Errorf("failed to read result id: %w", err)
			}

			m := vector.Match{
				ID:    id,
				Score: sr.Scores[i],
			}
			if uuidCol != nil {
				m.ArticleUUID, _ = uuidCol.GetAsString(i)
			}
			if indexCol != nil {
				m.ChunkIndex, _ = indexCol.GetAsInt64(i)
			}
			if titleCol != nil {
				m.Title, _ = titleCol.GetAsString(i)
			}
			if textCol != nil {
				m.Text, _ = textCol.GetAsString(i)
			}
			if metaCol != nil {
				if raw, err := metaCol.Get(i); err == nil {
					if data, ok := raw.([]byte); ok {
						var meta map[string]any
						if json.Unmarshal(data, &meta) == nil {
							m.Metadata = meta
						}
					}
				}
			}
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// DeleteArticle removes all chunks of one article from the namespace.
func (s *Store) DeleteArticle(ctx context.Context, namespace, articleUUID string) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if articleUUID == "" {
		return fmt.Errorf("article uuid is required")
	}

	has, err := s.client.HasPartition(ctx, s.collection, namespace)
	if err != nil {
		return fmt.Errorf("failed to check partition %s: %w", namespace, err)
	}
	if !has {
		return nil
	}

	expr := fmt.Sprintf("%s == %q", fieldArticleUUID, articleUUID)
	if err := s.client.Delete(ctx, s.collection, namespace, expr); err != nil {
		return fmt.Errorf("failed to delete chunks for article %s: %w", articleUUID, err)
	}
	return nil
}

// DeleteNamespace drops the namespace partition and all its vectors.
func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}

	has, err := s.client.HasPartition(ctx, s.collection, namespace)
	if err != nil {
		return fmt.Errorf("failed to check partition %s: %w", namespace, err)
	}
	if has {
		if err := s.client.ReleasePartitions(ctx, s.collection, []string{namespace}); err != nil {
			s.logger.Warn("failed to release partition before drop", "namespace", namespace, "error", err)
		}
		if err := s.client.DropPartition(ctx, s.collection, namespace); err != nil {
			return fmt.Errorf("failed to drop partition %s: %w", namespace, err)
		}
		s.logger.Info("dropped partition", "namespace", namespace)
	}

	s.mu.Lock()
	delete(s.partitions, namespace)
	s.mu.Unlock()
	return nil
}

// Close disconnects from Milvus.
func (s *Store) Close() error {
	return s.client.Close()
}

func getColumn(fields []entity.Column, name string) entity.Column {
	for _, col := range fields {
		if col.Name() == name {
			return col
		}
	}
	return nil
}
