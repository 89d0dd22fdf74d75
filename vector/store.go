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


// Package vector abstracts the vector database used for article chunk
// embeddings. Namespaces isolate independent corpora; the Milvus
// implementation maps them to collection partitions.
package vector

import "context"

// Vector is one embedded article chunk ready for upsert.
type Vector struct {
	// ID is the chunk identifier, "<article-uuid>_chunk_<index>".
	ID string

	Values []float32

	// ArticleUUID links the chunk back to its article for targeted deletes.
	ArticleUUID string

	ChunkIndex int64

	Title string

	// Text is the chunk text, capped by the chunker.
	Text string

	// Metadata carries the remaining article fields (domain, category,
	// language, published date) as a JSON document.
	Metadata map[string]any
}

// Match is one ranked result from a similarity query.
type Match struct {
	ID          string
	Score       float32
	ArticleUUID string
	ChunkIndex  int64
	Title       string
	Text        string
	Metadata    map[string]any
}

// Store is the vector database abstraction. Implementations must be
// thread-safe.
type Store interface {
	// Upsert writes vectors into namespace. The whole batch either is
	// accepted or the call errors; callers treat an error as failing
	// every vector in the batch.
	Upsert(ctx context.Context, namespace string, vectors []Vector) error

	// Query returns up to topK matches for the query vector in namespace,
	// ranked by similarity descending.
	Query(ctx context.Context, namespace string, queryVector []float32, topK int) ([]Match, error)

	// DeleteArticle removes every chunk belonging to an article from
	// namespace.
	DeleteArticle(ctx context.Context, namespace, articleUUID string) error

	// DeleteNamespace removes a whole namespace and its vectors.
	DeleteNamespace(ctx context.Context, namespace string) error

	// Close releases the connection.
	Close() error
}
