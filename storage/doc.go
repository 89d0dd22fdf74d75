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


// Package storage provides the storage abstraction layer for newswire.
//
// This package defines repository interfaces that decouple the pipeline
// stages from the storage implementation. The badger subpackage provides
// the production implementation; consumers depend only on the interfaces
// defined here, so alternative backends and test doubles slot in without
// modification.
//
// # Architecture
//
// The storage layer follows the Repository pattern. All repositories share
// one Backend so cross-repository writes can run in a single transaction:
//
//   - ArticleRepository: Operations for articles, with unique-link enforcement
//   - FailureRepository: Durable failure ledgers for articles and chunks
//   - SyncRepository: Vector-sync state per (article, namespace) pair
//   - FingerprintRepository: Feed content fingerprints for change detection
//
// # Usage
//
// Open a backend and build repositories over it:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	articles := badger.NewArticleRepository(backend)
//
// Use in tests with in-memory storage:
//
//	repos, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repos.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
