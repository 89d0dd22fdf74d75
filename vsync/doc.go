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


// Package vsync synchronizes stored articles into the vector store.
//
// Articles are chunked by word budget, embedded in batches and upserted
// under a namespace. A sync record per (article, namespace) pair tracks the
// state machine: pending articles are processed, synced articles are
// short-circuited without embedding calls, failed articles leave per-chunk
// entries in the failure ledger for later retry.
//
// # Usage
//
//	syncer := vsync.NewSyncer(articles, syncRecords, failures, embedder, store, vsync.Options{
//	    BatchSize: 10,
//	})
//	stats, err := syncer.Sync(ctx, "rss-feeds", 0)
//
// RetryFailed re-resolves articles named in the chunk failure ledger and
// pushes them through the same embed-and-upsert path, clearing ledger
// entries on success.
package vsync
