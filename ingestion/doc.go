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


// Package ingestion turns archived feed documents into stored articles.
//
// The two halves mirror the two pipeline phases:
//
//   - Downloader fetches configured feeds, detects content changes via
//     fingerprints and archives changed documents to disk.
//   - Pipeline scans the archive per source, deduplicates item links against
//     the article store in two phases (collect all links, then parse only
//     files that contain net-new ones), and processes new items concurrently
//     on a worker pool.
//
// Item processing extracts body content when the feed carries none, resolves
// aggregator redirect links, classifies language, and persists the article.
// Failures land in the failure ledger rather than aborting the run.
package ingestion
