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


package badger

import "github.com/poiesic/newswire/storage"

// MemoryRepositories bundles in-memory repositories for testing.
// Caller must close the backend when done.
type MemoryRepositories struct {
	Articles     storage.ArticleRepository
	Failures     storage.FailureRepository
	Sync         storage.SyncRepository
	Fingerprints storage.FingerprintRepository
	Backend      *Backend
}

// NewMemoryRepositories creates in-memory repositories for testing.
func NewMemoryRepositories() (*MemoryRepositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	return &MemoryRepositories{
		Articles:     NewArticleRepository(backend),
		Failures:     NewFailureRepository(backend),
		Sync:         NewSyncRepository(backend),
		Fingerprints: NewFingerprintRepository(backend),
		Backend:      backend,
	}, nil
}

// Close closes the underlying backend.
func (m *MemoryRepositories) Close() error {
	return m.Backend.Close()
}
