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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	// Lookups by article UUID and sync record key return this rather
	// than a nil record.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates an insert collided with an existing key.
	// The ingestion layer treats this as an already-processed link.
	ErrDuplicateKey = errors.New("duplicate key")
)
