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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidArticle indicates an Article failed validation.
	ErrInvalidArticle = errors.New("invalid article")

	// ErrInvalidSyncRecord indicates a SyncRecord failed validation.
	ErrInvalidSyncRecord = errors.New("invalid sync record")

	// ErrEmptyLink indicates the article Link field is empty.
	ErrEmptyLink = errors.New("article link cannot be empty")

	// ErrInvalidLink indicates the article Link is not an absolute HTTP(S) URL.
	ErrInvalidLink = errors.New("article link must be an absolute http(s) url")

	// ErrEmptyUUID indicates the article UUID field is empty.
	ErrEmptyUUID = errors.New("article uuid cannot be empty")

	// ErrInvalidContentSource indicates an unrecognized ContentSource value.
	ErrInvalidContentSource = errors.New("invalid content source")

	// ErrEmptyNamespace indicates a sync record without a namespace.
	ErrEmptyNamespace = errors.New("namespace cannot be empty")

	// ErrInvalidSyncStatus indicates an unrecognized SyncStatus value.
	ErrInvalidSyncStatus = errors.New("invalid sync status")
)
