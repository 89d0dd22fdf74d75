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

import (
	"fmt"
	"strings"
)

// ValidateArticle validates an Article according to domain rules.
//
// Validation rules:
//   - Link must be an absolute http(s) URL
//   - UUID must be set (assigned at creation, stable across retries)
//   - ContentSource must be a known value
//
// NOT validated:
//   - Content (empty is legal when extraction failed)
//   - PublishedAt (zero is legal for absent or unparseable dates)
//   - Language (set by the ingestion layer, defaults to "unknown")
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}

	if article.Link == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyLink)
	}

	if !IsValidLink(article.Link) {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrInvalidLink)
	}

	if article.UUID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyUUID)
	}

	if err := ValidateContentSource(article.ContentSource); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, err)
	}

	return nil
}

// ValidateSyncRecord validates a SyncRecord according to domain rules.
func ValidateSyncRecord(record *SyncRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidSyncRecord)
	}

	if record.ArticleUUID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSyncRecord, ErrEmptyUUID)
	}

	if record.Namespace == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSyncRecord, ErrEmptyNamespace)
	}

	if err := ValidateSyncStatus(record.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSyncRecord, err)
	}

	return nil
}

// ValidateContentSource validates that a ContentSource has a known value.
func ValidateContentSource(source ContentSource) error {
	switch source {
	case ContentSourceInline, ContentSourceFetched, ContentSourceFetchFailed:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidContentSource, source)
}

// ValidateSyncStatus validates that a SyncStatus has a known value.
func ValidateSyncStatus(status SyncStatus) error {
	switch status {
	case SyncStatusPending, SyncStatusSynced, SyncStatusFailed:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSyncStatus, status)
}

// IsValidLink reports whether link is an absolute http or https URL.
func IsValidLink(link string) bool {
	link = strings.TrimSpace(link)
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}
