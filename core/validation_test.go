package core

import (
	"errors"
	"testing"
	"time"
)

func validArticle() *Article {
	return &Article{
		UUID:          NewUUID(),
		Link:          "https://example.com/story",
		Domain:        "example.com",
		Title:         "A story",
		ContentSource: ContentSourceInline,
		Language:      "en",
		FetchedAt:     time.Now().UTC(),
	}
}

func TestValidateArticle(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Article)
		wantErr error
	}{
		{
			name:    "valid article",
			mutate:  func(a *Article) {},
			wantErr: nil,
		},
		{
			name:    "empty link",
			mutate:  func(a *Article) { a.Link = "" },
			wantErr: ErrEmptyLink,
		},
		{
			name:    "relative link",
			mutate:  func(a *Article) { a.Link = "/articles/1" },
			wantErr: ErrInvalidLink,
		},
		{
			name:    "missing uuid",
			mutate:  func(a *Article) { a.UUID = "" },
			wantErr: ErrEmptyUUID,
		},
		{
			name:    "unknown content source",
			mutate:  func(a *Article) { a.ContentSource = "scraped" },
			wantErr: ErrInvalidContentSource,
		},
		{
			name:    "empty content is legal",
			mutate:  func(a *Article) { a.Content = ""; a.ContentSource = ContentSourceFetchFailed },
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validArticle()
			tt.mutate(a)
			err := ValidateArticle(a)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateArticle() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateArticle() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateArticle_Nil(t *testing.T) {
	if err := ValidateArticle(nil); !errors.Is(err, ErrInvalidArticle) {
		t.Errorf("ValidateArticle(nil) error = %v, want ErrInvalidArticle", err)
	}
}

func TestValidateSyncRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  SyncRecord
		wantErr error
	}{
		{
			name: "valid pending record",
			record: SyncRecord{
				ArticleUUID: NewUUID(),
				Namespace:   "rss-feeds",
				Status:      SyncStatusPending,
			},
			wantErr: nil,
		},
		{
			name: "missing namespace",
			record: SyncRecord{
				ArticleUUID: NewUUID(),
				Status:      SyncStatusSynced,
			},
			wantErr: ErrEmptyNamespace,
		},
		{
			name: "missing article uuid",
			record: SyncRecord{
				Namespace: "rss-feeds",
				Status:    SyncStatusFailed,
			},
			wantErr: ErrEmptyUUID,
		},
		{
			name: "bogus status",
			record: SyncRecord{
				ArticleUUID: NewUUID(),
				Namespace:   "rss-feeds",
				Status:      "done",
			},
			wantErr: ErrInvalidSyncStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSyncRecord(&tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSyncRecord() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSyncRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
