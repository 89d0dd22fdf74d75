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

import (
	"github.com/poiesic/newswire/core"
)

// MarshalArticle serializes an Article to bytes.
func MarshalArticle(article *core.Article) []byte {
	buf := make([]byte, core.ArticleMUS.Size(*article))
	core.ArticleMUS.Marshal(*article, buf)
	return buf
}

// UnmarshalArticle deserializes an Article from bytes.
func UnmarshalArticle(data []byte) (*core.Article, error) {
	article, _, err := core.ArticleMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// MarshalFailedArticle serializes a FailedArticle to bytes.
func MarshalFailedArticle(failure *core.FailedArticle) []byte {
	buf := make([]byte, core.FailedArticleMUS.Size(*failure))
	core.FailedArticleMUS.Marshal(*failure, buf)
	return buf
}

// UnmarshalFailedArticle deserializes a FailedArticle from bytes.
func UnmarshalFailedArticle(data []byte) (*core.FailedArticle, error) {
	failure, _, err := core.FailedArticleMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &failure, nil
}

// MarshalSyncRecord serializes a SyncRecord to bytes.
func MarshalSyncRecord(record *core.SyncRecord) []byte {
	buf := make([]byte, core.SyncRecordMUS.Size(*record))
	core.SyncRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalSyncRecord deserializes a SyncRecord from bytes.
func UnmarshalSyncRecord(data []byte) (*core.SyncRecord, error) {
	record, _, err := core.SyncRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalFailedChunk serializes a FailedChunk to bytes.
func MarshalFailedChunk(chunk *core.FailedChunk) []byte {
	buf := make([]byte, core.FailedChunkMUS.Size(*chunk))
	core.FailedChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalFailedChunk deserializes a FailedChunk from bytes.
func UnmarshalFailedChunk(data []byte) (*core.FailedChunk, error) {
	chunk, _, err := core.FailedChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}
