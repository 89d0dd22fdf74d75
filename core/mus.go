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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-maintained MUS serializers for the stored record schemas. The schema
// set is small and fixed, so serializers are written out rather than
// generated; field order is the struct declaration order and must not change
// without a data migration.

// Exported serializer instances, one per stored record type.
var (
	ArticleMUS       = articleSer{}
	FailedArticleMUS = failedArticleSer{}
	SyncRecordMUS    = syncRecordSer{}
	FailedChunkMUS   = failedChunkSer{}
	TimeMUS          = timeSer{}
)

// timeSer encodes a time.Time as a presence flag plus Unix microseconds.
// The zero time round-trips as zero, which keeps nullable dates nullable.
type timeSer struct{}

func (timeSer) Marshal(t time.Time, bs []byte) (n int) {
	if t.IsZero() {
		return ord.Bool.Marshal(false, bs)
	}
	n = ord.Bool.Marshal(true, bs)
	n += varint.Int64.Marshal(t.UnixMicro(), bs[n:])
	return
}

func (timeSer) Unmarshal(bs []byte) (t time.Time, n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return
	}
	var (
		micros int64
		n1     int
	)
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	t = time.UnixMicro(micros).UTC()
	return
}

func (timeSer) Size(t time.Time) (size int) {
	if t.IsZero() {
		return ord.Bool.Size(false)
	}
	return ord.Bool.Size(true) + varint.Int64.Size(t.UnixMicro())
}

func (s timeSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type articleSer struct{}

func (articleSer) Marshal(a Article, bs []byte) (n int) {
	n = ord.String.Marshal(a.UUID, bs)
	n += ord.String.Marshal(a.Link, bs[n:])
	n += ord.String.Marshal(a.SourceFeedURL, bs[n:])
	n += ord.String.Marshal(a.Domain, bs[n:])
	n += ord.String.Marshal(a.Title, bs[n:])
	n += ord.String.Marshal(a.Creator, bs[n:])
	n += ord.String.Marshal(a.Description, bs[n:])
	n += ord.String.Marshal(a.Content, bs[n:])
	n += ord.String.Marshal(string(a.ContentSource), bs[n:])
	n += ord.String.Marshal(a.Category, bs[n:])
	n += ord.String.Marshal(a.Language, bs[n:])
	n += varint.Int.Marshal(a.WordCount, bs[n:])
	n += TimeMUS.Marshal(a.PublishedAt, bs[n:])
	n += TimeMUS.Marshal(a.FetchedAt, bs[n:])
	n += TimeMUS.Marshal(a.UpdatedAt, bs[n:])
	return
}

func (articleSer) Unmarshal(bs []byte) (a Article, n int, err error) {
	var n1 int
	if a.UUID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if a.Link, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.SourceFeedURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Domain, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Creator, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Description, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	var source string
	if source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	a.ContentSource = ContentSource(source)
	n += n1
	if a.Category, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Language, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.WordCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.PublishedAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.FetchedAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	a.UpdatedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (articleSer) Size(a Article) (size int) {
	size = ord.String.Size(a.UUID)
	size += ord.String.Size(a.Link)
	size += ord.String.Size(a.SourceFeedURL)
	size += ord.String.Size(a.Domain)
	size += ord.String.Size(a.Title)
	size += ord.String.Size(a.Creator)
	size += ord.String.Size(a.Description)
	size += ord.String.Size(a.Content)
	size += ord.String.Size(string(a.ContentSource))
	size += ord.String.Size(a.Category)
	size += ord.String.Size(a.Language)
	size += varint.Int.Size(a.WordCount)
	size += TimeMUS.Size(a.PublishedAt)
	size += TimeMUS.Size(a.FetchedAt)
	size += TimeMUS.Size(a.UpdatedAt)
	return
}

func (s articleSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type failedArticleSer struct{}

func (failedArticleSer) Marshal(f FailedArticle, bs []byte) (n int) {
	n = ord.String.Marshal(f.UUID, bs)
	n += ord.String.Marshal(f.Link, bs[n:])
	n += ord.String.Marshal(f.ErrorType, bs[n:])
	n += ord.String.Marshal(f.ErrorMessage, bs[n:])
	n += varint.Int.Marshal(f.AttemptCount, bs[n:])
	n += TimeMUS.Marshal(f.LastAttemptAt, bs[n:])
	n += TimeMUS.Marshal(f.CreatedAt, bs[n:])
	return
}

func (failedArticleSer) Unmarshal(bs []byte) (f FailedArticle, n int, err error) {
	var n1 int
	if f.UUID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if f.Link, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.ErrorType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.AttemptCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.LastAttemptAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	f.CreatedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (failedArticleSer) Size(f FailedArticle) (size int) {
	size = ord.String.Size(f.UUID)
	size += ord.String.Size(f.Link)
	size += ord.String.Size(f.ErrorType)
	size += ord.String.Size(f.ErrorMessage)
	size += varint.Int.Size(f.AttemptCount)
	size += TimeMUS.Size(f.LastAttemptAt)
	size += TimeMUS.Size(f.CreatedAt)
	return
}

func (s failedArticleSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type syncRecordSer struct{}

func (syncRecordSer) Marshal(r SyncRecord, bs []byte) (n int) {
	n = ord.String.Marshal(r.ArticleUUID, bs)
	n += ord.String.Marshal(r.Namespace, bs[n:])
	n += ord.String.Marshal(string(r.Status), bs[n:])
	n += ord.String.Marshal(r.VectorID, bs[n:])
	n += varint.Int.Marshal(r.TotalChunks, bs[n:])
	n += varint.Int.Marshal(r.SyncedChunks, bs[n:])
	n += ord.String.Marshal(r.ErrorMessage, bs[n:])
	n += TimeMUS.Marshal(r.SyncedAt, bs[n:])
	n += TimeMUS.Marshal(r.CreatedAt, bs[n:])
	n += TimeMUS.Marshal(r.UpdatedAt, bs[n:])
	return
}

func (syncRecordSer) Unmarshal(bs []byte) (r SyncRecord, n int, err error) {
	var n1 int
	if r.ArticleUUID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if r.Namespace, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	var status string
	if status, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	r.Status = SyncStatus(status)
	n += n1
	if r.VectorID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.TotalChunks, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.SyncedChunks, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.SyncedAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.CreatedAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	r.UpdatedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (syncRecordSer) Size(r SyncRecord) (size int) {
	size = ord.String.Size(r.ArticleUUID)
	size += ord.String.Size(r.Namespace)
	size += ord.String.Size(string(r.Status))
	size += ord.String.Size(r.VectorID)
	size += varint.Int.Size(r.TotalChunks)
	size += varint.Int.Size(r.SyncedChunks)
	size += ord.String.Size(r.ErrorMessage)
	size += TimeMUS.Size(r.SyncedAt)
	size += TimeMUS.Size(r.CreatedAt)
	size += TimeMUS.Size(r.UpdatedAt)
	return
}

func (s syncRecordSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type failedChunkSer struct{}

func (failedChunkSer) Marshal(f FailedChunk, bs []byte) (n int) {
	n = ord.String.Marshal(f.ArticleUUID, bs)
	n += varint.Int.Marshal(f.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(f.TotalChunks, bs[n:])
	n += ord.String.Marshal(f.ErrorType, bs[n:])
	n += ord.String.Marshal(f.ErrorMessage, bs[n:])
	n += varint.Int.Marshal(f.AttemptCount, bs[n:])
	n += TimeMUS.Marshal(f.LastAttemptAt, bs[n:])
	n += TimeMUS.Marshal(f.CreatedAt, bs[n:])
	return
}

func (failedChunkSer) Unmarshal(bs []byte) (f FailedChunk, n int, err error) {
	var n1 int
	if f.ArticleUUID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if f.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.TotalChunks, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.ErrorType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.AttemptCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.LastAttemptAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	f.CreatedAt, n1, err = TimeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (failedChunkSer) Size(f FailedChunk) (size int) {
	size = ord.String.Size(f.ArticleUUID)
	size += varint.Int.Size(f.ChunkIndex)
	size += varint.Int.Size(f.TotalChunks)
	size += ord.String.Size(f.ErrorType)
	size += ord.String.Size(f.ErrorMessage)
	size += varint.Int.Size(f.AttemptCount)
	size += TimeMUS.Size(f.LastAttemptAt)
	size += TimeMUS.Size(f.CreatedAt)
	return
}

func (s failedChunkSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
