package newswire

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/poiesic/newswire/ai/mock"
	"github.com/poiesic/newswire/feed"
	vecmock "github.com/poiesic/newswire/vector/mock"
	"github.com/poiesic/newswire/vsync"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.Articles())
		assert.NotNil(t, db.Failures())
		assert.NotNil(t, db.SyncRecords())
		assert.NotNil(t, db.Fingerprints())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// A file where a directory is expected.
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, db.Close())
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	archive, err := feed.NewArchive(t.TempDir())
	require.NoError(t, err)

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline(archive, stubExtractor{})
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create syncer", func(t *testing.T) {
		syncer := db.NewSyncer(aimock.NewMockEmbedder(), vecmock.NewMockStore(), vsync.Options{})
		require.NotNil(t, syncer)
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := db.NewSearcher(aimock.NewMockEmbedder(), vecmock.NewMockStore())
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})
}

type stubExtractor struct{}

func (stubExtractor) Extract(ctx context.Context, pageURL string) (string, string, error) {
	return "", "", nil
}
