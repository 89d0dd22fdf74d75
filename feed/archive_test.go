package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive_SaveListRead(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	path1, err := archive.Save("https://example.com/rss", []byte("<rss>one</rss>"))
	require.NoError(t, err)
	path2, err := archive.Save("https://example.com/rss", []byte("<rss>two</rss>"))
	require.NoError(t, err)

	paths, err := archive.List("https://example.com/rss")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Contains(t, paths, path1)
	assert.Contains(t, paths, path2)

	raw, err := archive.Read(path1)
	require.NoError(t, err)
	assert.Equal(t, []byte("<rss>one</rss>"), raw)
}

func TestArchive_ListUnknownSource(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	paths, err := archive.List("https://example.com/never-fetched")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestArchive_SourcesIsolated(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	_, err = archive.Save("https://a.example/rss", []byte("<rss/>"))
	require.NoError(t, err)
	_, err = archive.Save("https://b.example/rss", []byte("<rss/>"))
	require.NoError(t, err)

	paths, err := archive.List("https://a.example/rss")
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestArchive_Remove(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	path, err := archive.Save("src", []byte("<rss/>"))
	require.NoError(t, err)

	require.NoError(t, archive.Remove(path))
	require.NoError(t, archive.Remove(path), "removing a missing file is not an error")

	paths, err := archive.List("src")
	require.NoError(t, err)
	assert.Empty(t, paths)
}
