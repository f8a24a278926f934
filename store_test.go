package sitesearch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAuxFile(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestOpenFileStore_ToleratesMissingAuxFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenFileStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, store.TotalDocs())
	assert.Equal(t, "", store.Title(DocID(1)))
	assert.Equal(t, 0.0, store.StaticRank(DocID(1)))
}

func TestOpenFileStore_LoadsAuxTables(t *testing.T) {
	dir := t.TempDir()
	writeAuxFile(t, dir, docMapFile, map[string]string{"1": "http://ics.uci.edu/a"})
	writeAuxFile(t, dir, titleMapFile, map[string]string{"1": "A Title"})
	writeAuxFile(t, dir, headingMapFile, map[string]string{"1": "A Heading"})
	writeAuxFile(t, dir, idfFile, map[string]float64{"term": 0.5})
	writeAuxFile(t, dir, rankFile, map[string]float64{"1": 2.5})

	store, err := OpenFileStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, store.TotalDocs())

	url, ok := store.DocURL(DocID(1))
	require.True(t, ok)
	assert.Equal(t, "http://ics.uci.edu/a", url)
	assert.Equal(t, "A Title", store.Title(DocID(1)))
	assert.Equal(t, "A Heading", store.Headings(DocID(1)))
	assert.Equal(t, 0.5, store.IDF("term"))
	assert.Equal(t, 2.5, store.StaticRank(DocID(1)))
}

func TestFileStore_MissingShardFileMeansDFZero(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenFileStore(dir)
	require.NoError(t, err)

	postings, df := store.LoadPostings("anything")
	assert.Equal(t, 0, df)
	assert.Nil(t, postings)
}

func TestFileStore_LoadPostingsReadsShardAndCaches(t *testing.T) {
	dir := t.TempDir()
	shard := map[string]map[string]positionsWire{
		"comput": {"1": {Positions: []int{0, 3}}},
	}
	writeAuxFile(t, dir, shardFileName("c"), shard)

	store, err := OpenFileStore(dir)
	require.NoError(t, err)

	postings, df := store.LoadPostings("comput")
	require.Equal(t, 1, df)
	assert.Equal(t, []int{0, 3}, []int(postings[DocID(1)]))

	// Mutate the file on disk; a cached shard must not be re-read.
	require.NoError(t, os.Remove(filepath.Join(dir, shardFileName("c"))))
	postingsAgain, dfAgain := store.LoadPostings("comput")
	assert.Equal(t, 1, dfAgain)
	assert.Equal(t, []int{0, 3}, []int(postingsAgain[DocID(1)]))
}

func TestFileStore_UnknownDocIDReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenFileStore(dir)
	require.NoError(t, err)
	_, ok := store.DocURL(DocID(999))
	assert.False(t, ok)
}
