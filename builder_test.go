package sitesearch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInputDoc(t *testing.T, dir, name, url, content string) {
	t.Helper()
	data, err := json.Marshal(Document{URL: url, Content: content})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestBuild_ScenarioCorpusRanksRelevantDocumentHigher(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(input, 0o755))

	writeInputDoc(t, input, "a.json", "http://ics.uci.edu/a", "<html><body>machine learning research at our lab</body></html>")
	writeInputDoc(t, input, "b.json", "http://ics.uci.edu/b", "<html><body>machine shop tools and parts</body></html>")

	cfg := Config{
		InputDir:   input,
		PartialDir: filepath.Join(root, "partial"),
		FinalDir:   filepath.Join(root, "final"),
		FlushLimit: 5000,
	}

	stats, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DocsIndexed)

	store, err := OpenFileStore(cfg.FinalDir)
	require.NoError(t, err)

	results := Search(store, "machine learning")
	require.Len(t, results, 2)
	assert.Equal(t, "http://ics.uci.edu/a", results[0].URL)
}

func TestBuild_RejectsInvalidURL(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(input, 0o755))

	writeInputDoc(t, input, "trap.json", "http://ics.uci.edu/page?action=login", "<html><body>some admin content here</body></html>")

	cfg := Config{
		InputDir:   input,
		PartialDir: filepath.Join(root, "partial"),
		FinalDir:   filepath.Join(root, "final"),
		FlushLimit: 5000,
	}

	stats, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.DocsIndexed)
}

func TestBuild_DedupKeepsExactlyOne(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(input, 0o755))

	content := "<html><body>identical content shared across two different urls here</body></html>"
	writeInputDoc(t, input, "x.json", "http://ics.uci.edu/x", content)
	writeInputDoc(t, input, "y.json", "http://ics.uci.edu/y", content)

	cfg := Config{
		InputDir:   input,
		PartialDir: filepath.Join(root, "partial"),
		FinalDir:   filepath.Join(root, "final"),
		FlushLimit: 5000,
	}

	stats, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DocsIndexed)
}

func TestBuild_PrefixSharding(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(input, 0o755))

	writeInputDoc(t, input, "c.json", "http://ics.uci.edu/compute", "<html><body>compute systems research group website</body></html>")

	cfg := Config{
		InputDir:   input,
		PartialDir: filepath.Join(root, "partial"),
		FinalDir:   filepath.Join(root, "final"),
		FlushLimit: 5000,
	}
	_, err := Build(cfg)
	require.NoError(t, err)

	store, err := OpenFileStore(cfg.FinalDir)
	require.NoError(t, err)

	_, dfInC := store.LoadPostings("comput")
	assert.Greater(t, dfInC, 0)

	data, err := os.ReadFile(filepath.Join(cfg.FinalDir, "index_z.json"))
	require.NoError(t, err)
	var shard map[string]any
	require.NoError(t, json.Unmarshal(data, &shard))
	_, present := shard["comput"]
	assert.False(t, present, "stem 'comput' must not be retrievable from an unrelated shard")
}

func TestBuild_FlushBoundaryDoesNotAffectTopKResults(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(input, 0o755))

	for i := 0; i < 6; i++ {
		writeInputDoc(t, input, fmt.Sprintf("doc%d.json", i),
			fmt.Sprintf("http://ics.uci.edu/doc%d", i),
			fmt.Sprintf("<html><body>machine learning research paper number %d</body></html>", i))
	}

	run := func(flushLimit int) []SearchResult {
		finalDir := filepath.Join(root, fmt.Sprintf("final-%d", flushLimit))
		cfg := Config{
			InputDir:   input,
			PartialDir: filepath.Join(root, fmt.Sprintf("partial-%d", flushLimit)),
			FinalDir:   finalDir,
			FlushLimit: flushLimit,
		}
		_, err := Build(cfg)
		require.NoError(t, err)
		store, err := OpenFileStore(finalDir)
		require.NoError(t, err)
		return Search(store, "machine learning")
	}

	withLargeFlush := run(5000)
	withSmallFlush := run(2)

	require.Equal(t, len(withLargeFlush), len(withSmallFlush))
	for i := range withLargeFlush {
		assert.Equal(t, withLargeFlush[i].URL, withSmallFlush[i].URL)
		assert.InDelta(t, withLargeFlush[i].Score, withSmallFlush[i].Score, 1e-9)
	}
}
