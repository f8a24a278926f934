package sitesearch

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/wizenheimer/sitesearch/analyzer"
	"github.com/wizenheimer/sitesearch/dedup"
	"github.com/wizenheimer/sitesearch/urlnorm"
)

// BuildStats summarizes a completed build, the data behind the
// analytics.txt report.
type BuildStats struct {
	DocsIndexed int
	UniqueTerms int
	IndexBytes  int64
}

// positionsWire is the on-disk shape of one posting: {"positions": [...]}.
// It exists purely so json.Marshal produces the legacy-compatible nested
// object instead of a bare array.
type positionsWire struct {
	Positions []int `json:"positions"`
}

// Build runs the full ingestion pipeline over cfg.InputDir: validation,
// deduplication, analysis, bounded in-memory accumulation with periodic
// partial flush, and a final merge + prefix-shard + auxiliary-table
// persist. Per-document errors are recorded and skipped; the build never
// aborts for a bad input record. I/O failures on output are fatal and are
// returned wrapped with their cause.
func Build(cfg Config) (*BuildStats, error) {
	if err := os.MkdirAll(cfg.PartialDir, 0o755); err != nil {
		return nil, fmt.Errorf("sitesearch: creating partial dir: %w", err)
	}
	if err := os.MkdirAll(cfg.FinalDir, 0o755); err != nil {
		return nil, fmt.Errorf("sitesearch: creating final dir: %w", err)
	}

	paths, err := discoverInputFiles(cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("sitesearch: discovering input files: %w", err)
	}

	acc := newAccumulator()
	detector := dedup.NewDetector()
	docMap := make(map[DocID]string)
	titleMap := make(map[DocID]string)
	headingMap := make(map[DocID]string)
	seenIDs := make(map[DocID]struct{})

	partialFileCount := 0
	accepted := 0

	flush := func() error {
		if acc.documentCount() == 0 {
			return nil
		}
		batch, batchDF := acc.drain()
		path, err := writePartial(cfg.PartialDir, partialFileCount, batch)
		if err != nil {
			return err
		}
		slog.Info("flushed partial index",
			slog.String("path", path),
			slog.Int("terms", len(batch)),
			slog.Int("max_batch_df", maxDF(batchDF)),
		)
		partialFileCount++
		return nil
	}

	for _, path := range paths {
		doc, reject := readDocument(path)
		if reject != nil {
			slog.Debug("rejected document", slog.String("path", path), slog.String("reason", reject.Kind.String()))
			continue
		}

		if !urlnorm.IsValid(doc.URL) {
			slog.Debug("rejected document", slog.String("url", doc.URL), slog.String("reason", RejectInvalidURL.String()))
			continue
		}
		normalized := urlnorm.Normalize(doc.URL)

		id := DocID(urlnorm.StableID(normalized))
		if _, dup := seenIDs[id]; dup {
			slog.Debug("rejected document", slog.String("url", normalized), slog.String("reason", RejectDuplicateID.String()))
			continue
		}

		tokens, extracted, ok := analyzer.Analyze(doc.Content)
		if !ok {
			slog.Debug("rejected document", slog.String("url", normalized), slog.String("reason", RejectContentExtractionFailed.String()))
			continue
		}

		if dedup.TooShort(extracted.MainText) {
			slog.Debug("rejected document", slog.String("url", normalized), slog.String("reason", RejectTooShort.String()))
			continue
		}

		if exact, near := detector.IsDuplicate(extracted.MainText); exact || near {
			kind := RejectExactDuplicate
			if near {
				kind = RejectNearDuplicate
			}
			slog.Debug("rejected document", slog.String("url", normalized), slog.String("reason", kind.String()))
			continue
		}

		detector.Accept(extracted.MainText)
		seenIDs[id] = struct{}{}
		docMap[id] = normalized
		titleMap[id] = extracted.Title
		headingMap[id] = extracted.Headings
		acc.addDocument(id, tokens)
		accepted++

		if accepted%cfg.FlushLimit == 0 {
			if err := flush(); err != nil {
				return nil, fmt.Errorf("sitesearch: flushing partial index: %w", err)
			}
		}
	}

	if err := flush(); err != nil {
		return nil, fmt.Errorf("sitesearch: flushing final partial index: %w", err)
	}

	merged, err := mergePartials(cfg.PartialDir, partialFileCount)
	if err != nil {
		return nil, fmt.Errorf("sitesearch: merging partial indices: %w", err)
	}

	if err := shardAndWrite(cfg.FinalDir, merged); err != nil {
		return nil, fmt.Errorf("sitesearch: writing sharded index: %w", err)
	}

	idf := computeIDF(merged, accepted)
	if err := writeJSON(filepath.Join(cfg.FinalDir, idfFile), idf); err != nil {
		return nil, fmt.Errorf("sitesearch: writing idf table: %w", err)
	}
	if err := writeJSON(filepath.Join(cfg.FinalDir, docMapFile), stringifyDocMap(docMap)); err != nil {
		return nil, fmt.Errorf("sitesearch: writing doc map: %w", err)
	}
	if err := writeJSON(filepath.Join(cfg.FinalDir, titleMapFile), stringifyDocMap(titleMap)); err != nil {
		return nil, fmt.Errorf("sitesearch: writing title map: %w", err)
	}
	if err := writeJSON(filepath.Join(cfg.FinalDir, headingMapFile), stringifyDocMap(headingMap)); err != nil {
		return nil, fmt.Errorf("sitesearch: writing heading map: %w", err)
	}

	for _, p := range partialFilePaths(cfg.PartialDir, partialFileCount) {
		_ = os.Remove(p)
	}

	stats := &BuildStats{DocsIndexed: accepted, UniqueTerms: len(merged)}
	stats.IndexBytes = dirSize(cfg.FinalDir)

	if err := writeAnalytics(filepath.Join(cfg.FinalDir, analyticsFile), *stats); err != nil {
		return nil, fmt.Errorf("sitesearch: writing analytics: %w", err)
	}

	slog.Info("build complete",
		slog.Int("docs", stats.DocsIndexed),
		slog.Int("terms", stats.UniqueTerms),
		slog.Int64("bytes", stats.IndexBytes),
	)

	return stats, nil
}

// discoverInputFiles walks dir recursively, returning every .json path in
// sorted order. Sorting is what makes a re-run of the build produce
// byte-identical output regardless of the underlying filesystem's
// directory-entry order.
func discoverInputFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".json" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func readDocument(path string) (Document, *Reject) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, &Reject{Kind: RejectMalformedJSON, URL: path}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, &Reject{Kind: RejectMalformedJSON, URL: path}
	}
	if doc.URL == "" {
		return Document{}, &Reject{Kind: RejectMalformedJSON, URL: path}
	}
	return doc, nil
}

// maxDF returns the largest per-term document frequency in a batch, the
// most-repeated term this flush saw — read straight off the accumulator's
// bitmap cardinalities rather than recomputed from the posting lists.
func maxDF(batchDF map[string]int) int {
	max := 0
	for _, df := range batchDF {
		if df > max {
			max = df
		}
	}
	return max
}

func writePartial(dir string, n int, batch map[string]PostingList) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("partial_%d", n))
	if err := writeJSON(path, wirePostings(batch)); err != nil {
		return "", err
	}
	return path, nil
}

func wirePostings(batch map[string]PostingList) map[string]map[string]positionsWire {
	out := make(map[string]map[string]positionsWire, len(batch))
	for term, byDoc := range batch {
		docs := make(map[string]positionsWire, len(byDoc))
		for doc, positions := range byDoc {
			docs[doc.String()] = positionsWire{Positions: positions}
		}
		out[term] = docs
	}
	return out
}

func partialFilePaths(dir string, count int) []string {
	paths := make([]string, 0, count)
	for i := 0; i < count; i++ {
		paths = append(paths, filepath.Join(dir, fmt.Sprintf("partial_%d", i)))
	}
	return paths
}

// mergePartials reads every partial file and, for each (term, doc) pair
// across all of them, concatenates position lists before sorting and
// deduplicating defensively.
func mergePartials(dir string, count int) (map[string]PostingList, error) {
	merged := make(map[string]PostingList)

	for _, path := range partialFilePaths(dir, count) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var partial map[string]map[string]positionsWire
		if err := json.Unmarshal(data, &partial); err != nil {
			return nil, err
		}

		for term, byDoc := range partial {
			target, ok := merged[term]
			if !ok {
				target = make(PostingList, len(byDoc))
				merged[term] = target
			}
			for docStr, wire := range byDoc {
				id, err := ParseDocID(docStr)
				if err != nil {
					return nil, err
				}
				target[id] = append(target[id], wire.Positions...)
			}
		}
	}

	for _, byDoc := range merged {
		for doc, positions := range byDoc {
			byDoc[doc] = sortPositions(positions)
		}
	}

	return merged, nil
}

// shardAndWrite buckets every term by its first character (26 alphabetic
// shards plus "other") and writes each bucket as one JSON file.
func shardAndWrite(dir string, merged map[string]PostingList) error {
	shards := make(map[string]map[string]map[string]positionsWire)
	for _, p := range shardPrefixes() {
		shards[string(p)] = make(map[string]map[string]positionsWire)
	}
	shards[otherShard] = make(map[string]map[string]positionsWire)

	for term, byDoc := range merged {
		prefix := shardFor(term)
		docs := make(map[string]positionsWire, len(byDoc))
		for doc, positions := range byDoc {
			docs[doc.String()] = positionsWire{Positions: positions}
		}
		shards[prefix][term] = docs
	}

	for prefix, content := range shards {
		path := filepath.Join(dir, shardFileName(prefix))
		if err := writeJSON(path, content); err != nil {
			return err
		}
	}
	return nil
}

// computeIDF returns idf[t] = ln(N / df(t)) for every term in the merged
// index, where N is the accepted document count.
func computeIDF(merged map[string]PostingList, n int) map[string]float64 {
	idf := make(map[string]float64, len(merged))
	for term, byDoc := range merged {
		df := len(byDoc)
		if df == 0 {
			continue
		}
		idf[term] = math.Log(float64(n) / float64(df))
	}
	return idf
}

func stringifyDocMap(m map[DocID]string) map[string]string {
	out := make(map[string]string, len(m))
	for id, v := range m {
		out[id.String()] = v
	}
	return out
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeAnalytics(path string, stats BuildStats) error {
	content := fmt.Sprintf(
		"Documents indexed: %d\nUnique tokens: %d\nIndex size on disk: %d KB\n",
		stats.DocsIndexed, stats.UniqueTerms, stats.IndexBytes/1024,
	)
	return os.WriteFile(path, []byte(content), 0o644)
}

func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
