package sitesearch

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// accumulator is the Index Builder's bounded in-memory state between
// partial flushes: a hybrid of roaring bitmaps (fast per-term document
// membership, used to compute a batch's document frequency cheaply at
// flush time) and skip lists (ordered positions, so a flushed posting's
// positions come out already sorted). It never holds more than one
// flush-limit's worth of documents at a time.
type accumulator struct {
	mu sync.Mutex

	docBitmaps map[string]*roaring.Bitmap
	postings   map[string]*SkipList

	docCount int
}

func newAccumulator() *accumulator {
	return &accumulator{
		docBitmaps: make(map[string]*roaring.Bitmap),
		postings:   make(map[string]*SkipList),
	}
}

// addDocument folds one analyzed document's token stream into the batch.
// Position assignment follows analyzer output order: the i-th token of
// tokens lands at offset i.
func (a *accumulator) addDocument(doc DocID, tokens []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for offset, token := range tokens {
		a.indexToken(token, doc, offset)
	}
	a.docCount++

	slog.Debug("accumulated document", slog.String("doc_id", doc.String()), slog.Int("tokens", len(tokens)))
}

func (a *accumulator) indexToken(token string, doc DocID, offset int) {
	bitmap, ok := a.docBitmaps[token]
	if !ok {
		bitmap = roaring.NewBitmap()
		a.docBitmaps[token] = bitmap
	}
	bitmap.Add(uint32(doc))

	skipList, ok := a.postings[token]
	if !ok {
		skipList = NewSkipList()
		a.postings[token] = skipList
	}
	skipList.Insert(Position{DocumentID: float64(doc), Offset: float64(offset)})
}

// documentCount reports how many documents have been folded into the
// current batch since the last reset.
func (a *accumulator) documentCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.docCount
}

// drain converts the batch into a flat term -> doc -> Posting snapshot
// (the partial-index wire shape) and resets the accumulator for the next
// batch. Within one batch a term's occurrences for a given document are
// already in ascending offset order because addDocument walks tokens in
// order; drain only needs to bucket the skip list's flat ascending stream
// by document. batchDF reports each term's document frequency within this
// batch alone, read off the bitmaps' cardinalities rather than recomputed
// by walking byDoc — the same shortcut the teacher took DocBitmaps for.
func (a *accumulator) drain() (postings map[string]PostingList, batchDF map[string]int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	postings = make(map[string]PostingList, len(a.postings))
	for term, skipList := range a.postings {
		byDoc := make(PostingList)
		it := skipList.Iterator()
		for it.HasNext() {
			pos := it.Next()
			d := pos.GetDocumentID()
			byDoc[d] = append(byDoc[d], pos.GetOffset())
		}
		postings[term] = byDoc
	}

	batchDF = make(map[string]int, len(a.docBitmaps))
	for term, bitmap := range a.docBitmaps {
		batchDF[term] = int(bitmap.GetCardinality())
	}

	a.docBitmaps = make(map[string]*roaring.Bitmap)
	a.postings = make(map[string]*SkipList)
	a.docCount = 0

	return postings, batchDF
}

// sortPositions restores ascending, deduplicated order to a Posting. Used
// defensively by the merge step, which concatenates positions contributed
// by more than one partial file for the same (term, doc) pair.
func sortPositions(p Posting) Posting {
	sort.Ints(p)
	out := p[:0]
	var last int
	for i, v := range p {
		if i == 0 || v != last {
			out = append(out, v)
		}
		last = v
	}
	return out
}
