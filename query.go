package sitesearch

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/wizenheimer/sitesearch/analyzer"
)

const (
	topK = 5

	urlLowerWeight   = 2.0
	urlExactWeight   = 1.0
	titleWeight      = 100.0
	headingWeight    = 50.0
	strictPhraseBoost = 1000.0
	weakPhraseBoost   = 50.0

	proximityWindowSpan   = 4
	proximityPositionCap  = 2000
	dampeningLowFraction  = 0.1
	dampeningHighFraction = 0.9
	dampeningFactor       = 0.85
)

// candidate is the per-document working state the scorer accumulates
// between Step 3 (candidate set) and Step 6 (top-k).
type candidate struct {
	doc       DocID
	coverage  float64
	positions map[string][]int // term -> this doc's positions for that term
}

// Search runs the full query pipeline against store and returns the
// top-k ranked results, matching the specification's six-step planner.
func Search(store Store, query string) []SearchResult {
	// Step 1: analyze.
	terms := analyzer.AnalyzeQuery(query)
	if len(terms) == 0 {
		return nil
	}

	// Step 2: fetch postings, dropping absent terms.
	postings := make(map[string]PostingList, len(terms))
	for _, t := range terms {
		list, df := store.LoadPostings(t)
		if df == 0 {
			slog.Debug("query term absent from index", slog.String("term", t))
			continue
		}
		postings[t] = list
	}
	if len(postings) == 0 {
		return nil
	}

	// Step 3: candidate set via union, with per-doc coverage.
	candidates := buildCandidates(terms, postings)
	if len(candidates) == 0 {
		return nil
	}

	// Step 4: phrase detection.
	strictDocs, weakDocs := detectPhrases(terms, candidates)

	// Step 5: scoring.
	type scored struct {
		doc    DocID
		result SearchResult
	}
	ranked := make([]scored, 0, len(candidates))
	phraseMatches := 0
	for _, c := range candidates {
		url, ok := store.DocURL(c.doc)
		if !ok {
			continue
		}
		score := scoreCandidate(store, terms, c, url, strictDocs[c.doc], weakDocs[c.doc])
		if strictDocs[c.doc] || weakDocs[c.doc] {
			phraseMatches++
		}
		ranked = append(ranked, scored{doc: c.doc, result: SearchResult{URL: url, Score: score}})
	}

	// Optional recalibration: when the fraction of candidates that are
	// phrase matches (strict or weak) lies strictly between 0.1 and 0.9,
	// the mix signals ambiguous intent and every score is dampened.
	if len(candidates) > 0 {
		fraction := float64(phraseMatches) / float64(len(candidates))
		if fraction > dampeningLowFraction && fraction < dampeningHighFraction {
			for i := range ranked {
				ranked[i].result.Score *= dampeningFactor
			}
		}
	}

	// Step 6: top-k, score descending, doc_id ascending on ties.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].result.Score != ranked[j].result.Score {
			return ranked[i].result.Score > ranked[j].result.Score
		}
		return ranked[i].doc < ranked[j].doc
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	out := make([]SearchResult, len(ranked))
	for i, s := range ranked {
		out[i] = s.result
	}
	return out
}

// buildCandidates mirrors the teacher's two-phase candidate lookup: a fast
// bitmap union across every query term's posting list first (phase 1, the
// same "which doc IDs match at least one term" filter the teacher's
// findCandidateDocuments ran over DocBitmaps), then a targeted per-document
// position lookup only for documents the union surfaced (phase 2).
func buildCandidates(terms []string, postings map[string]PostingList) map[DocID]*candidate {
	union := roaring.NewBitmap()
	for _, t := range terms {
		for doc := range postings[t] {
			union.Add(uint32(doc))
		}
	}

	candidates := make(map[DocID]*candidate, union.GetCardinality())
	it := union.Iterator()
	for it.HasNext() {
		doc := DocID(it.Next())
		c := &candidate{doc: doc, positions: make(map[string][]int)}
		for _, t := range terms {
			if positions, ok := postings[t][doc]; ok {
				c.positions[t] = positions
			}
		}
		c.coverage = float64(len(c.positions)) / float64(len(terms))
		candidates[doc] = c
	}
	return candidates
}

// detectPhrases implements Step 4: strict phrase detection is attempted
// for every full-coverage candidate; if no candidate in the whole result
// set satisfies it, the planner falls back to a proximity test for the
// same candidates.
func detectPhrases(terms []string, candidates map[DocID]*candidate) (strict, weak map[DocID]bool) {
	strict = make(map[DocID]bool)
	weak = make(map[DocID]bool)

	anyStrict := false
	for doc, c := range candidates {
		if c.coverage != 1.0 {
			continue
		}
		if strictPhrase(terms, c) {
			strict[doc] = true
			anyStrict = true
		}
	}
	if anyStrict {
		return strict, weak
	}

	for doc, c := range candidates {
		if c.coverage != 1.0 {
			continue
		}
		if proximityPhrase(terms, c) {
			weak[doc] = true
		}
	}
	return strict, weak
}

// strictPhrase reports whether an anchor position p exists in the first
// term's positions such that p+i lands in the i-th term's positions for
// every i, i.e. the terms occur consecutively in query order.
func strictPhrase(terms []string, c *candidate) bool {
	anchorPositions := c.positions[terms[0]]
	for _, p := range anchorPositions {
		matched := true
		for i := 1; i < len(terms); i++ {
			if !containsInt(c.positions[terms[i]], p+i) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// proximityPhrase reports whether all terms occur within a small window:
// combine every term's positions into one sorted stream and look for a
// run of len(terms) consecutive entries (by index) whose span is <= 4.
// Documents whose longest single position list exceeds the cap are
// skipped, bounding worst-case cost.
func proximityPhrase(terms []string, c *candidate) bool {
	for _, positions := range c.positions {
		if len(positions) > proximityPositionCap {
			return false
		}
	}

	combined := make([]int, 0)
	for _, t := range terms {
		combined = append(combined, c.positions[t]...)
	}
	sort.Ints(combined)

	need := len(terms)
	if len(combined) < need {
		return false
	}
	for i := 0; i+need <= len(combined); i++ {
		span := combined[i+need-1] - combined[i]
		if span <= proximityWindowSpan {
			return true
		}
	}
	return false
}

func containsInt(xs []int, v int) bool {
	i := sort.SearchInts(xs, v)
	return i < len(xs) && xs[i] == v
}

func scoreCandidate(store Store, terms []string, c *candidate, url string, strict, weak bool) float64 {
	docLen := 0
	for _, positions := range c.positions {
		docLen += len(positions)
	}

	tfidf := 0.0
	if docLen > 0 {
		for term, positions := range c.positions {
			tfidf += (float64(len(positions)) / float64(docLen)) * store.IDF(term)
		}
	}

	urlLower := strings.ToLower(url)
	titleLower := strings.ToLower(store.Title(c.doc))
	headings := store.Headings(c.doc)

	urlBoost := 0.0
	titleBoost := 0.0
	headingBoost := 0.0
	for _, t := range terms {
		if strings.Contains(urlLower, t) {
			urlBoost += urlLowerWeight
		}
		if strings.Contains(url, t) {
			urlBoost += urlExactWeight
		}
		if strings.Contains(titleLower, t) {
			titleBoost += titleWeight
		}
		if strings.Contains(headings, t) {
			headingBoost += headingWeight
		}
	}
	urlBoost -= float64(strings.Count(url, "/"))

	phraseBoost := 0.0
	switch {
	case strict:
		phraseBoost = strictPhraseBoost
	case weak:
		phraseBoost = weakPhraseBoost
	}

	rank := store.StaticRank(c.doc) // inert additive term, zero unless a rank table was loaded

	return (tfidf+urlBoost+titleBoost+headingBoost+phraseBoost+rank)*c.coverage
}

