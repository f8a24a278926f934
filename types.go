// Package sitesearch builds and serves a disk-resident positional inverted
// index over a static corpus of harvested HTML documents.
//
// The package is organized around the pipeline described in its component
// breakdown: documents are validated and analyzed (see the analyzer and
// urlnorm subpackages), accumulated in memory, periodically flushed to
// partial index files, merged and sharded into a final on-disk index, and
// finally served by a read-only store consulted at query time.
package sitesearch

import "strconv"

// DocID is the stable identifier assigned to an accepted document: the
// first 32 bits of the MD5 hash of its normalized URL, decimal-rendered
// wherever it crosses a storage boundary.
type DocID uint32

// String renders a DocID the way it is persisted in JSON maps: as a
// decimal string, never hex, so that legacy stores keyed by string decode
// unchanged.
func (d DocID) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

// ParseDocID parses the decimal string form written by String.
func ParseDocID(s string) (DocID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return DocID(v), nil
}

// Posting is the ordered, strictly-ascending, deduplicated list of
// positions at which a term occurs in one document. Term frequency is
// len(Posting).
type Posting []int

// PostingList maps every document containing a term to its Posting. Its
// key-set size is the term's document frequency, df(term).
type PostingList map[DocID]Posting

// RejectKind names the reason a candidate document never made it into the
// index. Rejects are expected control flow, not build failures: the build
// loop records and continues past every one of them.
type RejectKind int

const (
	// RejectMalformedJSON means the input record itself could not be parsed.
	RejectMalformedJSON RejectKind = iota
	// RejectInvalidURL means the document's URL failed validation (scheme,
	// domain allow-list, trap pattern, or binary/media extension).
	RejectInvalidURL
	// RejectDuplicateID means the document's doc_id collided with one
	// already seen.
	RejectDuplicateID
	// RejectContentExtractionFailed means no main/#main/body region could
	// be located in the HTML.
	RejectContentExtractionFailed
	// RejectExactDuplicate means the extracted main text's MD5 hash matches
	// a previously accepted document.
	RejectExactDuplicate
	// RejectNearDuplicate means the extracted main text's shingle set is
	// Jaccard-similar (> 0.9) to a previously accepted document.
	RejectNearDuplicate
	// RejectTooShort means the extracted main text has fewer than 5
	// whitespace-separated tokens.
	RejectTooShort
)

// String gives a short machine-stable name for logging.
func (r RejectKind) String() string {
	switch r {
	case RejectMalformedJSON:
		return "malformed_json"
	case RejectInvalidURL:
		return "invalid_url"
	case RejectDuplicateID:
		return "duplicate_id"
	case RejectContentExtractionFailed:
		return "content_extraction_failed"
	case RejectExactDuplicate:
		return "exact_duplicate"
	case RejectNearDuplicate:
		return "near_duplicate"
	case RejectTooShort:
		return "too_short"
	default:
		return "unknown"
	}
}

// Reject carries a RejectKind plus the URL it was raised for, so a caller
// that wants visibility into skipped documents has something to log.
type Reject struct {
	Kind RejectKind
	URL  string
}

func (r Reject) Error() string {
	return "rejected " + r.URL + ": " + r.Kind.String()
}

// Document is a record read from a per-page input file, before any
// validation or analysis has happened.
type Document struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Analyzed holds everything the Index Builder needs from one accepted
// document: its stable ID, the stemmed token stream used for position
// assignment, and the metadata fields persisted in the auxiliary tables.
type Analyzed struct {
	DocID    DocID
	URL      string
	Title    string
	Headings string
	MainText string
	Tokens   []string
}

// SearchResult is one ranked hit returned by the Query Planner / Scorer:
// a document URL and the score it was ranked by.
type SearchResult struct {
	URL   string
	Score float64
}
