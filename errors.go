package sitesearch

import "errors"

// Sentinel errors, compared with errors.Is, in the style the teacher repo
// uses throughout its posting-list navigation primitives.
var (
	// ErrNoPostingList names a term that was never indexed in the current
	// in-memory batch. The accumulator does not return it: a term absent
	// from a batch is simply absent from drain's output.
	ErrNoPostingList = errors.New("sitesearch: no posting list for term")

	// ErrShardNotFound means a store was asked to load a shard file that
	// does not exist on disk; per the error-handling policy this is treated
	// as df=0 for every term in that shard, not as a fatal condition.
	ErrShardNotFound = errors.New("sitesearch: shard file not found")

	// ErrDocIDCollision names a document whose computed ID collides with
	// one already accepted. Build does not return it: it logs the document
	// as RejectDuplicateID and continues.
	ErrDocIDCollision = errors.New("sitesearch: doc_id collision")
)
