package sitesearch

import (
	"errors"
	"math"
	"math/rand"
)

// MaxHeight bounds a skip list node's tower; it is large enough that no
// accumulator batch (bounded by the builder's flush limit) ever approaches
// the probability of needing it.
const MaxHeight = 32

// EOF and BOF are sentinel offsets marking the end and beginning of a
// term's posting list within one accumulator batch. Using signed infinity
// keeps every comparison a plain float compare, with no special-cased
// "is this the first call" branches at the call sites.
var (
	EOF = math.Inf(1)
	BOF = math.Inf(-1)
)

var (
	ErrKeyNotFound    = errors.New("sitesearch: key not found")
	ErrNoElementFound = errors.New("sitesearch: no element found")
)

// Position is one occurrence of a term: which document, and at what token
// offset within it. DocumentID and Offset are float64 so that the BOF/EOF
// sentinels above can stand in as real Position values during traversal;
// every non-sentinel Position holds exact integers (DocID values fit
// losslessly in a float64 mantissa).
type Position struct {
	DocumentID float64
	Offset     float64
}

var (
	BOFPosition = Position{DocumentID: BOF, Offset: BOF}
	EOFPosition = Position{DocumentID: EOF, Offset: EOF}
)

func (p *Position) GetDocumentID() DocID { return DocID(p.DocumentID) }
func (p *Position) GetOffset() int       { return int(p.Offset) }
func (p *Position) IsBeginning() bool    { return p.Offset == BOF }
func (p *Position) IsEnd() bool          { return p.Offset == EOF }

func (p *Position) IsBefore(other Position) bool {
	if p.DocumentID != other.DocumentID {
		return p.DocumentID < other.DocumentID
	}
	return p.Offset < other.Offset
}

func (p *Position) IsAfter(other Position) bool {
	if p.DocumentID != other.DocumentID {
		return p.DocumentID > other.DocumentID
	}
	return p.Offset > other.Offset
}

func (p *Position) Equals(other Position) bool {
	return p.DocumentID == other.DocumentID && p.Offset == other.Offset
}

// Node is one element of a skip list: the Position it holds, plus a tower
// of forward pointers, one per level it participates in.
type Node struct {
	Key   Position
	Tower [MaxHeight]*Node
}

// SkipList keeps one term's occurrences in ascending Position order. The
// Index Builder's in-memory accumulator (accumulator.go) holds one of
// these per term, bounded to the documents processed since the last
// partial flush.
type SkipList struct {
	Head   *Node
	Height int
}

// NewSkipList returns an empty list. Height starts at 1: even an empty
// list has a level-0 lane.
func NewSkipList() *SkipList {
	return &SkipList{Head: &Node{}, Height: 1}
}

// Search walks down from the top level, returning the node with an exact
// key match (nil if absent) and the per-level predecessor journey needed
// by Insert, FindLessThan and FindGreaterThan.
func (sl *SkipList) Search(key Position) (*Node, [MaxHeight]*Node) {
	var journey [MaxHeight]*Node
	current := sl.Head

	for level := sl.Height - 1; level >= 0; level-- {
		current = sl.traverseLevel(current, key, level)
		journey[level] = current
	}

	next := current.Tower[0]
	if next != nil && next.Key.Equals(key) {
		return next, journey
	}
	return nil, journey
}

func (sl *SkipList) traverseLevel(start *Node, target Position, level int) *Node {
	current := start
	next := current.Tower[level]
	for next != nil && sl.shouldAdvance(next.Key, target) {
		current = next
		next = current.Tower[level]
	}
	return current
}

func (sl *SkipList) shouldAdvance(nodeKey, targetKey Position) bool {
	if nodeKey.Equals(targetKey) {
		return false
	}
	return nodeKey.IsBefore(targetKey)
}

// Find reports whether key is present, returning it unchanged if so.
func (sl *SkipList) Find(key Position) (Position, error) {
	found, _ := sl.Search(key)
	if found == nil {
		return EOFPosition, ErrKeyNotFound
	}
	return found.Key, nil
}

// FindLessThan returns the largest key strictly less than key.
func (sl *SkipList) FindLessThan(key Position) (Position, error) {
	_, journey := sl.Search(key)
	predecessor := journey[0]
	if predecessor == nil || predecessor == sl.Head {
		return BOFPosition, ErrNoElementFound
	}
	return predecessor.Key, nil
}

// FindGreaterThan returns the smallest key strictly greater than key.
func (sl *SkipList) FindGreaterThan(key Position) (Position, error) {
	found, journey := sl.Search(key)

	if found != nil {
		if found.Tower[0] != nil {
			return found.Tower[0].Key, nil
		}
		return EOFPosition, ErrNoElementFound
	}

	predecessor := journey[0]
	if predecessor != nil && predecessor.Tower[0] != nil {
		return predecessor.Tower[0].Key, nil
	}
	return EOFPosition, ErrNoElementFound
}

// Insert adds key, or is a no-op rewrite if it is already present — the
// accumulator never inserts the same (doc, offset) pair twice because
// token offsets within one document are assigned by a single increasing
// loop counter.
func (sl *SkipList) Insert(key Position) {
	found, journey := sl.Search(key)
	if found != nil {
		found.Key = key
		return
	}

	height := sl.randomHeight()
	newNode := &Node{Key: key}
	sl.linkNode(newNode, journey, height)

	if height > sl.Height {
		sl.Height = height
	}
}

func (sl *SkipList) linkNode(node *Node, journey [MaxHeight]*Node, height int) {
	for level := 0; level < height; level++ {
		predecessor := journey[level]
		if predecessor == nil {
			predecessor = sl.Head
		}
		node.Tower[level] = predecessor.Tower[level]
		predecessor.Tower[level] = node
	}
}

// Last returns the highest key in the list, or EOF if it is empty.
func (sl *SkipList) Last() Position {
	current := sl.Head
	for next := current.Tower[0]; next != nil; next = next.Tower[0] {
		current = next
	}
	if current == sl.Head {
		return EOFPosition
	}
	return current.Key
}

// randomHeight runs the classic coin-flip geometric distribution: 50%
// height 1, 25% height 2, and so on, capped at MaxHeight.
func (sl *SkipList) randomHeight() int {
	height := 1
	for rand.Float64() < 0.5 && height < MaxHeight {
		height++
	}
	return height
}

// Iterator walks a SkipList's level-0 lane in ascending order.
type Iterator struct {
	current *Node
}

// Iterator starts an ascending walk from the first real element.
func (sl *SkipList) Iterator() *Iterator {
	return &Iterator{current: sl.Head.Tower[0]}
}

func (it *Iterator) HasNext() bool {
	return it.current != nil
}

func (it *Iterator) Next() Position {
	if it.current == nil {
		return EOFPosition
	}
	key := it.current.Key
	it.current = it.current.Tower[0]
	return key
}
