// Package analyzer turns raw HTML into the stemmed token stream the rest
// of the engine indexes and matches against.
//
// ANALYSIS PIPELINE
// ------------------
//  1. Content extraction → strip structural noise, keep the main region
//  2. Tokenization        → split into maximal alnum runs
//  3. Lowercasing         → normalize case
//  4. Stop-word removal   → drop words the query terms never need to match
//  5. Length/digit filter → drop tokens with no discriminating power
//  6. Stemming            → reduce words to a root form
//
// The query path runs a narrower pipeline via AnalyzeQuery: lowercase,
// whitespace split, stop-word removal and stemming, with no content
// extraction, alnum-run tokenization, or length/digit filter.
package analyzer

import (
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
	"golang.org/x/net/html"
)

// Config controls which stages of the pipeline run, mirroring the
// teacher's AnalyzerConfig/DefaultConfig shape.
type Config struct {
	MinTokenLength  int
	EnableStemming  bool
	EnableStopwords bool
}

// DefaultConfig returns the pipeline configuration used everywhere in
// this engine: stopwords and stemming on, tokens of length 1 dropped.
func DefaultConfig() Config {
	return Config{
		MinTokenLength:  2,
		EnableStemming:  true,
		EnableStopwords: true,
	}
}

// stopwords is the exact ten-word set named by the specification — not
// the few-hundred-word list a general-purpose analyzer might carry.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "on": {},
	"in": {}, "for": {}, "and": {}, "to": {}, "with": {},
}

// Extracted holds the fields the Index Builder needs out of one HTML
// document: the visible main-region text, plus the title and heading
// strings used for scoring boosts.
type Extracted struct {
	MainText string
	Title    string
	Headings string
}

// noiseTags are removed before text extraction; they carry navigation and
// chrome, not content.
var noiseTags = map[string]struct{}{
	"header": {}, "footer": {}, "nav": {}, "aside": {}, "script": {}, "style": {},
}

// ExtractContent parses raw HTML and returns the title, concatenated
// first-tier heading text, and the visible text of the first of: a <main>
// element, an element with id="main", or <body>. Returns ok=false if
// parsing fails or none of the three candidate regions is present — the
// caller treats that as RejectContentExtractionFailed.
func ExtractContent(rawHTML string) (Extracted, bool) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return Extracted{}, false
	}

	title := strings.ToLower(strings.TrimSpace(firstText(doc, "title")))
	headings := strings.ToLower(strings.Join(headingTexts(doc), " "))

	region := findMainRegion(doc)
	if region == nil {
		return Extracted{}, false
	}
	mainText := strings.Join(strings.Fields(visibleText(region)), " ")

	return Extracted{MainText: mainText, Title: title, Headings: headings}, true
}

// findMainRegion prefers <main>, then #main, then <body>.
func findMainRegion(n *html.Node) *html.Node {
	if found := findByTag(n, "main"); found != nil {
		return found
	}
	if found := findByID(n, "main"); found != nil {
		return found
	}
	return findByTag(n, "body")
}

func findByTag(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func firstText(n *html.Node, tag string) string {
	found := findByTag(n, tag)
	if found == nil {
		return ""
	}
	return visibleText(found)
}

func headingTexts(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "h1" || node.Data == "h2" || node.Data == "h3") {
			out = append(out, strings.TrimSpace(visibleText(node)))
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// visibleText concatenates text nodes beneath n, skipping noiseTags
// subtrees entirely.
func visibleText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			if _, noisy := noiseTags[node.Data]; noisy {
				return
			}
		}
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteByte(' ')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// Analyze runs the full indexing pipeline (content extraction through
// stemming) over raw HTML, returning the ordered stem sequence plus the
// extracted metadata needed by the Index Builder. ok=false means the
// document should be rejected before ever reaching the accumulator.
func Analyze(rawHTML string) (tokens []string, extracted Extracted, ok bool) {
	extracted, ok = ExtractContent(rawHTML)
	if !ok {
		return nil, Extracted{}, false
	}
	return AnalyzeWithConfig(extracted.MainText, DefaultConfig()), extracted, true
}

// AnalyzeQuery applies the query-analysis algorithm: lowercase the whole
// string, split on whitespace, drop stop-words, stem each surviving term.
// This is deliberately narrower than the indexing pipeline in
// AnalyzeWithConfig — no alnum-run tokenization, no digit filter, no
// minimum-length filter — since a query is typed text, not HTML-derived
// content, and the original's process_query_terms never applied those.
func AnalyzeQuery(query string) []string {
	tokens := strings.Fields(strings.ToLower(query))
	tokens = stopwordFilter(tokens)
	return stemmerFilter(tokens)
}

// AnalyzeWithConfig runs the tokenize → lowercase → stopword → length →
// stem pipeline over already-plain text.
func AnalyzeWithConfig(text string, config Config) []string {
	tokens := tokenize(text)
	tokens = lowercaseFilter(tokens)

	if config.EnableStopwords {
		tokens = stopwordFilter(tokens)
	}

	tokens = lengthFilter(tokens, config.MinTokenLength)
	tokens = digitFilter(tokens)

	if config.EnableStemming {
		tokens = stemmerFilter(tokens)
	}

	return tokens
}

// tokenize splits on any rune that isn't an ASCII letter or digit,
// matching the specification's [A-Za-z0-9]+ token alphabet exactly
// (unlike a Unicode-letter split, which would admit non-ASCII runs).
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !isASCIIAlnum(r)
	})
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func lowercaseFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = strings.ToLower(token)
	}
	return r
}

func stopwordFilter(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !isStopword(token) {
			r = append(r, token)
		}
	}
	return r
}

func isStopword(token string) bool {
	_, exists := stopwords[token]
	return exists
}

func lengthFilter(tokens []string, minLength int) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) >= minLength {
			r = append(r, token)
		}
	}
	return r
}

// digitFilter drops tokens that are entirely digits — numbers carry no
// discriminating power for this corpus's free-text queries.
func digitFilter(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		allDigits := true
		for _, c := range token {
			if !unicode.IsDigit(c) {
				allDigits = false
				break
			}
		}
		if !allDigits {
			r = append(r, token)
		}
	}
	return r
}

// stemmerFilter reduces tokens to their Porter/Snowball root form.
func stemmerFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = snowballeng.Stem(token, false)
	}
	return r
}
