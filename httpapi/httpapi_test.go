package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wizenheimer/sitesearch"
)

type stubStore struct {
	postings map[string]sitesearch.PostingList
	urls     map[sitesearch.DocID]string
	idf      map[string]float64
	total    int
}

func (s *stubStore) LoadPostings(term string) (sitesearch.PostingList, int) {
	list, ok := s.postings[term]
	if !ok {
		return nil, 0
	}
	return list, len(list)
}
func (s *stubStore) DocURL(id sitesearch.DocID) (string, bool) { u, ok := s.urls[id]; return u, ok }
func (s *stubStore) Title(sitesearch.DocID) string             { return "" }
func (s *stubStore) Headings(sitesearch.DocID) string          { return "" }
func (s *stubStore) IDF(term string) float64                   { return s.idf[term] }
func (s *stubStore) TotalDocs() int                            { return s.total }
func (s *stubStore) StaticRank(sitesearch.DocID) float64       { return 0 }

func TestHandler_ReturnsRankedResults(t *testing.T) {
	store := &stubStore{
		postings: map[string]sitesearch.PostingList{"widget": {1: {0}}},
		urls:     map[sitesearch.DocID]string{1: "http://ics.uci.edu/widget"},
		idf:      map[string]float64{"widget": 1},
		total:    1,
	}
	driver := sitesearch.NewDriver(store)

	req := httptest.NewRequest(http.MethodGet, "/search?q=widget", nil)
	rec := httptest.NewRecorder()
	Handler(driver).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http://ics.uci.edu/widget")
}

func TestHandler_MissingQueryReturnsEmptyArray(t *testing.T) {
	driver := sitesearch.NewDriver(&stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	rec := httptest.NewRecorder()
	Handler(driver).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestHandler_RejectsNonGET(t *testing.T) {
	driver := sitesearch.NewDriver(&stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/search", nil)
	rec := httptest.NewRecorder()
	Handler(driver).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
