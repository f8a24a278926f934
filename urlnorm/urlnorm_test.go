package urlnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_DropsFragmentAndQuery(t *testing.T) {
	assert.Equal(t, "http://ics.uci.edu/a", Normalize("http://ics.uci.edu/a?x=1#frag"))
}

func TestNormalize_StripsTrailingSlash(t *testing.T) {
	assert.Equal(t, "http://ics.uci.edu/a", Normalize("http://ics.uci.edu/a/"))
}

func TestNormalize_KeepsRootSlash(t *testing.T) {
	assert.Equal(t, "http://ics.uci.edu/", Normalize("http://ics.uci.edu/"))
}

func TestNormalize_Idempotent(t *testing.T) {
	u := "http://ics.uci.edu/a/?q=1#frag"
	once := Normalize(u)
	twice := Normalize(once)
	assert.Equal(t, once, twice)
}

func TestIsValid_AcceptsAllowedDomain(t *testing.T) {
	assert.True(t, IsValid("http://ics.uci.edu/research"))
}

func TestIsValid_RejectsDisallowedDomain(t *testing.T) {
	assert.False(t, IsValid("http://example.com/page"))
}

func TestIsValid_RejectsLoginTrap(t *testing.T) {
	assert.False(t, IsValid("http://ics.uci.edu/page?action=login"))
}

func TestIsValid_RejectsBinaryExtension(t *testing.T) {
	assert.False(t, IsValid("http://ics.uci.edu/paper.pdf"))
}

func TestIsValid_AcceptsTodayDepartmentPath(t *testing.T) {
	assert.True(t, IsValid("http://today.uci.edu/department/information_computer_sciences/news"))
}

func TestIsValid_RejectsTodayOutsideDepartmentPath(t *testing.T) {
	assert.False(t, IsValid("http://today.uci.edu/department/other"))
}

func TestStableID_Deterministic(t *testing.T) {
	a := StableID("http://ics.uci.edu/a")
	b := StableID("http://ics.uci.edu/a")
	assert.Equal(t, a, b)
}

func TestStableID_DiffersAcrossURLs(t *testing.T) {
	a := StableID("http://ics.uci.edu/a")
	b := StableID("http://ics.uci.edu/b")
	assert.NotEqual(t, a, b)
}
