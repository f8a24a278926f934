// Package urlnorm canonicalizes and validates the URLs the Index Builder
// is asked to ingest, and derives the stable document ID each accepted
// URL is keyed by everywhere downstream.
package urlnorm

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
)

// DefaultAllowedDomains is the default domain allow-list: hosts ending in
// one of these suffixes are eligible for indexing. today.uci.edu is
// additionally restricted to one department path below.
var DefaultAllowedDomains = []string{
	"ics.uci.edu",
	"cs.uci.edu",
	"informatics.uci.edu",
	"stat.uci.edu",
}

// todayDeptHost and todayDeptPath together express the one path-prefixed
// allow-list entry: today.uci.edu/department/information_computer_sciences.
const (
	todayDeptHost = "today.uci.edu"
	todayDeptPath = "/department/information_computer_sciences"
)

// trapSubstrings are URL substrings known to generate low-value or
// infinite-expansion crawl results: calendars, diffs/revisions, login and
// admin actions, archives, session tokens, and source/build/dist paths.
var trapSubstrings = []string{
	"/calendar", "/event", "?action=login", "timeline?", "/history",
	"rev=", "version=", "/diff?version=", "?share=", "/img_",
	"/git", "sort=", "orderby=", "/print/", "/export/", "/preview/",
	"/feed/", "sandbox", "staging", "test=", "/archive/", "/archives/",
	"/version/", "/versions/", "mailto:", "share=", "/backup/", "/mirror/",
	"admin=", "user=", "auth=", "captcha", "trackback", "?sessionid=",
	"?token=", "src/", "source/", ".svn/", "/build/", "/dist/", "/static/",
	"/tmp/", "/attachment",
}

// binaryExtensions lists path suffixes for binary, media, and office
// document formats — content that is never useful to index as text.
var binaryExtensions = []string{
	".css", ".js", ".bmp", ".gif", ".jpg", ".jpeg", ".ico", ".png",
	".tiff", ".tif", ".mid", ".mp2", ".mp3", ".mp4", ".wav", ".avi",
	".mov", ".mpeg", ".ram", ".m4v", ".mkv", ".ogg", ".ogv", ".pdf",
	".ps", ".eps", ".tex", ".ppt", ".pptx", ".doc", ".docx", ".xls",
	".xlsx", ".names", ".data", ".dat", ".exe", ".bz2", ".tar", ".msi",
	".bin", ".7z", ".psd", ".dmg", ".iso", ".epub", ".dll", ".cnf",
	".tgz", ".sha1", ".thmx", ".mso", ".arff", ".rtf", ".jar", ".csv",
	".rm", ".smil", ".wmv", ".swf", ".wma", ".zip", ".rar", ".gz",
	".img", ".ppsx", ".sql",
}

// Normalize drops a URL's fragment and query components, and strips a
// single trailing slash unless the path is already empty. Idempotent:
// Normalize(Normalize(u)) == Normalize(u).
func Normalize(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.Fragment = ""
	parsed.RawQuery = ""

	if parsed.Path != "" && strings.HasSuffix(parsed.Path, "/") && parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}
	return parsed.String()
}

// IsValid reports whether a URL is eligible for indexing: http(s) scheme,
// a host on the allow-list, no trap substring, and no binary/media
// extension.
func IsValid(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	if !allowedHost(parsed) {
		return false
	}

	lower := strings.ToLower(rawURL)
	for _, keyword := range trapSubstrings {
		if strings.Contains(lower, keyword) {
			return false
		}
	}

	lowerPath := strings.ToLower(parsed.Path)
	for _, ext := range binaryExtensions {
		if strings.HasSuffix(lowerPath, ext) {
			return false
		}
	}
	return true
}

func allowedHost(parsed *url.URL) bool {
	host := parsed.Hostname()
	for _, domain := range DefaultAllowedDomains {
		if strings.HasSuffix(host, domain) {
			return true
		}
	}
	if strings.HasSuffix(host, todayDeptHost) && strings.HasPrefix(parsed.Path, todayDeptPath) {
		return true
	}
	return false
}

// StableID hex-parses the first 8 hex digits of MD5(url) into a u32. IDs
// collide only by the same birthday-paradox odds as any other 32-bit hash
// function; a collision causes the later document to be skipped.
func StableID(rawURL string) uint32 {
	sum := md5.Sum([]byte(rawURL))
	hexDigits := hex.EncodeToString(sum[:])[:8]
	v, _ := strconv.ParseUint(hexDigits, 16, 32)
	return uint32(v)
}
