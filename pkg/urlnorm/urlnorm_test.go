package urlnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"strips fragment", "https://www.gov.kr/portal/service#top", "https://www.gov.kr/portal/service"},
		{"strips trailing slash", "https://www.gov.kr/portal/", "https://www.gov.kr/portal"},
		{"keeps root slash", "https://www.gov.kr/", "https://www.gov.kr/"},
		{"adds root slash", "https://www.gov.kr", "https://www.gov.kr/"},
		{"root with query", "https://www.gov.kr?id=3", "https://www.gov.kr/?id=3"},
		{"lower-cases host", "https://WWW.Gov.KR/Portal", "https://www.gov.kr/Portal"},
		{"drops utm params", "https://bokjiro.go.kr/a?utm_source=x&utm_medium=y", "https://bokjiro.go.kr/a"},
		{"keeps real params", "https://bokjiro.go.kr/a?id=3&gclid=abc", "https://bokjiro.go.kr/a?id=3"},
		{"not a url", "  정보 없음 ", "정보 없음"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_TrailingSlashAndUTMAreSameEntry(t *testing.T) {
	a := Normalize("https://www.gov.kr/portal/rcvfvrSvc/dtlEx/123/")
	b := Normalize("https://www.gov.kr/portal/rcvfvrSvc/dtlEx/123?utm_source=naver")
	assert.Equal(t, a, b)

	roots := []string{
		"https://www.gov.kr",
		"https://www.gov.kr/",
		"https://www.gov.kr/?utm_source=x",
		"https://WWW.gov.kr#main",
	}
	for _, r := range roots {
		assert.Equal(t, "https://www.gov.kr/", Normalize(r), r)
	}
}

func TestIsHTTP(t *testing.T) {
	assert.True(t, IsHTTP("https://www.gov.kr"))
	assert.True(t, IsHTTP("http://example.com/x"))
	assert.False(t, IsHTTP("ftp://example.com"))
	assert.False(t, IsHTTP("/relative/path"))
	assert.False(t, IsHTTP(""))
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "gov.kr", Hostname("https://www.gov.kr/portal"))
	assert.Equal(t, "bokjiro.go.kr", Hostname("https://BOKJIRO.go.kr:443/x"))
}
