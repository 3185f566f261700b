package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "bold korean",
			input:    "**청년 월세 지원**",
			expected: "<strong>청년 월세 지원</strong>\n",
		},
		{
			name:     "strikethrough",
			input:    "~~마감~~",
			expected: "<del>마감</del>\n",
		},
		{
			name:     "link keeps href only",
			input:    "[정부24](https://www.gov.kr)",
			expected: "<a href=\"https://www.gov.kr\">정부24</a>\n",
		},
		{
			name:     "header tags stripped",
			input:    "# 신청 방법",
			expected: "신청 방법\n",
		},
		{
			name:     "script tags sanitized",
			input:    "<script>alert('xss')</script>",
			expected: "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MarkdownToTelegramHTML(tt.input))
		})
	}
}

func TestMarkdownToHTML(t *testing.T) {
	assert.Empty(t, MarkdownToHTML("  "))

	got := MarkdownToHTML("## 지원 내용\n\n- 월 최대 **20만원**\n\n<script>alert(1)</script>")
	assert.Contains(t, got, "<h2")
	assert.Contains(t, got, "<li>월 최대 <strong>20만원</strong></li>")
	assert.NotContains(t, got, "<script>")

	link := MarkdownToHTML("[복지로](https://www.bokjiro.go.kr)")
	assert.Contains(t, link, `href="https://www.bokjiro.go.kr"`)
	assert.Contains(t, link, `target="_blank"`)
}

func TestHTMLToText(t *testing.T) {
	got := HTMLToText("<h2>신청 마감 7일 전</h2><p>청년 <b>월세</b> 지원</p>")
	assert.Contains(t, got, "신청 마감 7일 전")
	assert.Contains(t, got, "월세")
	assert.NotContains(t, got, "<p>")
}
