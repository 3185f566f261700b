package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain question",
			input:    "청년 월세 지원 알려줘",
			expected: "청년 월세 지원 알려줘",
		},
		{
			name:     "collapses whitespace",
			input:    "  청년   월세\n\n지원 ",
			expected: "청년 월세 지원",
		},
		{
			name:     "empty falls back",
			input:    "   ",
			expected: DefaultSessionTitle,
		},
		{
			name:     "strips fenced policy template",
			input:    "소상공인 지원금 ```policy\n{\"title\":\"\"}\n```",
			expected: "소상공인 지원금",
		},
		{
			name:     "strips inline policy template",
			input:    "소상공인 지원금 ~policy {\"title\": \"\"}",
			expected: "소상공인 지원금",
		},
		{
			name:     "strips format instruction suffix",
			input:    "에너지 바우처 아래 JSON 포맷으로 답해줘 {\"title\":\"\"}",
			expected: "에너지 바우처",
		},
		{
			name:     "only template yields default",
			input:    "```json\n{}\n```",
			expected: DefaultSessionTitle,
		},
		{
			name:     "truncates long titles by rune",
			input:    strings.Repeat("가", 45),
			expected: strings.Repeat("가", 40) + "…",
		},
		{
			name:     "exactly forty runes kept",
			input:    strings.Repeat("나", 40),
			expected: strings.Repeat("나", 40),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveTitle(tt.input))
		})
	}
}
