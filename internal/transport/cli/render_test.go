package cli

import (
	"testing"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/internal/service/chat"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	t.Run("text answer", func(t *testing.T) {
		assert.Equal(t, "답변", render(&chat.Response{Reply: " 답변\n"}))
	})

	t.Run("card with sources", func(t *testing.T) {
		out := render(&chat.Response{
			Reply: "요약",
			Policy: &core.ExtractedPolicy{
				Title:   "청년월세지원",
				Target:  "만 19~34세",
				Period:  core.NoInfo,
				Support: "월 20만원",
				Method:  "복지로 신청",
				Link:    core.PolicyLink{Title: "공식 안내 페이지", URL: "https://www.bokjiro.go.kr/x"},
			},
			Sources: []core.SourceRef{{Title: "bokjiro.go.kr", URL: "https://www.bokjiro.go.kr/x"}},
		})

		for _, want := range []string{"요약", "청년월세지원", "만 19~34세", core.NoInfo, "복지로 신청", "https://www.bokjiro.go.kr/x", "1. "} {
			assert.Contains(t, out, want)
		}
	})
}
