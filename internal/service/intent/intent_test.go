package intent

import (
	"testing"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		question string
		wantMode core.Mode
		wantRule string
	}{
		{"임대료 지원 신청 방법 자세히 설명해줘", core.ModeText, "action-and-explain"},
		{"소상공인 재난지원금", core.ModeCard, "policy-noun"},
		{"청년 월세 지원 신청 방법", core.ModeCard, "action"},
		{"근로장려금과 자녀장려금 차이", core.ModeText, "explain"},
		{"실업급여 자세히 풀어서 설명해줘", core.ModeText, "override-text"},
		{"청년도약계좌 설명을 카드로 보여줘", core.ModeCard, "override-card"},
		{"카드로 말고 텍스트로 알려줘", core.ModeText, "override-text"},
		{"주거급여 신청 서류 표로 정리", core.ModeCard, "override-card"},
		{"근로장려금 글로 알려줘", core.ModeText, "override-text"},
		{"글로벌 창업사관학교 신청 방법", core.ModeCard, "action"},
		{"청년 글로벌 인재 지원사업 대상", core.ModeCard, "action"},
		{"오늘 날씨 어때", core.ModeText, defaultRule},
		{"   ", core.ModeText, defaultRule},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.wantMode, Classify(tt.question))
			assert.Equal(t, tt.wantRule, Explain(tt.question))
		})
	}
}

func TestRules_Order(t *testing.T) {
	index := make(map[string]int, len(Rules))
	for i, r := range Rules {
		index[r.Name] = i
	}

	assert.Less(t, index["action-and-explain"], index["action"])
	assert.Less(t, index["action-and-explain"], index["explain"])
	assert.Less(t, index["override-text"], index["action-and-explain"])
	assert.Equal(t, "policy-noun", Rules[len(Rules)-1].Name)
}

func TestRules_Individually(t *testing.T) {
	byName := make(map[string]Rule, len(Rules))
	for _, r := range Rules {
		byName[r.Name] = r
	}

	assert.True(t, byName["action"].Match(compact("신청 기간")))
	assert.False(t, byName["action"].Match(compact("바우처")))
	assert.True(t, byName["explain"].Match(compact("왜 안 되나요")))
	assert.True(t, byName["policy-noun"].Match(compact("에너지 바우처")))
	assert.True(t, byName["override-text"].Match(compact("자세히 풀어줘")))
}
