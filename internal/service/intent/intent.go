// Package intent decides whether an answer is rendered as a policy card or
// as prose.
package intent

import (
	"strings"
	"unicode"

	"github.com/bokjirang/policybot/internal/core"
)

var (
	cardOverrides = []string{"카드로", "카드형", "표로", "요약해", "요약좀", "간단히정리", "한눈에"}
	// "글로" alone would match "글로벌", so only full phrases are listed.
	textOverrides = []string{"텍스트로", "글로설명", "글로써", "글로풀어", "글로알려", "글로정리", "문장으로", "자세히풀어", "풀어서", "분석해", "서술해"}

	actionWords = []string{
		"신청", "방법", "대상", "자격", "서류", "기간", "금액", "절차",
		"조건", "마감", "접수", "어디서", "얼마",
	}
	explainWords = []string{
		"설명", "자세히", "비교", "차이", "팁", "이유", "왜", "장단점", "주의", "사례",
	}
	policyNouns = []string{
		"지원", "보조금", "바우처", "사업", "정책", "수당", "급여", "장려금",
		"대출", "자금", "혜택", "복지", "월세", "청년", "소상공인",
	}
)

type Rule struct {
	Name  string
	Match func(q string) bool
	Mode  core.Mode
}

// Rules are evaluated in order and the first match wins. The combined
// action+explanation rule must stay ahead of the single-group rules.
var Rules = []Rule{
	{Name: "override-card", Mode: core.ModeCard, Match: func(q string) bool {
		return containsAny(q, cardOverrides) && !containsAny(q, textOverrides)
	}},
	{Name: "override-text", Mode: core.ModeText, Match: func(q string) bool {
		return containsAny(q, textOverrides)
	}},
	{Name: "action-and-explain", Mode: core.ModeText, Match: func(q string) bool {
		return containsAny(q, actionWords) && containsAny(q, explainWords)
	}},
	{Name: "action", Mode: core.ModeCard, Match: func(q string) bool {
		return containsAny(q, actionWords)
	}},
	{Name: "explain", Mode: core.ModeText, Match: func(q string) bool {
		return containsAny(q, explainWords)
	}},
	{Name: "policy-noun", Mode: core.ModeCard, Match: func(q string) bool {
		return containsAny(q, policyNouns)
	}},
}

const defaultRule = "default"

// Classify returns the rendering mode for a question.
func Classify(question string) core.Mode {
	mode, _ := classify(question)
	return mode
}

// Explain returns the name of the rule that decided the mode.
func Explain(question string) string {
	_, name := classify(question)
	return name
}

func classify(question string) (core.Mode, string) {
	q := compact(question)
	if q == "" {
		return core.ModeText, defaultRule
	}
	for _, r := range Rules {
		if r.Match(q) {
			return r.Mode, r.Name
		}
	}
	return core.ModeText, defaultRule
}

// compact lowercases and drops whitespace so "자세히 풀어" and "자세히풀어"
// match the same phrase.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func containsAny(q string, words []string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}
