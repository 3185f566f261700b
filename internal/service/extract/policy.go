package extract

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/pkg/urlnorm"
)

const searchURLPrefix = "https://search.naver.com/search.naver?query="

const (
	linkTitleOfficial = "공식 안내 페이지"
	linkTitleExplicit = "관련 링크"
	linkTitleSearch   = "검색 결과 보기"
)

var (
	fencedRe        = regexp.MustCompile("(?s)```([^\\n`]*)\\n?(.*?)```")
	policyPrefixRe  = regexp.MustCompile(`^~?\s*policy\b\s*`)
	inlinePolicyRe  = regexp.MustCompile(`(?s)~\s*policy\s*(\{.*\})`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bulletRe        = regexp.MustCompile(`^[\s#>*\-•·▶■□◆◇●○✔✅📌📢]+|^\d+[.)]\s*`)
	emphasisRe      = regexp.MustCompile(`\*\*|__|~~|` + "`")
)

type fencedBlock struct {
	tag  string
	body string
}

// fencedBlocks lists ``` blocks with a normalized tag. "json policy",
// "~policy" and a "~policy" first line inside a json block all count as
// policy.
func fencedBlocks(text string) []fencedBlock {
	var blocks []fencedBlock
	for _, m := range fencedRe.FindAllStringSubmatch(text, -1) {
		tag := strings.ToLower(strings.TrimSpace(m[1]))
		body := strings.TrimSpace(m[2])

		switch {
		case strings.Contains(tag, "policy"):
			tag = "policy"
		case strings.Contains(tag, "sources"):
			tag = "sources"
		case tag == "json" || tag == "":
			if policyPrefixRe.MatchString(body) {
				tag = "policy"
			} else if tag == "" {
				tag = "plain"
			}
		}
		body = policyPrefixRe.ReplaceAllString(body, "")

		blocks = append(blocks, fencedBlock{tag: tag, body: body})
	}
	return blocks
}

func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

type parsedPolicy struct {
	policy      core.ExtractedPolicy
	explicitURL string
	linkTitle   string
}

// ParsePolicy runs the structured steps only: a fenced policy/json block,
// then the whole answer as a JSON object. The compactor uses it to spot
// card turns in stored history.
func ParsePolicy(answer string) (*core.ExtractedPolicy, bool) {
	p, ok := parseStructured(answer)
	if !ok {
		return nil, false
	}
	return &p.policy, true
}

func parseStructured(answer string) (parsedPolicy, bool) {
	for _, b := range fencedBlocks(answer) {
		if b.tag != "policy" && b.tag != "json" {
			continue
		}
		if p, ok := parseJSONPolicy(b.body); ok {
			return p, true
		}
	}

	if m := inlinePolicyRe.FindStringSubmatch(answer); m != nil {
		if p, ok := parseJSONPolicy(m[1]); ok {
			return p, true
		}
	}

	trimmed := strings.TrimSpace(answer)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		if p, ok := parseJSONPolicy(trimmed); ok {
			return p, true
		}
	}
	return parsedPolicy{}, false
}

func parseJSONPolicy(body string) (parsedPolicy, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(cleanJSON(body)), &m); err != nil {
		return parsedPolicy{}, false
	}

	// nested {"policy": {...}}
	if inner, ok := m["policy"].(map[string]any); ok {
		m = inner
	}

	p := parsedPolicy{
		policy: core.ExtractedPolicy{
			Title:    pick(m, "title", "name", "정책명", "사업명"),
			Target:   pick(m, "target", "eligibility", "대상", "지원대상"),
			Period:   pick(m, "period", "deadline", "기간", "신청기간"),
			Support:  pick(m, "support", "benefit", "benefits", "지원내용", "지원"),
			Method:   pick(m, "method", "how", "apply", "신청방법", "방법"),
			Category: pick(m, "category", "분야"),
		},
	}

	switch link := m["link"].(type) {
	case map[string]any:
		p.explicitURL = pick(link, "url", "href")
		p.linkTitle = pick(link, "title", "name")
	case string:
		p.explicitURL = strings.TrimSpace(link)
	}
	if p.explicitURL == "" {
		p.explicitURL = pick(m, "url", "homepage")
	}

	// an object with none of the card fields is not a card
	pol := p.policy
	if pol.Title == "" && pol.Target == "" && pol.Support == "" && pol.Method == "" && pol.Period == "" {
		return parsedPolicy{}, false
	}
	return p, true
}

func pick(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case float64, bool:
		return fmt.Sprint(val)
	default:
		return ""
	}
}

type labelField struct {
	re  *regexp.Regexp
	set func(p *parsedPolicy, v string)
}

func labelRe(labels ...string) *regexp.Regexp {
	alts := make([]string, len(labels))
	for i, l := range labels {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(l), " ", `\s*`)
	}
	return regexp.MustCompile(`(?m)^[\s\-*•·#>]*\**\s*(?:` + strings.Join(alts, "|") + `)\s*\**\s*[:：]\s*(.+)$`)
}

// Longer labels come first so "지원 대상" is never read as "지원".
var labelFields = []labelField{
	{labelRe("정책명", "사업명", "정책 이름", "제목"), func(p *parsedPolicy, v string) { p.policy.Title = v }},
	{labelRe("지원 대상", "신청 대상", "신청 자격", "자격 요건", "대상", "자격"), func(p *parsedPolicy, v string) { p.policy.Target = v }},
	{labelRe("신청 기간", "접수 기간", "지원 기간", "모집 기간", "기간", "마감"), func(p *parsedPolicy, v string) { p.policy.Period = v }},
	{labelRe("지원 내용", "지원 금액", "지원 규모", "지원금", "혜택", "지원"), func(p *parsedPolicy, v string) { p.policy.Support = v }},
	{labelRe("신청 방법", "신청 절차", "접수 방법", "방법", "절차"), func(p *parsedPolicy, v string) { p.policy.Method = v }},
	{labelRe("분야", "카테고리", "유형"), func(p *parsedPolicy, v string) { p.policy.Category = v }},
	{labelRe("신청 링크", "홈페이지", "바로가기", "링크", "URL"), func(p *parsedPolicy, v string) {
		if urls := FindURLs(v); len(urls) > 0 {
			p.explicitURL = urls[0]
		}
	}},
}

// parseLabels is the regex fallback for answers without usable JSON.
func parseLabels(answer string) parsedPolicy {
	var p parsedPolicy

	for _, f := range labelFields {
		if m := f.re.FindStringSubmatch(answer); m != nil {
			f.set(&p, cleanValue(m[1]))
		}
	}

	if p.policy.Title == "" {
		p.policy.Title = titleCandidate(answer)
	}
	if p.explicitURL == "" {
		if urls := FindURLs(answer); len(urls) > 0 {
			p.explicitURL = urls[0]
		}
	}
	return p
}

// titleCandidate is the first line that is not a label line and still has
// text after markdown decoration is removed.
func titleCandidate(answer string) string {
	for _, line := range strings.Split(answer, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		isLabel := false
		for _, f := range labelFields {
			if f.re.MatchString(line) {
				isLabel = true
				break
			}
		}
		if isLabel {
			continue
		}

		s := cleanValue(bulletRe.ReplaceAllString(strings.TrimSpace(line), ""))
		if utf8.RuneCountInString(s) >= 2 && !strings.HasPrefix(s, "http") {
			return s
		}
	}
	return ""
}

func cleanValue(s string) string {
	s = emphasisRe.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'`))
}

// normalize fills sentinels and resolves the link: an official citation,
// then the explicit URL, then a search URL built from the title.
func normalize(p parsedPolicy, citations []string) core.ExtractedPolicy {
	pol := p.policy
	for _, f := range []*string{&pol.Title, &pol.Target, &pol.Period, &pol.Support, &pol.Method} {
		if strings.TrimSpace(*f) == "" {
			*f = core.NoInfo
		}
	}

	pol.Link = resolveLink(pol.Title, p.explicitURL, p.linkTitle, citations)
	return pol
}

func resolveLink(title, explicitURL, explicitTitle string, citations []string) core.PolicyLink {
	for _, c := range citations {
		if urlnorm.IsHTTP(c) && IsOfficial(c) {
			return core.PolicyLink{Title: linkTitleOfficial, URL: strings.TrimSpace(c)}
		}
	}

	if urlnorm.IsHTTP(explicitURL) {
		t := explicitTitle
		if t == "" {
			t = linkTitleExplicit
		}
		return core.PolicyLink{Title: t, URL: strings.TrimSpace(explicitURL)}
	}

	return core.PolicyLink{Title: linkTitleSearch, URL: SearchURL(title)}
}

// SearchURL is the deterministic fallback link for a policy title.
func SearchURL(title string) string {
	if title == "" || title == core.NoInfo {
		title = "정부 지원 정책"
	}
	return searchURLPrefix + url.QueryEscape(title)
}

func isSearchURL(u string) bool {
	return strings.HasPrefix(u, searchURLPrefix)
}
