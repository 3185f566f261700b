// Package extract turns a free-form model answer into a policy card and a
// ranked list of sources.
package extract

import (
	"regexp"
	"strings"

	"github.com/bokjirang/policybot/internal/core"
)

type Result struct {
	Policy  *core.ExtractedPolicy
	Sources []core.SourceRef
}

var (
	artifactBlockRe = regexp.MustCompile("(?s)```[^\\n`]*\\n?.*?```")
	jsonFormatRe    = regexp.MustCompile(`(?m)^.*아래 JSON 포맷.*$`)
	blankLinesRe    = regexp.MustCompile(`\n{3,}`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

// Run parses the card and ranks the sources. A refusal yields no card and
// an empty source list regardless of what the answer or citations hold.
func Run(answer string, citations []string) Result {
	if IsRefusal(answer) {
		return Result{Sources: []core.SourceRef{}}
	}

	p, ok := parseStructured(answer)
	if !ok {
		p = parseLabels(answer)
	}
	policy := normalize(p, citations)

	return Result{
		Policy:  &policy,
		Sources: RankSources(answer, policy.Link.URL, citations),
	}
}

// Sources ranks citations for a text-mode answer, where no card is built.
func Sources(answer string, citations []string) []core.SourceRef {
	if IsRefusal(answer) {
		return []core.SourceRef{}
	}
	return RankSources(answer, "", citations)
}

// IsRefusal reports whether the answer carries the fixed refusal sentence.
func IsRefusal(answer string) bool {
	collapsed := spaceRe.ReplaceAllString(strings.TrimSpace(answer), " ")
	return strings.Contains(collapsed, core.RefusalSentence)
}

// StripArtifacts removes the machine-readable policy and sources blocks
// from the prose shown to the user. Ordinary code blocks are kept.
func StripArtifacts(answer string) string {
	out := artifactBlockRe.ReplaceAllStringFunc(answer, func(block string) string {
		for _, b := range fencedBlocks(block) {
			if b.tag == "policy" || b.tag == "sources" {
				return ""
			}
			if b.tag == "json" {
				if _, ok := parseJSONPolicy(b.body); ok {
					return ""
				}
			}
		}
		return block
	})
	out = inlinePolicyRe.ReplaceAllString(out, "")
	out = jsonFormatRe.ReplaceAllString(out, "")
	out = blankLinesRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
