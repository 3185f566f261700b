package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/pkg/urlnorm"
)

const maxSources = 5

// officialDomains are government and public-agency hosts. A host matches
// when it equals an entry or is a subdomain of it.
var officialDomains = []string{
	"go.kr",
	"gov.kr",
	"korea.kr",
	"mil.kr",
	"semas.or.kr",
	"kosmes.or.kr",
	"kinfa.or.kr",
	"lh.or.kr",
	"nhis.or.kr",
	"nps.or.kr",
	"kosaf.or.kr",
	"kised.or.kr",
}

var (
	bareURLRe    = regexp.MustCompile(`https?://[A-Za-z0-9\-._~:/?#@!$&*+,;=%]+`)
	urlTrailTrim = ".,;:!?)]}'\"」』》>…"
)

func IsOfficial(rawURL string) bool {
	host := urlnorm.Hostname(rawURL)
	if host == "" {
		return false
	}
	for _, d := range officialDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// FindURLs returns the http(s) URLs in text in order of appearance.
func FindURLs(text string) []string {
	matches := bareURLRe.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, urlTrailTrim)
		if urlnorm.IsHTTP(m) {
			urls = append(urls, m)
		}
	}
	return urls
}

// RankSources merges every URL candidate, in priority order: the hidden
// sources block, the card link, the relay citations, then bare URLs in the
// answer. Duplicates by normalized URL keep their first position; official
// hosts are moved ahead of the rest and the list is capped.
func RankSources(answer string, cardLink string, citations []string) []core.SourceRef {
	var candidates []string
	candidates = append(candidates, sourcesBlockURLs(answer)...)
	if cardLink != "" && !isSearchURL(cardLink) {
		candidates = append(candidates, cardLink)
	}
	candidates = append(candidates, citations...)
	candidates = append(candidates, FindURLs(answer)...)

	seen := make(map[string]struct{}, len(candidates))
	var official, other []core.SourceRef

	for _, c := range candidates {
		if !urlnorm.IsHTTP(c) {
			continue
		}
		key := urlnorm.Normalize(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		ref := core.SourceRef{Title: urlnorm.Hostname(key), URL: key}
		if IsOfficial(key) {
			official = append(official, ref)
		} else {
			other = append(other, ref)
		}
	}

	ranked := append(official, other...)
	if len(ranked) > maxSources {
		ranked = ranked[:maxSources]
	}
	if ranked == nil {
		ranked = []core.SourceRef{}
	}
	return ranked
}

// SourceURLs flattens refs to the citation list returned to callers.
func SourceURLs(refs []core.SourceRef) []string {
	urls := make([]string, len(refs))
	for i, r := range refs {
		urls[i] = r.URL
	}
	return urls
}

// sourcesBlockURLs reads the machine-readable ```sources block. It may hold
// a JSON array of strings or of {title,url} objects, or plain lines.
func sourcesBlockURLs(answer string) []string {
	var urls []string
	for _, b := range fencedBlocks(answer) {
		if b.tag != "sources" {
			continue
		}

		body := cleanJSON(b.body)
		var list []json.RawMessage
		if err := json.Unmarshal([]byte(body), &list); err == nil {
			for _, raw := range list {
				var s string
				if json.Unmarshal(raw, &s) == nil {
					urls = append(urls, s)
					continue
				}
				var obj struct {
					URL  string `json:"url"`
					Link string `json:"link"`
				}
				if json.Unmarshal(raw, &obj) == nil {
					if obj.URL != "" {
						urls = append(urls, obj.URL)
					} else if obj.Link != "" {
						urls = append(urls, obj.Link)
					}
				}
			}
			continue
		}

		urls = append(urls, FindURLs(b.body)...)
	}
	return urls
}
