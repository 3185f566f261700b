package core

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxTitleRunes = 40

var (
	fencedTemplateRe = regexp.MustCompile("(?s)```\\s*(?:policy|json|sources)\\b.*?(?:```|$)")
	inlinePolicyRe   = regexp.MustCompile(`(?s)~\s*policy\s*\{.*?\}`)
	formatInstrRe    = regexp.MustCompile(`(?s)아래\s*JSON\s*포맷.*$`)
	collapseSpacesRe = regexp.MustCompile(`\s+`)
)

// DeriveTitle builds a session title from the first user message.
func DeriveTitle(message string) string {
	s := fencedTemplateRe.ReplaceAllString(message, " ")
	s = inlinePolicyRe.ReplaceAllString(s, " ")
	s = formatInstrRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(collapseSpacesRe.ReplaceAllString(s, " "))

	if s == "" {
		return DefaultSessionTitle
	}
	if utf8.RuneCountInString(s) > maxTitleRunes {
		return string([]rune(s)[:maxTitleRunes]) + "…"
	}
	return s
}
