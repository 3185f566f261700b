package conv

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/inbucket/html2text"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	tgPolicy   = bluemonday.NewPolicy()
	webPolicy  = bluemonday.UGCPolicy()
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")

	webPolicy.AddTargetBlankToFullyQualifiedLinks(true)
}

func render(md string) []byte {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	return markdown.Render(p.Parse([]byte(md)), renderer)
}

// MarkdownToTelegramHTML renders an answer for Telegram's HTML parse mode.
func MarkdownToTelegramHTML(md string) string {
	return string(tgPolicy.SanitizeBytes(render(md)))
}

// MarkdownToHTML renders an answer as sanitized HTML for web clients.
func MarkdownToHTML(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	return string(webPolicy.SanitizeBytes(render(md)))
}

// HTMLToText produces the plain-text alternative of an HTML body.
func HTMLToText(body string) string {
	text, err := html2text.FromString(body, html2text.Options{OmitLinks: false})
	if err != nil {
		return webPolicy.Sanitize(body)
	}
	return text
}
