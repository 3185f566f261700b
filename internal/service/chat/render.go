package chat

import (
	"fmt"
	"strings"
)

// Markdown renders the response for chat transports that have no card
// widget: the reply, the policy card as a list, then the sources.
func (r *Response) Markdown() string {
	parts := []string{strings.TrimSpace(r.Reply)}

	if p := r.Policy; p != nil {
		var b strings.Builder
		fmt.Fprintf(&b, "**%s**\n", p.Title)
		fmt.Fprintf(&b, "- 대상: %s\n", p.Target)
		fmt.Fprintf(&b, "- 기간: %s\n", p.Period)
		fmt.Fprintf(&b, "- 지원: %s\n", p.Support)
		fmt.Fprintf(&b, "- 방법: %s", p.Method)
		if p.Link.URL != "" {
			fmt.Fprintf(&b, "\n- [%s](%s)", p.Link.Title, p.Link.URL)
		}
		parts = append(parts, b.String())
	}

	if len(r.Sources) > 0 {
		lines := make([]string, 0, len(r.Sources)+1)
		lines = append(lines, "출처")
		for i, s := range r.Sources {
			lines = append(lines, fmt.Sprintf("%d. [%s](%s)", i+1, s.Title, s.URL))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	return strings.Join(parts, "\n\n")
}
