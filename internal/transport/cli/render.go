package cli

import (
	"fmt"
	"strings"

	"github.com/bokjirang/policybot/internal/service/chat"
	"github.com/bokjirang/policybot/internal/service/ui"
)

func render(resp *chat.Response) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(resp.Reply))

	if p := resp.Policy; p != nil {
		b.WriteString("\n\n")
		b.WriteString(ui.CardTitleStyle.Render(p.Title))
		for _, f := range [][2]string{
			{"대상", p.Target},
			{"기간", p.Period},
			{"지원", p.Support},
			{"방법", p.Method},
		} {
			fmt.Fprintf(&b, "\n  %s %s", ui.DescStyle.Render(f[0]), f[1])
		}
		if p.Link.URL != "" {
			fmt.Fprintf(&b, "\n  %s %s", ui.DescStyle.Render(p.Link.Title), ui.SourceStyle.Render(p.Link.URL))
		}
	}

	if len(resp.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(ui.DescStyle.Render("출처"))
		for i, s := range resp.Sources {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, ui.SourceStyle.Render(s.URL))
		}
	}

	return b.String()
}
