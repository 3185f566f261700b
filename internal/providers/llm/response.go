package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoAnswer = errors.New("no answer text in any known response shape")

type rawResponse struct {
	Choices []struct {
		Message *struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
	OutputText    string            `json:"output_text"`
	Reply         string            `json:"reply"`
	Citations     []json.RawMessage `json:"citations"`
	SearchResults []struct {
		URL string `json:"url"`
	} `json:"search_results"`
}

// answerShapes lists the places known upstreams put the answer text, in
// the order they are tried.
var answerShapes = []struct {
	name    string
	extract func(r *rawResponse) string
}{
	{"choices[0].message.content", func(r *rawResponse) string {
		if len(r.Choices) == 0 || r.Choices[0].Message == nil {
			return ""
		}
		return contentText(r.Choices[0].Message.Content)
	}},
	{"choices[0].text", func(r *rawResponse) string {
		if len(r.Choices) == 0 {
			return ""
		}
		return r.Choices[0].Text
	}},
	{"output_text", func(r *rawResponse) string { return r.OutputText }},
	{"reply", func(r *rawResponse) string { return r.Reply }},
}

// extractAnswer pulls the answer text and citations out of a 2xx body.
// It fails closed with errNoAnswer when no shape yields text.
func extractAnswer(data []byte) (string, []string, error) {
	var r rawResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return "", nil, fmt.Errorf("decode: %w", err)
	}

	var text string
	for _, shape := range answerShapes {
		if t := strings.TrimSpace(shape.extract(&r)); t != "" {
			text = t
			break
		}
	}
	if text == "" {
		return "", nil, errNoAnswer
	}

	return text, collectCitations(&r), nil
}

// contentText accepts both a plain string and a list of content parts.
func contentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}

	var b strings.Builder
	for _, p := range parts {
		if p.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

func collectCitations(r *rawResponse) []string {
	seen := make(map[string]struct{})
	citations := make([]string, 0, len(r.Citations))

	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		citations = append(citations, u)
	}

	for _, raw := range r.Citations {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			add(s)
			continue
		}
		var obj struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil {
			add(obj.URL)
		}
	}

	if len(citations) == 0 {
		for _, sr := range r.SearchResults {
			add(sr.URL)
		}
	}
	return citations
}
