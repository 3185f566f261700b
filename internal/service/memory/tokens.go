package memory

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter returns the token length of text.
type TokenCounter func(text string) int

type tiktokenCounter struct {
	encoding string
	once     sync.Once
	tk       *tiktoken.Tiktoken
}

// NewTokenCounter loads the encoding lazily on first use. When it cannot be
// loaded the rune count is used instead, which overestimates for Korean.
func NewTokenCounter(encoding string) TokenCounter {
	c := &tiktokenCounter{encoding: encoding}
	return c.count
}

func (c *tiktokenCounter) count(text string) int {
	if text == "" {
		return 0
	}

	c.once.Do(func() {
		tk, err := tiktoken.GetEncoding(c.encoding)
		if err == nil {
			c.tk = tk
		}
	})

	if c.tk == nil {
		return utf8.RuneCountInString(text)
	}
	return len(c.tk.Encode(text, nil, nil))
}
