package core

import "time"

const (
	BokjiName      = "복지랑"
	BokjiUserAgent = "Bokjirang-Bot/0.1"
	BokjiVersion   = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// NoInfo fills every policy field the model did not provide.
const NoInfo = "정보 없음"

// RefusalSentence is the only text the model may answer with for
// out-of-domain or abusive input.
const RefusalSentence = "죄송합니다. 저는 정부 지원 정책 관련 질문에만 답변할 수 있습니다."

const DefaultSessionTitle = "새 대화"

type Mode string

const (
	ModeCard Mode = "card"
	ModeText Mode = "text"
)

// Session is a conversation thread. OwnerID is zero for guest sessions.
type Session struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s Session) IsGuest() bool {
	return s.OwnerID == 0
}

type Message struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Citations []string  `json:"citations,omitempty"`
}

// Turn is one entry of the history sent upstream.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompactTurn is the history shape clients send back with a question.
// Card is set when the assistant turn was rendered as a policy card.
type CompactTurn struct {
	Role    string           `json:"role"`
	Content string           `json:"content"`
	Card    *ExtractedPolicy `json:"card,omitempty"`
}

type Completion struct {
	Text      string
	Citations []string
}

type PolicyLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type ExtractedPolicy struct {
	Title    string     `json:"title"`
	Target   string     `json:"target"`
	Period   string     `json:"period"`
	Support  string     `json:"support"`
	Method   string     `json:"method"`
	Link     PolicyLink `json:"link"`
	Category string     `json:"category,omitempty"`
}

type SourceRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type User struct {
	ID       int64
	Username string
	Email    string
}

// Bookmark is a saved policy with its D-7 reminder state.
type Bookmark struct {
	ID                  int64
	UserID              int64
	Title               string
	Link                string
	Deadline            *time.Time
	NotificationEnabled bool
	NotifiedD7          bool
	CreatedAt           time.Time
}

// ReminderItem is an eligible bookmark joined with its owner's address.
type ReminderItem struct {
	BookmarkID int64
	UserID     int64
	Email      string
	Title      string
	Link       string
	Deadline   time.Time
}
