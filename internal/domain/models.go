package domain

import "time"

// Language is the closed set of content languages the bot supports.
type Language string

const (
	LangUz Language = "uz"
	LangRu Language = "ru"
	LangEn Language = "en"
)

// Languages returns all supported languages in a stable order.
func Languages() []Language {
	return []Language{LangUz, LangRu, LangEn}
}

// ParseLanguage maps a raw tag to a supported Language.
func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LangUz, LangRu, LangEn:
		return Language(s), true
	}
	return "", false
}

// AdminAction marks what the next private message from an admin should be
// interpreted as. Empty means no flow is pending.
type AdminAction string

const (
	ActionNone           AdminAction = ""
	ActionAwaitQuote     AdminAction = "awaiting_quote"
	ActionAwaitChannel   AdminAction = "awaiting_channel"
	ActionAwaitBroadcast AdminAction = "awaiting_broadcast"
)

// Defaults applied on first contact.
const (
	DefaultSendTime = "08:00"
	DefaultTZ       = "Asia/Tashkent"
	DefaultLang     = LangUz
)

// User represents per-chat delivery settings. The chat ID doubles as the
// primary key; rows are created on first interaction and never deleted.
type User struct {
	ID           int64
	Lang         Language
	SendTime     string // "HH:mm", 24h
	Timezone     string // IANA zone name
	AdminAction  AdminAction
	LastSentDate string // "YYYY-MM-DD" in the user's zone; empty until first delivery
	CreatedAt    time.Time
}

// Channel is a mandatory-subscription channel. Username is stored lowercase
// with the "@" prefix.
type Channel struct {
	Name     string
	Username string
}

// Quote is a single piece of deliverable content.
type Quote struct {
	ID   int64
	Lang Language
	Text string
}
