package models

import "time"

// Message is one entry in a conversation transcript. Entries are
// immutable once appended; the only exception is a pending assistant
// placeholder, which is swapped wholesale for the resolved answer.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	FromBot   bool      `json:"is_ai"`
	Timestamp time.Time `json:"timestamp"`
	Pending   bool      `json:"is_loading,omitempty"`
}

// Session scopes one conversation's transcript to one bot.
type Session struct {
	BotID string `json:"bot_id"`
	ID    string `json:"session_id"`
}

// Bot is the read model served by the platform's bot endpoint. It is
// fetched once per conversation and never mutated client-side.
type Bot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Model       string `json:"model"`
	Description string `json:"description"`
	OwnerID     string `json:"user_id"`
	Private     bool   `json:"private"`
}

// AuthSession is the identity resolved from the auth backend's decode
// endpoint, threaded explicitly instead of looked up ambiently.
type AuthSession struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
}

// Category is one of the fixed knowledge-source category tokens the
// platform accepts. The tokens double as multipart field names on the
// upload endpoint and as keys in the bot registration payload.
type Category string

const (
	CategoryCSV    Category = "csv"
	CategoryJSON   Category = "json"
	CategoryPDF    Category = "pdf"
	CategoryTXT    Category = "txt"
	CategoryWebURL Category = "web_url"
)

// FileCategories are the categories that hold uploaded files, in the
// order the upload endpoint scans multipart fields.
var FileCategories = []Category{CategoryCSV, CategoryJSON, CategoryPDF, CategoryTXT}

// MaxAttachments caps files plus URLs combined, enforced both when an
// item is added and again before any upload request is issued.
const MaxAttachments = 3

// CategoryForExtension maps a lowercase file extension (without dot)
// to its category. The second result is false for unsupported types.
func CategoryForExtension(ext string) (Category, bool) {
	switch Category(ext) {
	case CategoryCSV, CategoryJSON, CategoryPDF, CategoryTXT:
		return Category(ext), true
	}
	return "", false
}
