package domain

import (
	"strconv"
	"strings"
)

const supergroupPrefix = "-100"

// Reference identifies a single Telegram message extracted from a share link.
// Exactly one of ChatID (private t.me/c links, already rewritten to the
// -100-prefixed supergroup form) or Username (public links, kept verbatim)
// is set. MessageID is always set; ThreadID only for threaded link shapes.
type Reference struct {
	ChatID    int64
	Username  string
	MessageID int
	ThreadID  int
	URL       string
}

// ChatKey returns the chat half of the cache key: the numeric id for private
// links, the raw username otherwise. A chat referenced both ways produces two
// distinct keys; the representations are intentionally not unified.
func (r Reference) ChatKey() string {
	if r.Username != "" {
		return r.Username
	}

	return strconv.FormatInt(r.ChatID, 10)
}

// BareChannelID strips the -100 supergroup prefix from ChatID, yielding the
// channel id MTProto calls expect.
func (r Reference) BareChannelID() int64 {
	s := strconv.FormatInt(r.ChatID, 10)

	trimmed := strings.TrimPrefix(s, supergroupPrefix)
	if trimmed != s {
		id, err := strconv.ParseInt(trimmed, 10, 64)
		if err == nil {
			return id
		}
	}

	if r.ChatID < 0 {
		return -r.ChatID
	}

	return r.ChatID
}
