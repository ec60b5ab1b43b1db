// Package linkparse turns Telegram share links into message references.
package linkparse

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/tgrelay/relaybot/internal/core/domain"
	apperrors "github.com/tgrelay/relaybot/internal/core/errors"
)

var (
	messageLinkRegex = regexp.MustCompile(`https?://(?:t\.me|telegram\.me)/[^\s]+`)

	// Link shapes, tried in order. The private form must come first so that
	// the "c" path segment is never read as a channel username.
	privateLinkRegex = regexp.MustCompile(`t\.me/c/(-?\d+)/(\d+)(?:/(\d+))?`)
	publicLinkRegex  = regexp.MustCompile(`t\.me/([^/\s]+)/(\d+)(?:/(\d+))?`)
	legacyLinkRegex  = regexp.MustCompile(`telegram\.me/([^/\s]+)/(\d+)(?:/(\d+))?`)
)

// ExtractMessageLinks returns every t.me/telegram.me URL in text, in order of
// appearance. Text without any such URL yields nil.
func ExtractMessageLinks(text string) []string {
	return messageLinkRegex.FindAllString(text, -1)
}

// Parse maps a Telegram message URL to a Reference.
//
// Three shapes are recognized, first match wins:
//
//	t.me/c/<chat>[/<thread>]/<message>       private supergroup form
//	t.me/<name>[/<thread>]/<message>         public channel form
//	telegram.me/<name>[/<thread>]/<message>  legacy public form
//
// For the private form a positive chat id is rewritten to the -100-prefixed
// supergroup id the MTProto addressing scheme uses. A two-segment link is
// always read as chat/message: a thread id without a message id cannot be
// distinguished from a plain message link, and the parser resolves the
// ambiguity in favor of the message id.
func Parse(rawURL string) (domain.Reference, error) {
	if m := privateLinkRegex.FindStringSubmatch(rawURL); m != nil {
		return parsePrivate(rawURL, m)
	}

	for _, re := range []*regexp.Regexp{publicLinkRegex, legacyLinkRegex} {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return parsePublic(rawURL, m)
		}
	}

	return domain.Reference{}, fmt.Errorf("%w: %s", apperrors.ErrParse, rawURL)
}

func parsePrivate(rawURL string, m []string) (domain.Reference, error) {
	chatID, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return domain.Reference{}, fmt.Errorf("%w: chat id %q", apperrors.ErrParse, m[1])
	}

	if chatID > 0 {
		chatID, err = strconv.ParseInt("-100"+m[1], 10, 64)
		if err != nil {
			return domain.Reference{}, fmt.Errorf("%w: chat id %q", apperrors.ErrParse, m[1])
		}
	}

	messageID, threadID, err := parseIDSegments(m[2], m[3])
	if err != nil {
		return domain.Reference{}, err
	}

	return domain.Reference{
		ChatID:    chatID,
		MessageID: messageID,
		ThreadID:  threadID,
		URL:       rawURL,
	}, nil
}

func parsePublic(rawURL string, m []string) (domain.Reference, error) {
	messageID, threadID, err := parseIDSegments(m[2], m[3])
	if err != nil {
		return domain.Reference{}, err
	}

	return domain.Reference{
		Username:  m[1],
		MessageID: messageID,
		ThreadID:  threadID,
		URL:       rawURL,
	}, nil
}

// parseIDSegments interprets the trailing one or two numeric segments of a
// link. With both present the first is the thread id and the second the
// message id; with one present it is the message id.
func parseIDSegments(second, third string) (messageID, threadID int, err error) {
	if third != "" {
		messageID, err = strconv.Atoi(third)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: message id %q", apperrors.ErrParse, third)
		}

		threadID, err = strconv.Atoi(second)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: thread id %q", apperrors.ErrParse, second)
		}

		return messageID, threadID, nil
	}

	messageID, err = strconv.Atoi(second)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: message id %q", apperrors.ErrParse, second)
	}

	return messageID, 0, nil
}
