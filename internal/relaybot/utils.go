package relaybot

const (
	captionLimit      = 1000
	messageChunkLimit = 4000
	truncationMarker  = "..."
)

// TruncateCaption caps a media caption at the relay limit, marking the cut.
// Limits are counted in runes so multi-byte text is never split mid-character.
func TruncateCaption(s string) string {
	runes := []rune(s)
	if len(runes) <= captionLimit {
		return s
	}

	return string(runes[:captionLimit-len(truncationMarker)]) + truncationMarker
}

// SplitText breaks long text into chunks that fit a single message.
func SplitText(s string) []string {
	runes := []rune(s)
	if len(runes) <= messageChunkLimit {
		return []string{s}
	}

	chunks := make([]string, 0, len(runes)/messageChunkLimit+1)

	for len(runes) > 0 {
		n := messageChunkLimit
		if len(runes) < n {
			n = len(runes)
		}

		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}

	return chunks
}
